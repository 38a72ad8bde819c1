package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownloadStateIsTerminal(t *testing.T) {
	tests := []struct {
		state DownloadState
		want  bool
	}{
		{StateNotDownloaded, false},
		{StateQueued, false},
		{StateDownloading, false},
		{StateDownloaded, true},
		{StateFailed, true},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.state.IsTerminal(), "state %s", tc.state)
	}
}

func TestTrackDownloadable(t *testing.T) {
	tests := []struct {
		name  string
		track Track
		want  bool
	}{
		{
			name:  "fresh track with a source",
			track: Track{SourceID: "src-1", DownloadState: StateNotDownloaded},
			want:  true,
		},
		{
			name:  "failed track can retry",
			track: Track{SourceID: "src-1", DownloadState: StateFailed},
			want:  true,
		},
		{
			name:  "already downloaded",
			track: Track{SourceID: "src-1", DownloadState: StateDownloaded},
			want:  false,
		},
		{
			name:  "no source identifier",
			track: Track{DownloadState: StateNotDownloaded},
			want:  false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.track.Downloadable())
		})
	}
}
