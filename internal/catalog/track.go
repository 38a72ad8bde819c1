package catalog

import "time"

// DownloadState is the download lifecycle state of a track.
// Valid transitions: not_downloaded -> queued -> downloading -> downloaded|failed.
// Cancellation moves queued/downloading back to not_downloaded.
type DownloadState string

const (
	StateNotDownloaded DownloadState = "not_downloaded"
	StateQueued        DownloadState = "queued"
	StateDownloading   DownloadState = "downloading"
	StateDownloaded    DownloadState = "downloaded"
	StateFailed        DownloadState = "failed"
)

// IsTerminal reports whether the state is one the pipeline never leaves on its own.
func (s DownloadState) IsTerminal() bool {
	return s == StateDownloaded || s == StateFailed
}

// Track is a catalog entry referencing an audio track by its external source
// identifier. The download fields are mutated by the download pipeline while a
// job for SourceID is in flight, and read by the UI/API layers.
type Track struct {
	ID              string
	SourceID        string
	Title           string
	Artist          string
	DurationSeconds int

	DownloadState DownloadState
	Progress      float64
	LocalPath     string
	FileSize      int64
	DownloadedAt  time.Time
}

// Downloadable reports whether the track is a candidate for a bulk enqueue:
// it has a resolvable source identifier and is not already downloaded.
func (t *Track) Downloadable() bool {
	return t.SourceID != "" && t.DownloadState != StateDownloaded
}
