package cleanup_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mhadifilms/reverie/internal/catalog"
	"github.com/mhadifilms/reverie/internal/cleanup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("audio"), 0644))
}

func TestSweepOrphans(t *testing.T) {
	musicDir := t.TempDir()

	writeFile(t, musicDir, "claimed.mp3")
	writeFile(t, musicDir, "orphan.mp3")
	writeFile(t, musicDir, "reset-after-cancel.mp3")
	writeFile(t, musicDir, "half-written.mp3.tmp-123456")

	tracks := []*catalog.Track{
		{SourceID: "src-1", DownloadState: catalog.StateDownloaded, LocalPath: "claimed.mp3"},
		// A cancelled track no longer claims its file even if the path survived.
		{SourceID: "src-2", DownloadState: catalog.StateNotDownloaded, LocalPath: "reset-after-cancel.mp3"},
	}

	require.NoError(t, cleanup.SweepOrphans(context.Background(), tracks, musicDir))

	_, err := os.Stat(filepath.Join(musicDir, "claimed.mp3"))
	assert.NoError(t, err, "claimed file must survive")

	_, err = os.Stat(filepath.Join(musicDir, "half-written.mp3.tmp-123456"))
	assert.NoError(t, err, "in-flight temp file must survive")

	_, err = os.Stat(filepath.Join(musicDir, "orphan.mp3"))
	assert.True(t, os.IsNotExist(err), "orphan must be deleted")

	_, err = os.Stat(filepath.Join(musicDir, "reset-after-cancel.mp3"))
	assert.True(t, os.IsNotExist(err), "file of a reset track must be deleted")
}

func TestSweepOrphansNestedDirectories(t *testing.T) {
	musicDir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(musicDir, "albums"), 0755))
	writeFile(t, musicDir, filepath.Join("albums", "kept.mp3"))
	writeFile(t, musicDir, filepath.Join("albums", "stray.mp3"))

	tracks := []*catalog.Track{
		{SourceID: "src-1", DownloadState: catalog.StateDownloaded, LocalPath: filepath.Join("albums", "kept.mp3")},
	}

	require.NoError(t, cleanup.SweepOrphans(context.Background(), tracks, musicDir))

	_, err := os.Stat(filepath.Join(musicDir, "albums", "kept.mp3"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(musicDir, "albums", "stray.mp3"))
	assert.True(t, os.IsNotExist(err))
}

func TestSweepOrphansMissingDirectory(t *testing.T) {
	err := cleanup.SweepOrphans(context.Background(), nil, filepath.Join(t.TempDir(), "missing"))
	assert.NoError(t, err)
}
