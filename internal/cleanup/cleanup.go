package cleanup

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mhadifilms/reverie/internal/catalog"
	"github.com/mhadifilms/reverie/internal/logctx"
)

// SweepOrphans deletes audio files in the music directory that no track claims
// as its downloaded local path. These appear when a cancellation arrives after
// the persist stage already finished: the record is reset but the file stays.
func SweepOrphans(ctx context.Context, tracks []*catalog.Track, musicDir string) error {
	logger := logctx.LoggerFromContext(ctx)

	claimed := make(map[string]struct{}, len(tracks))

	for _, track := range tracks {
		if track.DownloadState == catalog.StateDownloaded && track.LocalPath != "" {
			claimed[track.LocalPath] = struct{}{}
		}
	}

	return filepath.WalkDir(musicDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}

			return err
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(musicDir, path)
		if err != nil {
			return err
		}

		// In-flight temp files belong to the storage writer, not the sweep.
		if strings.Contains(d.Name(), ".tmp-") {
			return nil
		}

		if _, ok := claimed[rel]; ok {
			return nil
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Error("failed to delete orphaned file", "file", rel, "err", err)

			return err
		}

		logger.Info("deleted orphaned file", "file", rel)

		return nil
	})
}
