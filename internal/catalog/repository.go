package catalog

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a track cannot be located by its source identifier.
var ErrNotFound = errors.New("track not found")

// TrackRepository persists track records and their download state. Mutations
// are in place: callers do not issue a separate save. Find and All return
// snapshots, so readers never observe a half-applied mutation.
type TrackRepository interface {
	Find(sourceID string) (*Track, error)
	All() ([]*Track, error)
	Add(t *Track) error

	// SetState moves a track to the given download state. Moving out of a
	// terminal state is only done by explicit user actions (re-enqueue, reset).
	SetState(sourceID string, state DownloadState) error

	// SetProgress records transfer progress for a track that is currently
	// downloading. Updates against any other state are dropped, so a late
	// progress callback can never overwrite a terminal state.
	SetProgress(sourceID string, progress float64) error

	// MarkDownloaded records a successful download: terminal state, local
	// path, byte size, completion time, and the duration hint when the
	// catalog did not already know it.
	MarkDownloaded(sourceID, localPath string, fileSize int64, durationSeconds int, at time.Time) error

	// MarkFailed records a terminal failure and resets progress to zero.
	MarkFailed(sourceID string) error

	// ResetDownload returns a track to not_downloaded with zero progress,
	// clearing any local path. Used for cancellation.
	ResetDownload(sourceID string) error
}
