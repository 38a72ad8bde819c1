package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/mhadifilms/reverie/internal/catalog"
	"github.com/mhadifilms/reverie/internal/telemetry"
)

// InstrumentedTrackRepository wraps TrackRepository with telemetry.
type InstrumentedTrackRepository struct {
	repo      *TrackRepository
	telemetry *telemetry.Telemetry
}

func NewInstrumentedTrackRepository(dbConn *sql.DB, tel *telemetry.Telemetry) *InstrumentedTrackRepository {
	return &InstrumentedTrackRepository{
		repo:      NewTrackRepository(dbConn),
		telemetry: tel,
	}
}

func (r *InstrumentedTrackRepository) Find(sourceID string) (*catalog.Track, error) {
	var result *catalog.Track

	var err error

	instrumentedErr := r.telemetry.InstrumentDBOperation(context.Background(), "find_track", func(ctx context.Context) error {
		result, err = r.repo.Find(sourceID)

		return err
	})

	if instrumentedErr != nil {
		return nil, instrumentedErr
	}

	return result, nil
}

func (r *InstrumentedTrackRepository) All() ([]*catalog.Track, error) {
	var result []*catalog.Track

	var err error

	instrumentedErr := r.telemetry.InstrumentDBOperation(context.Background(), "list_tracks", func(ctx context.Context) error {
		result, err = r.repo.All()

		return err
	})

	if instrumentedErr != nil {
		return nil, instrumentedErr
	}

	return result, nil
}

func (r *InstrumentedTrackRepository) Add(t *catalog.Track) error {
	return r.telemetry.InstrumentDBOperation(context.Background(), "add_track", func(ctx context.Context) error {
		return r.repo.Add(t)
	})
}

func (r *InstrumentedTrackRepository) SetState(sourceID string, state catalog.DownloadState) error {
	return r.telemetry.InstrumentDBOperation(context.Background(), "set_track_state", func(ctx context.Context) error {
		return r.repo.SetState(sourceID, state)
	})
}

func (r *InstrumentedTrackRepository) SetProgress(sourceID string, progress float64) error {
	return r.telemetry.InstrumentDBOperation(context.Background(), "set_track_progress", func(ctx context.Context) error {
		return r.repo.SetProgress(sourceID, progress)
	})
}

func (r *InstrumentedTrackRepository) MarkDownloaded(sourceID, localPath string, fileSize int64, durationSeconds int, at time.Time) error {
	return r.telemetry.InstrumentDBOperation(context.Background(), "mark_track_downloaded", func(ctx context.Context) error {
		return r.repo.MarkDownloaded(sourceID, localPath, fileSize, durationSeconds, at)
	})
}

func (r *InstrumentedTrackRepository) MarkFailed(sourceID string) error {
	return r.telemetry.InstrumentDBOperation(context.Background(), "mark_track_failed", func(ctx context.Context) error {
		return r.repo.MarkFailed(sourceID)
	})
}

func (r *InstrumentedTrackRepository) ResetDownload(sourceID string) error {
	return r.telemetry.InstrumentDBOperation(context.Background(), "reset_track_download", func(ctx context.Context) error {
		return r.repo.ResetDownload(sourceID)
	})
}
