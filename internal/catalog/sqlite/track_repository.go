package sqlite

import (
	"database/sql"
	"time"

	"github.com/mhadifilms/reverie/internal/catalog"
)

const trackColumns = `id, source_id, title, artist, duration_seconds, download_state, progress, local_path, file_size, downloaded_at`

// TrackRepository implements catalog.TrackRepository on SQLite.
type TrackRepository struct {
	db *sql.DB
}

func NewTrackRepository(dbConn *sql.DB) *TrackRepository {
	return &TrackRepository{db: dbConn}
}

func (r *TrackRepository) Find(sourceID string) (*catalog.Track, error) {
	row := r.db.QueryRow(`SELECT `+trackColumns+` FROM tracks WHERE source_id = ?`, sourceID)

	track, err := scanTrack(row)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return track, nil
}

func (r *TrackRepository) All() ([]*catalog.Track, error) {
	rows, err := r.db.Query(`SELECT ` + trackColumns + ` FROM tracks ORDER BY artist, title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []*catalog.Track

	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}

		tracks = append(tracks, track)
	}

	return tracks, rows.Err()
}

func (r *TrackRepository) Add(t *catalog.Track) error {
	state := t.DownloadState
	if state == "" {
		state = catalog.StateNotDownloaded
	}

	var downloadedAt any
	if !t.DownloadedAt.IsZero() {
		downloadedAt = t.DownloadedAt.Format(time.RFC3339)
	}

	_, err := r.db.Exec(
		`INSERT INTO tracks (`+trackColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.SourceID, t.Title, t.Artist, t.DurationSeconds,
		state, t.Progress, t.LocalPath, t.FileSize, downloadedAt,
	)

	return err
}

func (r *TrackRepository) SetState(sourceID string, state catalog.DownloadState) error {
	_, err := r.db.Exec(`UPDATE tracks SET download_state = ? WHERE source_id = ?`, state, sourceID)

	return err
}

// SetProgress only applies while the track is downloading, so a progress
// callback that races a terminal write is dropped at the database.
func (r *TrackRepository) SetProgress(sourceID string, progress float64) error {
	_, err := r.db.Exec(
		`UPDATE tracks SET progress = ? WHERE source_id = ? AND download_state = 'downloading'`,
		progress, sourceID,
	)

	return err
}

func (r *TrackRepository) MarkDownloaded(sourceID, localPath string, fileSize int64, durationSeconds int, at time.Time) error {
	_, err := r.db.Exec(
		`UPDATE tracks SET
			download_state = 'downloaded',
			progress = 1,
			local_path = ?,
			file_size = ?,
			downloaded_at = ?,
			duration_seconds = CASE WHEN duration_seconds > 0 THEN duration_seconds ELSE ? END
		WHERE source_id = ?`,
		localPath, fileSize, at.Format(time.RFC3339), durationSeconds, sourceID,
	)

	return err
}

func (r *TrackRepository) MarkFailed(sourceID string) error {
	_, err := r.db.Exec(
		`UPDATE tracks SET download_state = 'failed', progress = 0 WHERE source_id = ?`,
		sourceID,
	)

	return err
}

func (r *TrackRepository) ResetDownload(sourceID string) error {
	_, err := r.db.Exec(
		`UPDATE tracks SET download_state = 'not_downloaded', progress = 0, local_path = '' WHERE source_id = ?`,
		sourceID,
	)

	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (*catalog.Track, error) {
	var track catalog.Track

	var downloadedAt sql.NullString

	err := row.Scan(
		&track.ID, &track.SourceID, &track.Title, &track.Artist, &track.DurationSeconds,
		&track.DownloadState, &track.Progress, &track.LocalPath, &track.FileSize, &downloadedAt,
	)
	if err != nil {
		return nil, err
	}

	if downloadedAt.Valid && downloadedAt.String != "" {
		if ts, perr := time.Parse(time.RFC3339, downloadedAt.String); perr == nil {
			track.DownloadedAt = ts
		}
	}

	return &track, nil
}
