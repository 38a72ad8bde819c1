package sqlite

import (
	"database/sql"

	// Import the SQLite driver.
	_ "github.com/mattn/go-sqlite3"
)

// InitDB opens the SQLite database and creates the tracks table if it doesn't exist.
func InitDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS tracks (
		id TEXT PRIMARY KEY,
		source_id TEXT UNIQUE,
		title TEXT,
		artist TEXT,
		duration_seconds INTEGER DEFAULT 0,
		download_state TEXT DEFAULT 'not_downloaded',
		progress REAL DEFAULT 0,
		local_path TEXT DEFAULT '',
		file_size INTEGER DEFAULT 0,
		downloaded_at DATETIME
	)`)

	if err != nil {
		return nil, err
	}

	return db, nil
}
