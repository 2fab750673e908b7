package migrations

import "database/sql"

func init() {
	Register(Migration{
		Version: 2,
		Name:    "calendar_files",
		Up:      calendarFiles,
	})
}

func calendarFiles(db *sql.DB) error {
	return execAll(db, []string{
		`CREATE TABLE IF NOT EXISTS calendar_files (
			id TEXT PRIMARY KEY,
			payload BLOB NOT NULL,
			event_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_calendar_files_expires ON calendar_files(expires_at)`,
	})
}
