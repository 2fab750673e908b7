package migrations

import "database/sql"

func init() {
	Register(Migration{
		Version: 1,
		Name:    "conversation_turns",
		Up:      conversationTurns,
	})
}

func conversationTurns(db *sql.DB) error {
	return execAll(db, []string{
		`CREATE TABLE IF NOT EXISTS conversation_turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('user', 'assistant')),
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversation_turns_recent ON conversation_turns(conversation_id, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_conversation_turns_created ON conversation_turns(created_at)`,
	})
}
