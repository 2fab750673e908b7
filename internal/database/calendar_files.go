package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrCalendarFileNotFound is returned for unknown or expired calendar files.
var ErrCalendarFileNotFound = errors.New("calendar file not found")

// SaveCalendarFile stores a serialized calendar under id until expiresAt.
func (d *DB) SaveCalendarFile(ctx context.Context, id string, payload []byte, eventCount int, createdAt, expiresAt time.Time) error {
	_, err := d.ExecContext(ctx, `
		INSERT INTO calendar_files (id, payload, event_count, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, payload, eventCount, createdAt.UTC(), expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save calendar file: %w", err)
	}
	return nil
}

// GetCalendarFile returns the payload for id if it has not expired at now.
func (d *DB) GetCalendarFile(ctx context.Context, id string, now time.Time) ([]byte, error) {
	var payload []byte
	err := d.QueryRowContext(ctx, `
		SELECT payload FROM calendar_files
		WHERE id = ? AND expires_at > ?
	`, id, now.UTC()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCalendarFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar file: %w", err)
	}
	return payload, nil
}

// DeleteExpiredCalendarFiles removes files whose expiry is at or before now.
func (d *DB) DeleteExpiredCalendarFiles(ctx context.Context, now time.Time) (int64, error) {
	result, err := d.ExecContext(ctx, `DELETE FROM calendar_files WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired calendar files: %w", err)
	}
	return result.RowsAffected()
}
