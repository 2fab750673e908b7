package calstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omriShneor/alfred_line/internal/database"
)

// SQLStore keeps calendar files in the calendar_files table. Expired rows
// are invisible to Load and removed by Purge.
type SQLStore struct {
	db  *database.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLStore creates a sqlite-backed store.
func NewSQLStore(db *database.DB, ttl time.Duration) *SQLStore {
	return &SQLStore{db: db, ttl: ttlOrDefault(ttl), now: time.Now}
}

func (s *SQLStore) Save(ctx context.Context, payload []byte, eventCount int) (string, error) {
	id := newID()
	now := s.now()
	if err := s.db.SaveCalendarFile(ctx, id, payload, eventCount, now, now.Add(s.ttl)); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLStore) Load(ctx context.Context, id string) ([]byte, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}
	payload, err := s.db.GetCalendarFile(ctx, id, s.now())
	if errors.Is(err, database.ErrCalendarFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load calendar file %s: %w", id, err)
	}
	return payload, nil
}

// Purge deletes expired files and returns how many were removed.
func (s *SQLStore) Purge(ctx context.Context) (int64, error) {
	return s.db.DeleteExpiredCalendarFiles(ctx, s.now())
}
