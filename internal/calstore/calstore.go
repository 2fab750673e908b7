// Package calstore holds generated calendar files until they are downloaded
// or expire.
package calstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a generated calendar file stays downloadable.
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned for unknown or expired ids.
var ErrNotFound = errors.New("calendar file not found")

// Store persists calendar payloads under random ids.
type Store interface {
	Save(ctx context.Context, payload []byte, eventCount int) (string, error)
	Load(ctx context.Context, id string) ([]byte, error)
}

func newID() string {
	return uuid.NewString()
}

// ValidID reports whether id has the shape of an id produced by Save.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
