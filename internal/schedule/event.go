package schedule

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyTitle       = errors.New("title is required")
	ErrEndNotAfterStart = errors.New("end time must be after start time")
)

// Event is one calendar entry extracted from a user's message.
type Event struct {
	Title       string
	Start       time.Time
	End         time.Time
	Description string
}

// Validate checks the invariants every serialized event must hold.
// Invalid events are rejected, never adjusted.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if !e.End.After(e.Start) {
		return ErrEndNotAfterStart
	}
	return nil
}
