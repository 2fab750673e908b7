package timeutil

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// ZoneName is the only timezone the bot renders dates in.
const ZoneName = "Asia/Tokyo"

var defaultLocation = loadDefaultLocation()

func loadDefaultLocation() *time.Location {
	loc, err := time.LoadLocation(ZoneName)
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

// Location returns the fixed display timezone.
func Location() *time.Location {
	return defaultLocation
}

// Now returns the current time in the fixed display timezone.
func Now() time.Time {
	return time.Now().In(defaultLocation)
}

// spaceSeparatedLayout is RFC 3339 with a space instead of "T" between date
// and time.
const spaceSeparatedLayout = "2006-01-02 15:04:05Z07:00"

// ParseOffsetDateTime parses an ISO 8601 timestamp that carries an explicit
// UTC offset (or Z). Values without an offset are rejected.
func ParseOffsetDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("time value is required")
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t, err = time.Parse(spaceSeparatedLayout, value)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse time %q: expected ISO 8601 with UTC offset", value)
	}
	return t, nil
}

// SameDay reports whether a and b fall on the same calendar date in the fixed timezone.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(defaultLocation).Date()
	by, bm, bd := b.In(defaultLocation).Date()
	return ay == by && am == bm && ad == bd
}

var japaneseWeekdays = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// FormatJapaneseDate renders t as 2025年12月17日(水) in the fixed timezone.
func FormatJapaneseDate(t time.Time) string {
	t = t.In(defaultLocation)
	return fmt.Sprintf("%d年%02d月%02d日(%s)", t.Year(), int(t.Month()), t.Day(), japaneseWeekdays[t.Weekday()])
}

// FormatClock renders the HH:MM part of t in the fixed timezone.
func FormatClock(t time.Time) string {
	return t.In(defaultLocation).Format("15:04")
}
