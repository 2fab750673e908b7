// Package ics renders extracted events as an iCalendar payload and as the
// confirmation text sent back to the chat.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/omriShneor/alfred_line/internal/schedule"
	"github.com/omriShneor/alfred_line/internal/timeutil"
)

const (
	ProductID    = "-//Alfred LINE Bot//Schedule//JP"
	CalendarName = "LINEスケジュール"
	uidDomain    = "alfred-line-bot"
)

// ContentType is served with downloaded calendar files.
const ContentType = "text/calendar; charset=utf-8"

// Serialize builds a calendar with one VEVENT per event, stamped with the
// current time.
func Serialize(events []schedule.Event) ([]byte, error) {
	return serializeAt(events, timeutil.Now())
}

func serializeAt(events []schedule.Event, stamp time.Time) ([]byte, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("no events to serialize")
	}

	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName(CalendarName)
	cal.SetXWRTimezone(timeutil.ZoneName)

	stamp = stamp.In(timeutil.Location())
	for i, ev := range events {
		if err := ev.Validate(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}

		vevent := cal.AddEvent(fmt.Sprintf("%s@%s", uuid.NewString(), uidDomain))
		vevent.SetSummary(ev.Title)
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}
		vevent.SetStartAt(ev.Start)
		vevent.SetEndAt(ev.End)
		vevent.SetDtStampTime(stamp)
		vevent.SetCreatedTime(stamp)
		vevent.SetModifiedAt(stamp)
		vevent.SetStatus(ical.ObjectStatusConfirmed)
		vevent.SetTimeTransparency(ical.TransparencyOpaque)
	}

	return []byte(cal.Serialize()), nil
}
