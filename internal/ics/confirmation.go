package ics

import (
	"fmt"
	"strings"

	"github.com/omriShneor/alfred_line/internal/schedule"
	"github.com/omriShneor/alfred_line/internal/timeutil"
)

const confirmationHeader = "📅 スケジュール登録完了"

// FormatConfirmation renders a numbered summary of events for the chat reply.
func FormatConfirmation(events []schedule.Event) string {
	if len(events) == 0 {
		return schedule.ReasonNoSchedule
	}

	var b strings.Builder
	b.WriteString(confirmationHeader)
	b.WriteString("\n\n")

	for i, ev := range events {
		fmt.Fprintf(&b, "%d. %s\n", i+1, ev.Title)
		fmt.Fprintf(&b, "   %s\n", timeRange(ev))
		if ev.Description != "" {
			fmt.Fprintf(&b, "   %s\n", ev.Description)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func timeRange(ev schedule.Event) string {
	if timeutil.SameDay(ev.Start, ev.End) {
		return fmt.Sprintf("%s %s〜%s",
			timeutil.FormatJapaneseDate(ev.Start),
			timeutil.FormatClock(ev.Start),
			timeutil.FormatClock(ev.End),
		)
	}
	return fmt.Sprintf("%s %s 〜 %s %s",
		timeutil.FormatJapaneseDate(ev.Start),
		timeutil.FormatClock(ev.Start),
		timeutil.FormatJapaneseDate(ev.End),
		timeutil.FormatClock(ev.End),
	)
}
