package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/omriShneor/alfred_line/internal/timeutil"
)

// rawPayload is the JSON contract the extraction prompt asks for.
type rawPayload struct {
	Events []rawEvent `json:"events"`
}

type rawEvent struct {
	Title         string `json:"title"`
	StartDateTime string `json:"start_datetime"`
	EndDateTime   string `json:"end_datetime"`
	Description   string `json:"description,omitempty"`
}

// DecodeEvents validates a normalized JSON string against the output
// contract. Either every event is valid or the whole result fails.
func DecodeEvents(jsonText string) Result {
	var payload rawPayload
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return Failure(ReasonUnparseable, nil)
	}

	if len(payload.Events) == 0 {
		return Failure(ReasonNoSchedule, nil)
	}

	events := make([]Event, 0, len(payload.Events))
	for i, raw := range payload.Events {
		ev, err := raw.toEvent()
		if err != nil {
			return Failure(describeInvalid(i, err), nil)
		}
		events = append(events, ev)
	}

	return Success(events)
}

func (r rawEvent) toEvent() (Event, error) {
	start, err := timeutil.ParseOffsetDateTime(r.StartDateTime)
	if err != nil {
		return Event{}, fmt.Errorf("start_datetime: %w", err)
	}
	end, err := timeutil.ParseOffsetDateTime(r.EndDateTime)
	if err != nil {
		return Event{}, fmt.Errorf("end_datetime: %w", err)
	}

	ev := Event{
		Title:       strings.TrimSpace(r.Title),
		Start:       start,
		End:         end,
		Description: strings.TrimSpace(r.Description),
	}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}

func describeInvalid(index int, err error) string {
	switch {
	case errors.Is(err, ErrEmptyTitle):
		return fmt.Sprintf("%d件目の予定にタイトルがありません", index+1)
	case errors.Is(err, ErrEndNotAfterStart):
		return fmt.Sprintf("%d件目の予定の終了日時が開始日時より前になっています", index+1)
	default:
		return fmt.Sprintf("日時の形式が不正です (%d件目): %v", index+1, err)
	}
}
