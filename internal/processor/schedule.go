package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/omriShneor/alfred_line/internal/ics"
	"github.com/omriShneor/alfred_line/internal/source"
)

func (p *Processor) handleSchedule(ctx context.Context, msg source.Message) (string, error) {
	started := time.Now()
	result := p.extractor.Extract(ctx, msg.Text, p.now())
	p.metrics.LLMCall(routeSchedule, started, errKind(result.Err))

	if result.Err != nil {
		p.metrics.ExtractionFinished("llm_error")
		return "", result.Err
	}
	if !result.OK() {
		p.metrics.ExtractionFinished("rejected")
		return result.FailureReason(), nil
	}

	payload, err := ics.Serialize(result.Events)
	if err != nil {
		p.metrics.ExtractionFinished("serialize_error")
		return "", fmt.Errorf("failed to build calendar file: %w", err)
	}

	id, err := p.calendars.Save(ctx, payload, len(result.Events))
	if err != nil {
		p.metrics.ExtractionFinished("store_error")
		return "", fmt.Errorf("failed to store calendar file: %w", err)
	}
	p.metrics.ExtractionFinished("ok")

	return fmt.Sprintf("%s\n\n📥 カレンダーに追加:\n%s", ics.FormatConfirmation(result.Events), p.calendarURL(id)), nil
}

func (p *Processor) calendarURL(id string) string {
	return fmt.Sprintf("%s/calendar/%s", p.publicBaseURL, id)
}
