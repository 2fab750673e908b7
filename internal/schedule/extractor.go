package schedule

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/omriShneor/alfred_line/internal/llm"
)

const extractionMaxTokens = 2048

// Extractor turns a free-text request into events with a single LLM call.
type Extractor struct {
	llm    llm.Completer
	logger *zap.Logger
}

// NewExtractor creates an extractor backed by completer.
func NewExtractor(completer llm.Completer, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{llm: completer, logger: logger}
}

// Extract resolves message against ref. It never returns an error: every
// failure, including the LLM call itself, is reported as a failed Result.
func (e *Extractor) Extract(ctx context.Context, message string, ref time.Time) Result {
	raw, err := e.llm.Complete(ctx, llm.Request{
		System:    SystemPrompt,
		Prompt:    BuildPrompt(message, ref),
		MaxTokens: extractionMaxTokens,
	})
	if err != nil {
		e.logger.Error("schedule extraction call failed",
			zap.Error(err),
			zap.String("kind", llm.KindOf(err).String()),
		)
		return Failure(fmt.Sprintf("エラーが発生しました: %v", err), err)
	}

	result := DecodeEvents(NormalizeResponse(raw))
	if !result.OK() {
		e.logger.Info("schedule extraction rejected",
			zap.String("reason", result.FailureReason()),
			zap.String("response", raw),
		)
		return result
	}

	e.logger.Info("schedule extracted", zap.Int("event_count", len(result.Events)))
	return result
}
