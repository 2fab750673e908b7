// Package dispatch delivers generated text back to the chat within the
// platform's per-message size limit.
package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Messenger is the outbound side of the chat platform. A reply token can be
// used once; Push can be called any number of times.
type Messenger interface {
	Reply(ctx context.Context, replyToken, text string) error
	Push(ctx context.Context, to, text string) error
}

// Mode records how a reply was delivered.
type Mode string

const (
	ModeNone  Mode = "none"
	ModeReply Mode = "reply"
	ModePush  Mode = "push"
)

// Target addresses the reply for one inbound message.
type Target struct {
	ReplyToken     string
	ConversationID string
}

// Dispatcher chunks text and picks reply or push delivery.
type Dispatcher struct {
	messenger Messenger
	maxChars  int
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher. maxChars <= 0 uses DefaultMaxChars.
func NewDispatcher(messenger Messenger, maxChars int, logger *zap.Logger) *Dispatcher {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{messenger: messenger, maxChars: maxChars, logger: logger}
}

// Deliver sends text to target. A reply that fits in one message uses the
// reply token; anything longer is pushed chunk by chunk, first chunk
// included, so reply and push are never mixed.
func (d *Dispatcher) Deliver(ctx context.Context, target Target, text string) (Mode, error) {
	chunks := Split(text, d.maxChars)

	switch len(chunks) {
	case 0:
		return ModeNone, nil
	case 1:
		if err := d.messenger.Reply(ctx, target.ReplyToken, chunks[0]); err != nil {
			return ModeReply, fmt.Errorf("reply: %w", err)
		}
		return ModeReply, nil
	}

	d.logger.Debug("pushing chunked reply",
		zap.String("conversation_id", target.ConversationID),
		zap.Int("chunks", len(chunks)),
	)
	for i, chunk := range chunks {
		if err := d.messenger.Push(ctx, target.ConversationID, chunk); err != nil {
			return ModePush, fmt.Errorf("push chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return ModePush, nil
}
