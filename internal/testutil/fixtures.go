package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/omriShneor/alfred_line/internal/database"
)

// WebhookBuilder builds LINE webhook request bodies
type WebhookBuilder struct {
	events []map[string]any
	seq    int
	now    time.Time
}

// NewWebhookBuilder creates an empty webhook body builder
func NewWebhookBuilder() *WebhookBuilder {
	return &WebhookBuilder{now: time.Now()}
}

// TextFromUser adds a text message sent in a 1:1 chat
func (b *WebhookBuilder) TextFromUser(userID, text string) *WebhookBuilder {
	return b.text(map[string]any{"type": "user", "userId": userID}, text)
}

// TextInGroup adds a text message sent in a group
func (b *WebhookBuilder) TextInGroup(groupID, userID, text string) *WebhookBuilder {
	return b.text(map[string]any{"type": "group", "groupId": groupID, "userId": userID}, text)
}

// TextInRoom adds a text message sent in a multi-person room
func (b *WebhookBuilder) TextInRoom(roomID, userID, text string) *WebhookBuilder {
	return b.text(map[string]any{"type": "room", "roomId": roomID, "userId": userID}, text)
}

// Sticker adds a non-text message, which the bot ignores
func (b *WebhookBuilder) Sticker(userID string) *WebhookBuilder {
	event := b.base(map[string]any{"type": "user", "userId": userID})
	event["message"] = map[string]any{
		"type":                "sticker",
		"id":                  b.id("m"),
		"quoteToken":          b.id("q"),
		"packageId":           "446",
		"stickerId":           "1988",
		"stickerResourceType": "STATIC",
	}
	b.events = append(b.events, event)
	return b
}

// Follow adds a follow event, which the bot ignores
func (b *WebhookBuilder) Follow(userID string) *WebhookBuilder {
	event := b.base(map[string]any{"type": "user", "userId": userID})
	event["type"] = "follow"
	event["follow"] = map[string]any{"isUnblocked": false}
	b.events = append(b.events, event)
	return b
}

// ReplyToken returns the reply token assigned to the i-th event
func (b *WebhookBuilder) ReplyToken(i int) string {
	return b.events[i]["replyToken"].(string)
}

// Build returns the JSON body
func (b *WebhookBuilder) Build() ([]byte, error) {
	events := b.events
	if events == nil {
		events = []map[string]any{}
	}
	return json.Marshal(map[string]any{
		"destination": "Ubot",
		"events":      events,
	})
}

// MustBuild returns the JSON body or panics
func (b *WebhookBuilder) MustBuild() []byte {
	body, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build webhook body: %v", err))
	}
	return body
}

func (b *WebhookBuilder) text(src map[string]any, text string) *WebhookBuilder {
	event := b.base(src)
	event["message"] = map[string]any{
		"type":       "text",
		"id":         b.id("m"),
		"quoteToken": b.id("q"),
		"text":       text,
	}
	b.events = append(b.events, event)
	return b
}

func (b *WebhookBuilder) base(src map[string]any) map[string]any {
	b.seq++
	return map[string]any{
		"type":            "message",
		"mode":            "active",
		"timestamp":       b.now.Add(time.Duration(b.seq) * time.Second).UnixMilli(),
		"webhookEventId":  b.id("evt"),
		"deliveryContext": map[string]any{"isRedelivery": false},
		"replyToken":      b.id("reply"),
		"source":          src,
	}
}

func (b *WebhookBuilder) id(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, b.seq)
}

// TurnBuilder seeds conversation history
type TurnBuilder struct {
	conversationID string
	role           string
	content        string
	createdAt      time.Time
}

// NewTurnBuilder creates a new turn builder with defaults
func NewTurnBuilder(conversationID string) *TurnBuilder {
	return &TurnBuilder{
		conversationID: conversationID,
		role:           "user",
		content:        "Test message",
		createdAt:      time.Now().Truncate(time.Second),
	}
}

// User marks the turn as written by the user
func (b *TurnBuilder) User() *TurnBuilder {
	b.role = "user"
	return b
}

// Assistant marks the turn as written by the bot
func (b *TurnBuilder) Assistant() *TurnBuilder {
	b.role = "assistant"
	return b
}

// WithContent sets the turn text
func (b *TurnBuilder) WithContent(content string) *TurnBuilder {
	b.content = content
	return b
}

// At sets the creation time
func (b *TurnBuilder) At(t time.Time) *TurnBuilder {
	b.createdAt = t
	return b
}

// Build creates the turn in the database
func (b *TurnBuilder) Build(db *database.DB) (*database.ConversationTurn, error) {
	return db.InsertConversationTurn(context.Background(), b.conversationID, b.role, b.content, b.createdAt)
}

// MustBuild creates the turn or panics
func (b *TurnBuilder) MustBuild(db *database.DB) *database.ConversationTurn {
	turn, err := b.Build(db)
	if err != nil {
		panic(fmt.Sprintf("failed to build conversation turn: %v", err))
	}
	return turn
}
