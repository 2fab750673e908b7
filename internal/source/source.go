package source

import "time"

// Kind identifies what a conversation is on the chat platform.
type Kind string

const (
	KindUser  Kind = "user"
	KindGroup Kind = "group"
	KindRoom  Kind = "room"
)

// Message is one inbound text message, already verified and parsed.
type Message struct {
	Kind Kind
	// ConversationID is the user, group or room id replies are pushed to and
	// history is partitioned by.
	ConversationID string
	SenderID       string
	Text           string
	ReplyToken     string
	Timestamp      time.Time
}

// IsGroup reports whether the message came from a multi-person chat.
func (m Message) IsGroup() bool {
	return m.Kind == KindGroup || m.Kind == KindRoom
}

// Identities returns the ids an allow-list may match: the sender and, for
// group chats, the conversation itself.
func (m Message) Identities() []string {
	ids := make([]string, 0, 2)
	if m.SenderID != "" {
		ids = append(ids, m.SenderID)
	}
	if m.ConversationID != "" && m.ConversationID != m.SenderID {
		ids = append(ids, m.ConversationID)
	}
	return ids
}
