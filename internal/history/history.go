// Package history keeps the short per-conversation memory fed back to the
// LLM. Storage failures are logged and swallowed: a reply must never fail
// because history could not be read or written.
package history

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/omriShneor/alfred_line/internal/database"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultLimit is the number of turns replayed into a prompt.
const DefaultLimit = 20

// Turn is one entry of a conversation transcript.
type Turn struct {
	Role      Role
	Content   string
	CreatedAt time.Time
}

// Store is a best-effort wrapper around the conversation_turns table.
// A Store with a nil DB is a valid no-op store.
type Store struct {
	db     *database.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewStore creates a history store backed by db.
func NewStore(db *database.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger, now: time.Now}
}

// Append records a turn. Errors are logged, never returned.
func (s *Store) Append(ctx context.Context, conversationID string, role Role, content string) {
	if s == nil || s.db == nil {
		return
	}
	if _, err := s.db.InsertConversationTurn(ctx, conversationID, string(role), content, s.now()); err != nil {
		s.logger.Warn("failed to save conversation turn",
			zap.String("conversation_id", conversationID),
			zap.String("role", string(role)),
			zap.Error(err),
		)
	}
}

// Recent returns at most limit turns in chronological order (oldest first).
// It returns nil when storage is empty or unavailable.
func (s *Store) Recent(ctx context.Context, conversationID string, limit int) []Turn {
	if s == nil || s.db == nil || limit <= 0 {
		return nil
	}

	rows, err := s.db.LatestConversationTurns(ctx, conversationID, limit)
	if err != nil {
		s.logger.Warn("failed to load conversation history",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return nil
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	turns := make([]Turn, len(rows))
	for i, row := range rows {
		turns[len(rows)-1-i] = Turn{
			Role:      Role(row.Role),
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
		}
	}
	return turns
}

// RenderTranscript renders turns as a labeled transcript for prompt
// prefixing. It returns "" for an empty history.
func RenderTranscript(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("これまでの会話:\n")
	for _, t := range turns {
		b.WriteString(label(t.Role))
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func label(r Role) string {
	if r == RoleAssistant {
		return "アシスタント"
	}
	return "ユーザー"
}
