package database

import (
	"context"
	"fmt"
	"time"
)

// ConversationTurn is one stored user message or generated reply.
type ConversationTurn struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// InsertConversationTurn appends a turn. Timestamps are stored in UTC so that
// ordering by created_at is consistent.
func (d *DB) InsertConversationTurn(ctx context.Context, conversationID, role, content string, createdAt time.Time) (*ConversationTurn, error) {
	createdAt = createdAt.UTC()
	result, err := d.ExecContext(ctx, `
		INSERT INTO conversation_turns (conversation_id, role, content, created_at)
		VALUES (?, ?, ?, ?)
	`, conversationID, role, content, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert conversation turn: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation turn id: %w", err)
	}

	return &ConversationTurn{
		ID:             id,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      createdAt,
	}, nil
}

// LatestConversationTurns returns up to limit turns for a conversation,
// newest first.
func (d *DB) LatestConversationTurns(ctx context.Context, conversationID string, limit int) ([]ConversationTurn, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, created_at
		FROM conversation_turns
		WHERE conversation_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation turns: %w", err)
	}
	defer rows.Close()

	var turns []ConversationTurn
	for rows.Next() {
		var t ConversationTurn
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation turn: %w", err)
		}
		turns = append(turns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversation turns: %w", err)
	}

	return turns, nil
}

// DeleteConversationTurnsBefore removes turns created before cutoff and
// returns how many were deleted.
func (d *DB) DeleteConversationTurnsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := d.ExecContext(ctx, `DELETE FROM conversation_turns WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete conversation turns: %w", err)
	}
	return result.RowsAffected()
}
