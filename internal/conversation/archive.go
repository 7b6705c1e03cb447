// Package conversation persists chat transcripts to PostgreSQL for
// long-term history and human review, independent of the Redis session
// store's TTL.
package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Archive stores conversations and their messages.
type Archive struct {
	db *sql.DB
}

// NewArchive creates a conversation archive. Returns nil when no
// database is configured; all methods are nil-safe no-ops in that case.
func NewArchive(db *sql.DB) *Archive {
	if db == nil {
		return nil
	}
	return &Archive{db: db}
}

// Record represents an archived conversation.
type Record struct {
	ID               uuid.UUID
	SessionID        string
	BusinessID       string
	LeadID           *uuid.UUID
	Status           string
	MessageCount     int
	UserMessageCount int
	BotMessageCount  int
	StartedAt        time.Time
	LastMessageAt    *time.Time
}

// MessageRecord represents one archived message.
type MessageRecord struct {
	ID        uuid.UUID
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}

// EnsureConversation creates or touches a conversation row and returns
// its UUID.
func (a *Archive) EnsureConversation(ctx context.Context, businessID, sessionID string) (uuid.UUID, error) {
	if a == nil || a.db == nil {
		return uuid.Nil, nil
	}
	if strings.TrimSpace(sessionID) == "" {
		return uuid.Nil, fmt.Errorf("conversation: session id required")
	}

	var existingID uuid.UUID
	err := a.db.QueryRowContext(ctx,
		`SELECT id FROM conversations WHERE session_id = $1`,
		sessionID,
	).Scan(&existingID)

	if err == nil {
		_, _ = a.db.ExecContext(ctx,
			`UPDATE conversations SET updated_at = $1 WHERE id = $2`,
			time.Now(), existingID,
		)
		return existingID, nil
	}
	if err != sql.ErrNoRows {
		return uuid.Nil, fmt.Errorf("conversation: failed to check existing: %w", err)
	}

	newID := uuid.New()
	now := time.Now()
	_, err = a.db.ExecContext(ctx, `
		INSERT INTO conversations (
			id, session_id, business_id, status,
			message_count, user_message_count, bot_message_count,
			started_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, newID, sessionID, businessID, "active", 0, 0, 0, now, now, now)

	if err != nil {
		// Another turn may have created it between the check and insert.
		if strings.Contains(err.Error(), "duplicate key") {
			return a.EnsureConversation(ctx, businessID, sessionID)
		}
		return uuid.Nil, fmt.Errorf("conversation: failed to create: %w", err)
	}
	return newID, nil
}

// AppendMessage persists a message and updates conversation counters.
func (a *Archive) AppendMessage(ctx context.Context, businessID, sessionID, role, content string, timestamp time.Time) error {
	if a == nil || a.db == nil {
		return nil
	}

	if _, err := a.EnsureConversation(ctx, businessID, sessionID); err != nil {
		return err
	}

	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := a.db.ExecContext(ctx, `
		INSERT INTO conversation_messages (id, session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, uuid.New(), sessionID, role, content, timestamp)
	if err != nil {
		return fmt.Errorf("conversation: failed to insert message: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("conversation: failed to read insert result: %w", err)
	}
	if rowsAffected == 0 {
		return nil
	}

	counterColumn := "bot_message_count"
	if role == "user" {
		counterColumn = "user_message_count"
	}
	_, err = a.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE conversations SET
			message_count = message_count + 1,
			%s = %s + 1,
			last_message_at = $1,
			updated_at = $1
		WHERE session_id = $2
	`, counterColumn, counterColumn), timestamp, sessionID)
	if err != nil {
		return fmt.Errorf("conversation: failed to update counters: %w", err)
	}
	return nil
}

// UpdateStatus updates the conversation status (active, escalated,
// complete, converted).
func (a *Archive) UpdateStatus(ctx context.Context, sessionID, status string) error {
	if a == nil || a.db == nil {
		return nil
	}
	_, err := a.db.ExecContext(ctx, `
		UPDATE conversations SET status = $1, updated_at = $2
		WHERE session_id = $3
	`, status, time.Now(), sessionID)
	return err
}

// LinkLead associates a created lead with its conversation.
func (a *Archive) LinkLead(ctx context.Context, sessionID string, leadID uuid.UUID) error {
	if a == nil || a.db == nil {
		return nil
	}
	_, err := a.db.ExecContext(ctx, `
		UPDATE conversations SET lead_id = $1, updated_at = $2
		WHERE session_id = $3
	`, leadID, time.Now(), sessionID)
	return err
}

// GetMessages retrieves archived messages for a session in arrival order.
func (a *Archive) GetMessages(ctx context.Context, sessionID string, limit int) ([]MessageRecord, error) {
	if a == nil || a.db == nil {
		return nil, nil
	}

	query := `
		SELECT id, session_id, role, content, created_at
		FROM conversation_messages
		WHERE session_id = $1
		ORDER BY created_at ASC
	`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to get messages: %w", err)
	}
	defer rows.Close()

	var messages []MessageRecord
	for rows.Next() {
		var msg MessageRecord
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("conversation: failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// GetConversation retrieves a conversation by session id.
func (a *Archive) GetConversation(ctx context.Context, sessionID string) (*Record, error) {
	if a == nil || a.db == nil {
		return nil, nil
	}

	var rec Record
	var leadID sql.NullString
	var lastMessageAt sql.NullTime

	err := a.db.QueryRowContext(ctx, `
		SELECT id, session_id, business_id, lead_id, status,
			   message_count, user_message_count, bot_message_count,
			   started_at, last_message_at
		FROM conversations
		WHERE session_id = $1
	`, sessionID).Scan(
		&rec.ID, &rec.SessionID, &rec.BusinessID, &leadID, &rec.Status,
		&rec.MessageCount, &rec.UserMessageCount, &rec.BotMessageCount,
		&rec.StartedAt, &lastMessageAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to get: %w", err)
	}

	if leadID.Valid {
		if parsed, parseErr := uuid.Parse(leadID.String); parseErr == nil {
			rec.LeadID = &parsed
		}
	}
	if lastMessageAt.Valid {
		rec.LastMessageAt = &lastMessageAt.Time
	}
	return &rec, nil
}
