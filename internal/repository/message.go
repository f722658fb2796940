package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventhive/eventhive/internal/model"
)

// MessageRepository handles persistence for chat messages.
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository constructs a MessageRepository.
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Insert persists a chat message and fills in its ID and timestamp.
func (r *MessageRepository) Insert(ctx context.Context, m *model.Message) error {
	m.ID = uuid.New().String()
	m.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO messages (id, event_id, author_id, text, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.EventID, m.AuthorID, m.Text, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// RecentByEvent returns the most recent limit messages in chronological
// order. The query fetches newest-first and the slice is reversed, so the
// limit trims the oldest messages.
func (r *MessageRepository) RecentByEvent(ctx context.Context, eventID string, limit int) ([]model.Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT m.id, m.event_id, m.author_id, u.name, m.text, m.created_at
		 FROM messages m
		 JOIN users u ON u.id = m.author_id
		 WHERE m.event_id = $1
		 ORDER BY m.created_at DESC
		 LIMIT $2`,
		eventID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.EventID, &m.AuthorID, &m.AuthorName, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
