package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventhive/eventhive/internal/apperr"
	"github.com/eventhive/eventhive/internal/model"
)

// QuestionRepository handles persistence for Q&A entries.
type QuestionRepository struct {
	db *pgxpool.Pool
}

// NewQuestionRepository constructs a QuestionRepository.
func NewQuestionRepository(db *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Insert persists an unanswered question and fills in its ID and timestamp.
func (r *QuestionRepository) Insert(ctx context.Context, q *model.Question) error {
	q.ID = uuid.New().String()
	q.Answered = false
	q.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO questions (id, event_id, author_id, text, answered, created_at)
		 VALUES ($1, $2, $3, $4, FALSE, $5)`,
		q.ID, q.EventID, q.AuthorID, q.Text, q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

// ListByEvent returns the full Q&A history for an event, newest first.
func (r *QuestionRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Question, error) {
	rows, err := r.db.Query(ctx,
		`SELECT q.id, q.event_id, q.author_id, u.name, q.text, q.answer,
		        COALESCE(q.answered_by_id, ''), q.answered, q.created_at
		 FROM questions q
		 JOIN users u ON u.id = q.author_id
		 WHERE q.event_id = $1
		 ORDER BY q.created_at DESC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.EventID, &q.AuthorID, &q.AuthorName, &q.Text,
			&q.Answer, &q.AnsweredByID, &q.Answered, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Answer records an answer on a question scoped to its event and returns the
// updated row. The statement sets answered = TRUE unconditionally and never
// clears it: a later authorized answer may overwrite the text, but the flag
// is monotone.
func (r *QuestionRepository) Answer(ctx context.Context, eventID, questionID, answer, answeredByID string) (*model.Question, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE questions q
		 SET answer = $1, answered_by_id = $2, answered = TRUE
		 FROM users u
		 WHERE q.id = $3 AND q.event_id = $4 AND u.id = q.author_id
		 RETURNING q.id, q.event_id, q.author_id, u.name, q.text, q.answer,
		           COALESCE(q.answered_by_id, ''), q.answered, q.created_at`,
		answer, answeredByID, questionID, eventID,
	)

	var q model.Question
	err := row.Scan(&q.ID, &q.EventID, &q.AuthorID, &q.AuthorName, &q.Text,
		&q.Answer, &q.AnsweredByID, &q.Answered, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeQuestionNotFound, "question not found")
		}
		return nil, fmt.Errorf("answer question: %w", err)
	}
	return &q, nil
}
