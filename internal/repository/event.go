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

const eventColumns = `id, title, description, start_time, end_time, organizer_id,
	speaker_ids, capacity, status, reminder_sent, created_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.StartTime, &e.EndTime,
		&e.OrganizerID, &e.SpeakerIDs, &e.Capacity, &e.Status, &e.ReminderSent, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeEventNotFound, "event not found")
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}

// Create inserts a new event and returns it with a generated UUID.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) (*model.Event, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	e.ID = uuid.New().String()
	e.Status = model.StatusUpcoming
	e.CreatedAt = time.Now().UTC()
	if e.SpeakerIDs == nil {
		e.SpeakerIDs = []string{}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, title, description, start_time, end_time, organizer_id,
		 speaker_ids, capacity, status, reminder_sent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.Title, e.Description, e.StartTime, e.EndTime, e.OrganizerID,
		e.SpeakerIDs, e.Capacity, e.Status, e.ReminderSent, e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

// GetByID returns a single event or an EVENT_NOT_FOUND error.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

// List returns all events ordered by start time ascending.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY start_time ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Cancel marks an open event cancelled. Cancellation is an operator action
// and never applies to past or already-cancelled events.
func (r *EventRepository) Cancel(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events SET status = $1
		 WHERE id = $2 AND status IN ($3, $4)`,
		model.StatusCancelled, id, model.StatusUpcoming, model.StatusLive,
	)
	if err != nil {
		return fmt.Errorf("cancel event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the event is unknown or it is already terminal.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return apperr.New(apperr.CodeInvalidTransition, "event is already past or cancelled")
	}
	return nil
}

// PromoteDue applies the time-driven status transitions in one pass:
// upcoming→live for events inside their window, live→past and upcoming→past
// for events whose window has elapsed. Terminal events are never touched.
// The call is idempotent: with no qualifying events it is a no-op.
func (r *EventRepository) PromoteDue(ctx context.Context, now time.Time) (toLive, toPast int64, err error) {
	liveTag, err := r.db.Exec(ctx,
		`UPDATE events SET status = $1
		 WHERE status = $2 AND start_time <= $3 AND end_time > $3`,
		model.StatusLive, model.StatusUpcoming, now,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("promote upcoming to live: %w", err)
	}

	// Covers both live events that ended and upcoming events whose whole
	// window elapsed between ticks.
	pastTag, err := r.db.Exec(ctx,
		`UPDATE events SET status = $1
		 WHERE status IN ($2, $3) AND end_time <= $4`,
		model.StatusPast, model.StatusUpcoming, model.StatusLive, now,
	)
	if err != nil {
		return liveTag.RowsAffected(), 0, fmt.Errorf("promote to past: %w", err)
	}
	return liveTag.RowsAffected(), pastTag.RowsAffected(), nil
}

// DueForReminder selects upcoming events that have not been reminded and
// start within the window [now, now+window].
func (r *EventRepository) DueForReminder(ctx context.Context, now time.Time, window time.Duration) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE status = $1 AND reminder_sent = FALSE
		   AND start_time >= $2 AND start_time <= $3
		 ORDER BY start_time ASC`,
		model.StatusUpcoming, now, now.Add(window),
	)
	if err != nil {
		return nil, fmt.Errorf("select reminder-due events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// MarkReminderSent flips reminder_sent to true. The flag is monotone; the
// conditional WHERE makes redundant calls no-ops.
func (r *EventRepository) MarkReminderSent(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE events SET reminder_sent = TRUE
		 WHERE id = $1 AND reminder_sent = FALSE`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}
