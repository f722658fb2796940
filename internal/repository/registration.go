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

// RegistrationRepository handles persistence for registrations.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Admit performs a concurrency-safe registration inside a serialised
// transaction.
//
// A naive count-then-insert is broken: two goroutines can both read the same
// booked_count before either writes, and a full event ends up overbooked.
// SELECT ... FOR UPDATE takes a row-level exclusive lock on the event row,
// so concurrent admissions for the same event queue behind each other while
// admissions for different events proceed independently. The capacity check
// and the insert commit as one atomic unit.
func (r *RegistrationRepository) Admit(ctx context.Context, eventID, userID string) (*model.Registration, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Lock the event row and read the fields the admission decision needs.
	var status model.Status
	var capacity *int
	var bookedCount int
	err = tx.QueryRow(ctx,
		`SELECT status, capacity, booked_count
		 FROM events
		 WHERE id = $1
		 FOR UPDATE`,
		eventID,
	).Scan(&status, &capacity, &bookedCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeEventNotFound, "event not found")
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	if !status.Open() {
		err = apperr.New(apperr.CodeEventNotOpen,
			fmt.Sprintf("cannot register for an event that is %s", status))
		return nil, err
	}

	var dupCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	).Scan(&dupCount)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if dupCount > 0 {
		err = apperr.New(apperr.CodeAlreadyRegistered, "already registered for this event")
		return nil, err
	}

	// NULL capacity means unbounded admission.
	if capacity != nil && bookedCount >= *capacity {
		err = apperr.New(apperr.CodeCapacityExceeded, "event is fully booked")
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE events SET booked_count = booked_count + 1 WHERE id = $1`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("increment booked_count: %w", err)
	}

	reg := &model.Registration{
		ID:        uuid.New().String(),
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO registrations (id, event_id, user_id, attended, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		reg.ID, reg.EventID, reg.UserID, reg.Attended, reg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return reg, nil
}

// Withdraw removes a registration and releases its seat under the same
// per-event lock that Admit takes, keeping the counter consistent.
func (r *RegistrationRepository) Withdraw(ctx context.Context, eventID, userID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT TRUE FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No event means no registration to withdraw.
			return apperr.New(apperr.CodeNotRegistered, "not registered for this event")
		}
		return fmt.Errorf("lock event row: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM registrations WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = apperr.New(apperr.CodeNotRegistered, "not registered for this event")
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE events SET booked_count = booked_count - 1 WHERE id = $1 AND booked_count > 0`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("decrement booked_count: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListByEvent returns all registrations for a given event.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, event_id, user_id, attended, created_at
		 FROM registrations
		 WHERE event_id = $1
		 ORDER BY created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Attended, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// Registrants returns contact details for every registrant of an event.
func (r *RegistrationRepository) Registrants(ctx context.Context, eventID string) ([]Registrant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.id, u.name, u.email
		 FROM registrations reg
		 JOIN users u ON u.id = reg.user_id
		 WHERE reg.event_id = $1
		 ORDER BY reg.created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	defer rows.Close()

	var out []Registrant
	for rows.Next() {
		var reg Registrant
		if err := rows.Scan(&reg.UserID, &reg.Name, &reg.Email); err != nil {
			return nil, fmt.Errorf("scan registrant: %w", err)
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}
