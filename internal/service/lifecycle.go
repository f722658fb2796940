package service

import (
	"context"
	"fmt"
	"log"
	"time"
)

// LifecycleStore applies time-driven status transitions in the store.
type LifecycleStore interface {
	PromoteDue(ctx context.Context, now time.Time) (toLive, toPast int64, err error)
}

// LifecycleService derives event status from the current time. Tick is
// idempotent and safe to invoke redundantly; it is typically run once
// eagerly at startup and then on every scheduler tick.
type LifecycleService struct {
	events LifecycleStore
	now    func() time.Time
}

// NewLifecycleService constructs a LifecycleService. now defaults to time.Now.
func NewLifecycleService(events LifecycleStore, now func() time.Time) *LifecycleService {
	if now == nil {
		now = time.Now
	}
	return &LifecycleService{events: events, now: now}
}

// Tick applies every due transition against the current time.
func (s *LifecycleService) Tick(ctx context.Context) error {
	now := s.now().UTC()
	toLive, toPast, err := s.events.PromoteDue(ctx, now)
	if err != nil {
		return fmt.Errorf("promote due events: %w", err)
	}
	if toLive > 0 {
		log.Printf("lifecycle: %d event(s) moved to live", toLive)
	}
	if toPast > 0 {
		log.Printf("lifecycle: %d event(s) moved to past", toPast)
	}
	return nil
}
