package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eventhive/eventhive/internal/apperr"
	"github.com/eventhive/eventhive/internal/model"
	"github.com/eventhive/eventhive/internal/repository"
)

// memStore is an in-memory stand-in for the repositories. Its mutex plays
// the role of the per-event row lock: the capacity check and the insert
// happen as one atomic unit.
type memStore struct {
	mu          sync.Mutex
	events      map[string]*model.Event
	regs        map[string]map[string]model.Registration
	registrants map[string][]repository.Registrant
	sentMarks   map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		events:      make(map[string]*model.Event),
		regs:        make(map[string]map[string]model.Registration),
		registrants: make(map[string][]repository.Registrant),
		sentMarks:   make(map[string]int),
	}
}

func (s *memStore) putEvent(e *model.Event) {
	s.mu.Lock()
	s.events[e.ID] = e
	s.mu.Unlock()
}

func (s *memStore) Admit(_ context.Context, eventID, userID string) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return nil, apperr.New(apperr.CodeEventNotFound, "event not found")
	}
	if !event.Status.Open() {
		return nil, apperr.New(apperr.CodeEventNotOpen,
			fmt.Sprintf("cannot register for an event that is %s", event.Status))
	}
	byUser := s.regs[eventID]
	if byUser == nil {
		byUser = make(map[string]model.Registration)
		s.regs[eventID] = byUser
	}
	if _, dup := byUser[userID]; dup {
		return nil, apperr.New(apperr.CodeAlreadyRegistered, "already registered for this event")
	}
	if event.Capacity != nil && len(byUser) >= *event.Capacity {
		return nil, apperr.New(apperr.CodeCapacityExceeded, "event is fully booked")
	}
	reg := model.Registration{
		ID:        fmt.Sprintf("reg-%s-%s", eventID, userID),
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	byUser[userID] = reg
	return &reg, nil
}

func (s *memStore) Withdraw(_ context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// An unknown event has no registrations, so the two cases collapse.
	byUser := s.regs[eventID]
	if _, ok := byUser[userID]; !ok {
		return apperr.New(apperr.CodeNotRegistered, "not registered for this event")
	}
	delete(byUser, userID)
	return nil
}

func (s *memStore) registrationCount(eventID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.regs[eventID])
}

func (s *memStore) PromoteDue(_ context.Context, now time.Time) (toLive, toPast int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events {
		switch {
		case e.Status == model.StatusUpcoming && !e.StartTime.After(now) && e.EndTime.After(now):
			e.Status = model.StatusLive
			toLive++
		case e.Status.Open() && !e.EndTime.After(now):
			e.Status = model.StatusPast
			toPast++
		}
	}
	return toLive, toPast, nil
}

func (s *memStore) DueForReminder(_ context.Context, now time.Time, window time.Duration) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []model.Event
	for _, e := range s.events {
		if e.Status != model.StatusUpcoming || e.ReminderSent {
			continue
		}
		if e.StartTime.Before(now) || e.StartTime.After(now.Add(window)) {
			continue
		}
		due = append(due, *e)
	}
	return due, nil
}

func (s *memStore) MarkReminderSent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.events[id]; ok && !e.ReminderSent {
		e.ReminderSent = true
		s.sentMarks[id]++
	}
	return nil
}

func (s *memStore) Registrants(_ context.Context, eventID string) ([]repository.Registrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registrants[eventID], nil
}

// recordingSender captures send attempts and can fail selected addresses.
type recordingSender struct {
	mu    sync.Mutex
	sent  []string
	fails map[string]bool
}

func (r *recordingSender) Send(address, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, address)
	if r.fails[address] {
		return fmt.Errorf("smtp unavailable for %s", address)
	}
	return nil
}

func (r *recordingSender) attempts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

func upcomingEvent(id string, start, end time.Time) *model.Event {
	return &model.Event{
		ID:          id,
		Title:       "Event " + id,
		StartTime:   start,
		EndTime:     end,
		OrganizerID: "org-1",
		Status:      model.StatusUpcoming,
	}
}
