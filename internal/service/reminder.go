package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/eventhive/eventhive/internal/model"
	"github.com/eventhive/eventhive/internal/repository"
)

// Sender delivers one outbound notification. Implementations never panic
// past their boundary; a failed send is reported as an error.
type Sender interface {
	Send(address, subject, body string) error
}

// ReminderStore selects reminder-due events and records completion.
type ReminderStore interface {
	DueForReminder(ctx context.Context, now time.Time, window time.Duration) ([]model.Event, error)
	MarkReminderSent(ctx context.Context, id string) error
}

// RegistrantLister resolves the registrants of an event with their contact
// addresses.
type RegistrantLister interface {
	Registrants(ctx context.Context, eventID string) ([]repository.Registrant, error)
}

// ReminderService sends one-time pre-event notifications. The contract is
// attempted-at-least-once, not delivery-guaranteed: each registrant gets
// exactly one send attempt per event, failures are logged and skipped, and
// the event is marked sent regardless so the next tick does not repeat it.
type ReminderService struct {
	events    ReminderStore
	registrar RegistrantLister
	sender    Sender
	window    time.Duration
	now       func() time.Time
}

// NewReminderService constructs a ReminderService. now defaults to time.Now.
func NewReminderService(events ReminderStore, registrar RegistrantLister, sender Sender, window time.Duration, now func() time.Time) *ReminderService {
	if now == nil {
		now = time.Now
	}
	return &ReminderService{
		events:    events,
		registrar: registrar,
		sender:    sender,
		window:    window,
		now:       now,
	}
}

// Tick processes every reminder-due event. A failure on one event is logged
// and does not block the others.
func (s *ReminderService) Tick(ctx context.Context) error {
	now := s.now().UTC()
	due, err := s.events.DueForReminder(ctx, now, s.window)
	if err != nil {
		return fmt.Errorf("select reminder-due events: %w", err)
	}

	for i := range due {
		if err := s.remind(ctx, &due[i]); err != nil {
			log.Printf("reminder: event %s: %v", due[i].ID, err)
		}
	}
	return nil
}

func (s *ReminderService) remind(ctx context.Context, event *model.Event) error {
	registrants, err := s.registrar.Registrants(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("list registrants: %w", err)
	}

	subject, body := composeReminder(event)
	sent := 0
	for _, reg := range registrants {
		address := strings.TrimSpace(reg.Email)
		if address == "" {
			continue
		}
		// Single attempt; a transient failure does not get a retry.
		if err := s.sender.Send(address, subject, body); err != nil {
			log.Printf("reminder: send to %s for event %s failed: %v", address, event.ID, err)
			continue
		}
		sent++
	}
	if len(registrants) > 0 {
		log.Printf("reminder: event %s: attempted %d registrant(s), %d sent", event.ID, len(registrants), sent)
	}

	// Marked sent even when every attempt failed, and for events with no
	// registrants at all, so reminders never double-fire.
	if err := s.events.MarkReminderSent(ctx, event.ID); err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}

func composeReminder(event *model.Event) (subject, body string) {
	subject = fmt.Sprintf("Reminder: %s starts soon", event.Title)
	body = fmt.Sprintf(
		"Hi,\n\n%s starts at %s.\n\nSee you there!\n",
		event.Title, event.StartTime.UTC().Format(time.RFC1123),
	)
	return subject, body
}
