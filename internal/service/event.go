package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/eventhive/eventhive/internal/apperr"
	"github.com/eventhive/eventhive/internal/model"
)

// EventStore is the event persistence the event service relies on.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) (*model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	Cancel(ctx context.Context, id string) error
}

// RegistrationLister lists the registrations of an event.
type RegistrationLister interface {
	ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error)
}

// EventService orchestrates the event HTTP surface.
type EventService struct {
	events        EventStore
	registrations RegistrationLister
}

// NewEventService constructs an EventService.
func NewEventService(events EventStore, registrations RegistrationLister) *EventService {
	return &EventService{events: events, registrations: registrations}
}

// CreateEvent validates the request and creates an upcoming event owned by
// the acting user.
func (s *EventService) CreateEvent(ctx context.Context, organizer *model.User, req model.CreateEventRequest) (*model.Event, error) {
	if organizer == nil {
		return nil, apperr.New(apperr.CodeTokenMissing, "authentication required")
	}
	event := &model.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		OrganizerID: organizer.ID,
		SpeakerIDs:  req.SpeakerIDs,
		Capacity:    req.Capacity,
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	created, err := s.events.Create(ctx, event)
	if err != nil {
		if apperr.CodeOf(err) != apperr.CodeUnknown {
			return nil, err
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return created, nil
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "event id is required")
	}
	return s.events.GetByID(ctx, id)
}

// ListEvents returns all events.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.events.List(ctx)
}

// CancelEvent cancels an open event. Only the organizer or an admin may
// cancel, and past or cancelled events stay untouched.
func (s *EventService) CancelEvent(ctx context.Context, actor *model.User, id string) error {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actor == nil || (event.OrganizerID != actor.ID && actor.Role != model.RoleAdmin) {
		return apperr.New(apperr.CodeForbidden, "only the organizer or an admin may cancel this event")
	}
	return s.events.Cancel(ctx, id)
}

// ListRegistrations returns all registrations for an event. Restricted to
// the organizer or an admin.
func (s *EventService) ListRegistrations(ctx context.Context, actor *model.User, eventID string) ([]model.Registration, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if actor == nil || (event.OrganizerID != actor.ID && actor.Role != model.RoleAdmin) {
		return nil, apperr.New(apperr.CodeForbidden, "only the organizer or an admin may view registrations")
	}
	return s.registrations.ListByEvent(ctx, eventID)
}
