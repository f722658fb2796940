// Package model defines the core domain types for the event platform.
package model

import (
	"strings"
	"time"

	"github.com/eventhive/eventhive/internal/apperr"
)

// Status is the lifecycle state of an event.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusLive      Status = "live"
	StatusPast      Status = "past"
	StatusCancelled Status = "cancelled"
)

// Open reports whether the event accepts registrations and room joins.
func (s Status) Open() bool {
	return s == StatusUpcoming || s == StatusLive
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusPast || s == StatusCancelled
}

// CanTransition reports whether the move from s to next is legal.
// The scheduler drives upcoming→live, live→past and upcoming→past;
// cancellation is an operator action from any open state.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusUpcoming:
		return next == StatusLive || next == StatusPast || next == StatusCancelled
	case StatusLive:
		return next == StatusPast || next == StatusCancelled
	default:
		return false
	}
}

// Role classifies a user identity.
type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleOrganizer Role = "organizer"
	RoleSpeaker   Role = "speaker"
	RoleAdmin     Role = "admin"
)

// User is the minimal identity record the verifier resolves tokens against.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Event represents a hosted event with a time window and optional capacity.
// Capacity == nil means unbounded admission.
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	OrganizerID  string    `json:"organizer_id"`
	SpeakerIDs   []string  `json:"speaker_ids"`
	Capacity     *int      `json:"capacity,omitempty"`
	Status       Status    `json:"status"`
	ReminderSent bool      `json:"reminder_sent"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasSpeaker reports whether userID is in the event's speaker set.
func (e *Event) HasSpeaker(userID string) bool {
	for _, id := range e.SpeakerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CanAnswerQuestions reports whether the user may moderate this event's Q&A.
// Callers must pass a freshly loaded event so the organizer/speaker set is
// not a stale snapshot.
func (e *Event) CanAnswerQuestions(user *User) bool {
	if user == nil {
		return false
	}
	return e.OrganizerID == user.ID || e.HasSpeaker(user.ID) || user.Role == RoleAdmin
}

// Validate checks the event invariants before any write is committed.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return apperr.New(apperr.CodeInvalidArgument, "event title is required")
	}
	if e.StartTime.IsZero() || e.EndTime.IsZero() {
		return apperr.New(apperr.CodeInvalidArgument, "event start and end times are required")
	}
	if !e.StartTime.Before(e.EndTime) {
		return apperr.New(apperr.CodeInvalidArgument, "event start time must be before end time")
	}
	if e.OrganizerID == "" {
		return apperr.New(apperr.CodeInvalidArgument, "event organizer is required")
	}
	if e.Capacity != nil && *e.Capacity <= 0 {
		return apperr.New(apperr.CodeInvalidArgument, "event capacity must be a positive integer")
	}
	return nil
}

// Registration represents a user's admission to an event.
type Registration struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Attended  bool      `json:"attended"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a persisted chat message.
type Message struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// Question is a persisted Q&A entry. Answered is monotone: once set it is
// never cleared, though a later authorized answer may overwrite the text.
type Question struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	AuthorID     string    `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	Text         string    `json:"text"`
	Answer       string    `json:"answer,omitempty"`
	AnsweredByID string    `json:"answered_by_id,omitempty"`
	Answered     bool      `json:"answered"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	SpeakerIDs  []string  `json:"speaker_ids"`
	Capacity    *int      `json:"capacity"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
