// Package service implements business logic, validation, and orchestration
// between the transport surfaces and the repository layer.
package service

import (
	"context"
	"fmt"

	"github.com/eventhive/eventhive/internal/apperr"
	"github.com/eventhive/eventhive/internal/model"
)

// AdmissionStore is the registration persistence the admission controller
// relies on. Admit must be atomic per event: the capacity check and the
// insert commit as one unit across concurrent callers.
type AdmissionStore interface {
	Admit(ctx context.Context, eventID, userID string) (*model.Registration, error)
	Withdraw(ctx context.Context, eventID, userID string) error
}

// AdmissionService creates and removes registrations under the per-event
// capacity ceiling and the (event, user) uniqueness constraint.
type AdmissionService struct {
	registrations AdmissionStore
}

// NewAdmissionService constructs an AdmissionService.
func NewAdmissionService(registrations AdmissionStore) *AdmissionService {
	return &AdmissionService{registrations: registrations}
}

// Admit registers a user for an event. The store rejects unknown events,
// closed events, duplicates, and full events.
func (s *AdmissionService) Admit(ctx context.Context, eventID, userID string) (*model.Registration, error) {
	if eventID == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "event id is required")
	}
	if userID == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "user id is required")
	}

	reg, err := s.registrations.Admit(ctx, eventID, userID)
	if err != nil {
		if apperr.CodeOf(err) != apperr.CodeUnknown {
			return nil, err
		}
		return nil, fmt.Errorf("admit registration: %w", err)
	}
	return reg, nil
}

// Withdraw removes a user's registration.
func (s *AdmissionService) Withdraw(ctx context.Context, eventID, userID string) error {
	if eventID == "" {
		return apperr.New(apperr.CodeInvalidArgument, "event id is required")
	}
	if userID == "" {
		return apperr.New(apperr.CodeInvalidArgument, "user id is required")
	}

	if err := s.registrations.Withdraw(ctx, eventID, userID); err != nil {
		if apperr.CodeOf(err) != apperr.CodeUnknown {
			return err
		}
		return fmt.Errorf("withdraw registration: %w", err)
	}
	return nil
}
