package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskhive/taskhive/internal/platform/httpx"
	"github.com/taskhive/taskhive/internal/shared"
)

// Service handles calendar business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListEvents returns all events.
func (s *Service) ListEvents(ctx context.Context) ([]Event, error) {
	return s.repo.ListEvents(ctx)
}

// GetEvent fetches a single event.
func (s *Service) GetEvent(ctx context.Context, id int64) (*Event, error) {
	return s.repo.GetEvent(ctx, id)
}

// CreateEvent adds an event in the scheduled state.
func (s *Service) CreateEvent(ctx context.Context, creatorID int64, projectID *int64, title string, startsAt, endsAt time.Time) (*Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title required", httpx.ErrValidation)
	}
	if !endsAt.After(startsAt) {
		return nil, fmt.Errorf("%w: event must end after it starts", httpx.ErrValidation)
	}
	return s.repo.CreateEvent(ctx, Event{
		ProjectID: projectID,
		Title:     title,
		Status:    EventScheduled,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		CreatedBy: creatorID,
	})
}

// ChangeEventStatus completes or cancels an event.
func (s *Service) ChangeEventStatus(ctx context.Context, id int64, to EventStatus) (*Event, error) {
	if !ValidEventStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, to)
	}
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !EventTransitions.CanTransition(event.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", shared.ErrInvalidTransition, event.Status, to)
	}
	if err := s.repo.UpdateEventStatus(ctx, id, event.Status, to); err != nil {
		return nil, err
	}
	return s.repo.GetEvent(ctx, id)
}

// Respond records a user's RSVP. First replies start from the implicit
// invited state; later replies must follow the RSVP transition table.
func (s *Service) Respond(ctx context.Context, eventID, userID int64, rsvp RSVPStatus) (*Attendee, error) {
	if !ValidRSVP(rsvp) {
		return nil, fmt.Errorf("%w: unknown rsvp %q", httpx.ErrValidation, rsvp)
	}
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if EventTransitions.Terminal(event.Status) {
		return nil, fmt.Errorf("%w: event is %s", shared.ErrInvalidTransition, event.Status)
	}
	current := RSVPInvited
	existing, err := s.repo.GetAttendee(ctx, eventID, userID)
	switch {
	case err == nil:
		current = existing.RSVP
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}
	if !RSVPTransitions.CanTransition(current, rsvp) {
		return nil, fmt.Errorf("%w: %s -> %s", shared.ErrInvalidTransition, current, rsvp)
	}
	attendee := Attendee{EventID: eventID, UserID: userID, RSVP: rsvp}
	if err := s.repo.UpsertAttendee(ctx, attendee); err != nil {
		return nil, err
	}
	return s.repo.GetAttendee(ctx, eventID, userID)
}
