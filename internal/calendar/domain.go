// Package calendar manages events and attendee RSVPs.
package calendar

import (
	"time"

	"github.com/taskhive/taskhive/internal/lifecycle"
)

// EventStatus is a calendar event lifecycle state.
type EventStatus string

const (
	EventScheduled EventStatus = "scheduled"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// EventTransitions is the event lifecycle. Completed and cancelled are
// terminal.
var EventTransitions = lifecycle.NewGraph(map[EventStatus][]EventStatus{
	EventScheduled: {EventCompleted, EventCancelled},
	EventCompleted: {},
	EventCancelled: {},
})

// RSVPStatus is an attendee's reply to an invitation.
type RSVPStatus string

const (
	RSVPInvited   RSVPStatus = "invited"
	RSVPAccepted  RSVPStatus = "accepted"
	RSVPDeclined  RSVPStatus = "declined"
	RSVPTentative RSVPStatus = "tentative"
)

// RSVPTransitions lets attendees revise a reply freely; only the initial
// invited state cannot be returned to.
var RSVPTransitions = lifecycle.NewGraph(map[RSVPStatus][]RSVPStatus{
	RSVPInvited:   {RSVPAccepted, RSVPDeclined, RSVPTentative},
	RSVPAccepted:  {RSVPDeclined, RSVPTentative},
	RSVPDeclined:  {RSVPAccepted, RSVPTentative},
	RSVPTentative: {RSVPAccepted, RSVPDeclined},
})

// ValidEventStatus reports whether s is a known event status.
func ValidEventStatus(s EventStatus) bool {
	return EventTransitions.Valid(s)
}

// ValidRSVP reports whether s is a known RSVP status.
func ValidRSVP(s RSVPStatus) bool {
	return RSVPTransitions.Valid(s)
}

// Event represents a calendar entry.
type Event struct {
	ID        int64       `json:"id"`
	ProjectID *int64      `json:"project_id,omitempty"`
	Title     string      `json:"title"`
	Status    EventStatus `json:"status"`
	StartsAt  time.Time   `json:"starts_at"`
	EndsAt    time.Time   `json:"ends_at"`
	CreatedBy int64       `json:"created_by"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Attendee ties a user to an event with an RSVP state.
type Attendee struct {
	EventID   int64      `json:"event_id"`
	UserID    int64      `json:"user_id"`
	RSVP      RSVPStatus `json:"rsvp"`
	UpdatedAt time.Time  `json:"updated_at"`
}
