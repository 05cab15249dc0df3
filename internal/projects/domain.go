// Package projects manages project records and their lifecycle.
package projects

import (
	"time"

	"github.com/taskhive/taskhive/internal/lifecycle"
)

// Status is a project lifecycle state. The string values are a wire
// contract.
type Status string

const (
	StatusPlanning  Status = "planning"
	StatusActive    Status = "active"
	StatusOnHold    Status = "on_hold"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Transitions is the project lifecycle. Completed and cancelled are
// terminal.
var Transitions = lifecycle.NewGraph(map[Status][]Status{
	StatusPlanning:  {StatusActive, StatusCancelled},
	StatusActive:    {StatusOnHold, StatusCompleted, StatusCancelled},
	StatusOnHold:    {StatusActive, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
})

// ValidStatus reports whether s is a known project status.
func ValidStatus(s Status) bool {
	return Transitions.Valid(s)
}

// CanTransition reports whether a project may move from one status to
// another.
func CanTransition(from, to Status) bool {
	return Transitions.CanTransition(from, to)
}

// Terminal reports whether s ends the project's lifecycle.
func Terminal(s Status) bool {
	return Transitions.Terminal(s)
}

// Project represents a project record.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
