// Package users manages member accounts: their lifecycle status and their
// role assignment.
package users

import (
	"time"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/lifecycle"
)

// Status is an account lifecycle state. The string values are a wire
// contract.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusArchived  Status = "archived"
)

// Transitions is the account lifecycle. Archived is terminal: an archived
// account can never come back.
var Transitions = lifecycle.NewGraph(map[Status][]Status{
	StatusPending:   {StatusActive, StatusArchived},
	StatusActive:    {StatusInactive, StatusSuspended, StatusArchived},
	StatusInactive:  {StatusActive, StatusArchived},
	StatusSuspended: {StatusActive, StatusArchived},
	StatusArchived:  {},
})

// ValidStatus reports whether s is a known account status.
func ValidStatus(s Status) bool {
	return Transitions.Valid(s)
}

// CanTransition reports whether an account may move from one status to
// another.
func CanTransition(from, to Status) bool {
	return Transitions.CanTransition(from, to)
}

// User represents a member account.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Role         authz.Role `json:"role"`
	Status       Status     `json:"status"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
