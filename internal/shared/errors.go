package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden indicates the actor lacks authority for the action.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition indicates a status change outside the entity's
	// transition table.
	ErrInvalidTransition = errors.New("invalid status transition")
)
