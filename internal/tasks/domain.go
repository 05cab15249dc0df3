// Package tasks manages work items and their board lifecycle.
package tasks

import (
	"time"

	"github.com/taskhive/taskhive/internal/lifecycle"
)

// Status is a task board state. The string values are a wire contract.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusInReview   Status = "in_review"
	StatusDone       Status = "done"
)

// StatusChain is the canonical board order. Next/Previous step along it and
// never wrap.
var StatusChain = lifecycle.NewChain(StatusTodo, StatusInProgress, StatusInReview, StatusDone)

// Transitions permits exactly the chain's single steps, forward and back,
// with done terminal. Out-of-chain jumps (todo straight to done) are
// rejected even through generic update paths.
var Transitions = StatusChain.StepGraph()

// statusWeights orders statuses for board sorting; unknown statuses sink to
// the front.
var statusWeights = lifecycle.NewMeta(map[Status]int{
	StatusTodo:       1,
	StatusInProgress: 2,
	StatusInReview:   3,
	StatusDone:       4,
}, 0)

// ValidStatus reports whether s is a known task status.
func ValidStatus(s Status) bool {
	return StatusChain.Valid(s)
}

// CanTransition reports whether a task may move from one status to another.
func CanTransition(from, to Status) bool {
	return Transitions.CanTransition(from, to)
}

// NextStatus returns the status after s on the board. No value at the end
// of the chain or for unknown input.
func NextStatus(s Status) (Status, bool) {
	return StatusChain.Next(s)
}

// PreviousStatus returns the status before s on the board.
func PreviousStatus(s Status) (Status, bool) {
	return StatusChain.Previous(s)
}

// StatusWeight returns the board sort weight for s.
func StatusWeight(s Status) int {
	return statusWeights.Get(s)
}

// statusLabels carries column labels the humanizer would get wrong.
var statusLabels = lifecycle.NewMeta(map[Status]string{
	StatusTodo: "To Do",
}, "")

// StatusLabel returns the display label for s, falling back to the
// humanized token for statuses without an explicit label.
func StatusLabel(s Status) string {
	if label, ok := statusLabels.Lookup(s); ok {
		return label
	}
	return lifecycle.Humanize(s)
}

// Task represents a work item.
type Task struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	AssigneeID  *int64    `json:"assignee_id,omitempty"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
