// Package export tracks asynchronous export jobs: requested over HTTP,
// produced by the background worker, observed by clients through polling.
package export

import (
	"time"

	"github.com/taskhive/taskhive/internal/lifecycle"
)

// Status is an export job lifecycle state. The string values are a wire
// contract with polling clients.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Transitions is the job lifecycle. Completed, failed and cancelled are all
// terminal; a finished job never moves again.
var Transitions = lifecycle.NewGraph(map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted:  {},
	StatusFailed:     {},
	StatusCancelled:  {},
})

// ValidStatus reports whether s is a known job status.
func ValidStatus(s Status) bool {
	return Transitions.Valid(s)
}

// Terminal reports whether s ends the job's lifecycle.
func Terminal(s Status) bool {
	return Transitions.Terminal(s)
}

// IsProcessing reports whether the job is still underway: queued or
// actively running.
func IsProcessing(s Status) bool {
	return s == StatusPending || s == StatusProcessing
}

// IsCompleted reports whether the job produced its artifact.
func IsCompleted(s Status) bool {
	return s == StatusCompleted
}

// IsFailed reports whether the job ended without an artifact. Cancellation
// counts: for "can I download this" purposes a cancelled job and a failed
// one are the same. Use IsCancelled to tell them apart.
func IsFailed(s Status) bool {
	return s == StatusFailed || s == StatusCancelled
}

// IsCancelled reports whether the job was cancelled by its owner rather
// than failing on its own.
func IsCancelled(s Status) bool {
	return s == StatusCancelled
}

// Kind selects what an export job produces.
type Kind string

const (
	KindTasks    Kind = "tasks"
	KindProjects Kind = "projects"
)

// ValidKind reports whether k is a supported export kind.
func ValidKind(k Kind) bool {
	return k == KindTasks || k == KindProjects
}

// Creator is the denormalized owner embedded in the job record.
type Creator struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// Job is the export record shape consumed by polling clients. Progress is
// only meaningful while processing; download_url and filename are
// guaranteed present once completed. Timestamps satisfy
// created_at <= started_at <= (completed|failed|cancelled)_at <= expires_at.
type Job struct {
	ID           string     `json:"id"`
	Kind         Kind       `json:"kind"`
	Status       Status     `json:"status"`
	Progress     int        `json:"progress"`
	Message      string     `json:"message,omitempty"`
	Filename     string     `json:"filename,omitempty"`
	DownloadURL  string     `json:"download_url,omitempty"`
	FileSize     int64      `json:"file_size,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	FailedAt     *time.Time `json:"failed_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedBy    Creator    `json:"created_by"`
}
