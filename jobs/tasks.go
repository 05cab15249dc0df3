package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/taskhive/taskhive/internal/export"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueExports carries export generation, kept separate so a burst of
	// exports cannot starve housekeeping jobs.
	QueueExports = "exports"

	// TaskExportGenerate produces an export artifact for a pending job.
	TaskExportGenerate = "export:generate"
	// TaskExportPurge removes expired export rows and their files.
	TaskExportPurge = "export:purge_expired"
	// TaskEventReminder notifies attendees of events starting soon.
	TaskEventReminder = "calendar:reminder"
)

// ExportGeneratePayload identifies the job the worker should produce.
type ExportGeneratePayload struct {
	JobID string      `json:"job_id"`
	Kind  export.Kind `json:"kind"`
}

// NewExportGenerateTask constructs an Asynq task for export generation.
func NewExportGenerateTask(payload ExportGeneratePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExportGenerate, data, asynq.Queue(QueueExports)), nil
}

// ExportPurgePayload carries scheduling metadata for the purge cron.
type ExportPurgePayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewExportPurgeTask constructs an Asynq task for export purging.
func NewExportPurgeTask(at time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(ExportPurgePayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExportPurge, data, asynq.Queue(QueueDefault)), nil
}

// EventReminderPayload carries scheduling metadata for the reminder cron.
type EventReminderPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
	Window       string    `json:"window"`
}

// NewEventReminderTask constructs an Asynq task for event reminders.
func NewEventReminderTask(at time.Time, window time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(EventReminderPayload{ScheduledFor: at, Window: window.String()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEventReminder, data, asynq.Queue(QueueDefault)), nil
}
