package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventReminder notifies accepted attendees of events starting within the
// configured window.
type EventReminder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	now    func() time.Time
}

func NewEventReminder(pool *pgxpool.Pool, logger *slog.Logger) *EventReminder {
	return &EventReminder{pool: pool, logger: logger, now: time.Now}
}

// Handle processes TaskEventReminder tasks.
func (r *EventReminder) Handle(ctx context.Context, t *asynq.Task) error {
	var payload EventReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	window, err := time.ParseDuration(payload.Window)
	if err != nil || window <= 0 {
		window = time.Hour
	}

	now := r.now().UTC()
	rows, err := r.pool.Query(ctx, `
		SELECT e.id, e.title, e.starts_at, u.username
		FROM events e
		JOIN event_attendees a ON a.event_id = e.id AND a.rsvp = 'accepted'
		JOIN users u ON u.id = a.user_id
		WHERE e.status = 'scheduled' AND e.starts_at BETWEEN $1 AND $2`,
		now, now.Add(window))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			eventID  int64
			title    string
			startsAt time.Time
			username string
		)
		if err := rows.Scan(&eventID, &title, &startsAt, &username); err != nil {
			return err
		}
		// Placeholder for mail delivery; the log line is the notification
		// channel until SMTP is wired up.
		r.logger.Info("event reminder",
			slog.Int64("event_id", eventID),
			slog.String("title", title),
			slog.String("attendee", username),
			slog.Time("starts_at", startsAt))
	}
	return rows.Err()
}
