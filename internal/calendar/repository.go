package calendar

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive/internal/shared"
)

// RepositoryPort defines data access methods for calendar entries.
type RepositoryPort interface {
	ListEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, id int64) (*Event, error)
	CreateEvent(ctx context.Context, event Event) (*Event, error)
	UpdateEventStatus(ctx context.Context, id int64, from, to EventStatus) error
	GetAttendee(ctx context.Context, eventID, userID int64) (*Attendee, error)
	UpsertAttendee(ctx context.Context, attendee Attendee) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, project_id, title, status, starts_at, ends_at, created_by, created_at, updated_at`

// ListEvents returns all events ordered by start time.
func (r *Repository) ListEvents(ctx context.Context) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY starts_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// GetEvent fetches an event by ID.
func (r *Repository) GetEvent(ctx context.Context, id int64) (*Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

// CreateEvent inserts a new event.
func (r *Repository) CreateEvent(ctx context.Context, event Event) (*Event, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO events (project_id, title, status, starts_at, ends_at, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+eventColumns,
		event.ProjectID, event.Title, string(event.Status), event.StartsAt, event.EndsAt, event.CreatedBy)
	return scanEvent(row)
}

// UpdateEventStatus moves an event between lifecycle states, pinning the
// expected current status.
func (r *Repository) UpdateEventStatus(ctx context.Context, id int64, from, to EventStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrInvalidTransition
	}
	return nil
}

// GetAttendee fetches the attendee record for a user on an event.
func (r *Repository) GetAttendee(ctx context.Context, eventID, userID int64) (*Attendee, error) {
	var attendee Attendee
	var rsvp string
	err := r.pool.QueryRow(ctx,
		`SELECT event_id, user_id, rsvp, updated_at FROM event_attendees WHERE event_id = $1 AND user_id = $2`,
		eventID, userID).Scan(&attendee.EventID, &attendee.UserID, &rsvp, &attendee.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	attendee.RSVP = RSVPStatus(rsvp)
	return &attendee, nil
}

// UpsertAttendee writes the attendee's RSVP state.
func (r *Repository) UpsertAttendee(ctx context.Context, attendee Attendee) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO event_attendees (event_id, user_id, rsvp, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (event_id, user_id) DO UPDATE SET rsvp = EXCLUDED.rsvp, updated_at = NOW()`,
		attendee.EventID, attendee.UserID, string(attendee.RSVP))
	return err
}

func scanEvent(row pgx.Row) (*Event, error) {
	var event Event
	var status string
	err := row.Scan(&event.ID, &event.ProjectID, &event.Title, &status, &event.StartsAt, &event.EndsAt, &event.CreatedBy, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	event.Status = EventStatus(status)
	return &event, nil
}

var _ RepositoryPort = (*Repository)(nil)
