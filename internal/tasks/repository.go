package tasks

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive/internal/shared"
)

// RepositoryPort defines data access methods for tasks.
type RepositoryPort interface {
	ListByProject(ctx context.Context, projectID int64) ([]Task, error)
	Get(ctx context.Context, id int64) (*Task, error)
	Create(ctx context.Context, task Task) (*Task, error)
	Update(ctx context.Context, task Task) (*Task, error)
	UpdateStatus(ctx context.Context, id int64, from, to Status) error
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskColumns = `id, project_id, title, description, status, assignee_id, created_by, created_at, updated_at`

// ListByProject returns the project's tasks in board order.
func (r *Repository) ListByProject(ctx context.Context, projectID int64) ([]Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Get fetches a task by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

// Create inserts a new task.
func (r *Repository) Create(ctx context.Context, task Task) (*Task, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO tasks (project_id, title, description, status, assignee_id, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+taskColumns,
		task.ProjectID, task.Title, task.Description, string(task.Status), task.AssigneeID, task.CreatedBy)
	return scanTask(row)
}

// Update rewrites title, description and assignee. Status changes go
// through UpdateStatus.
func (r *Repository) Update(ctx context.Context, task Task) (*Task, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE tasks SET title = $1, description = $2, assignee_id = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING `+taskColumns,
		task.Title, task.Description, task.AssigneeID, task.ID)
	return scanTask(row)
}

// UpdateStatus moves a task between board states, pinning the expected
// current status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrInvalidTransition
	}
	return nil
}

// Delete removes a task.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var task Task
	var status string
	err := row.Scan(&task.ID, &task.ProjectID, &task.Title, &task.Description, &status, &task.AssigneeID, &task.CreatedBy, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	task.Status = Status(status)
	return &task, nil
}

var _ RepositoryPort = (*Repository)(nil)
