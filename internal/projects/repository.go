package projects

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive/internal/platform/db"
	"github.com/taskhive/taskhive/internal/shared"
)

// RepositoryPort defines data access methods for projects.
type RepositoryPort interface {
	List(ctx context.Context) ([]Project, error)
	Get(ctx context.Context, id int64) (*Project, error)
	Create(ctx context.Context, project Project) (*Project, error)
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

const projectColumns = `id, name, description, status, owner_id, created_at, updated_at`

// List returns all projects.
func (r *Repository) List(ctx context.Context) ([]Project, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var projects []Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

// Get fetches a project by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

// Create inserts a new project.
func (r *Repository) Create(ctx context.Context, project Project) (*Project, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO projects (name, description, status, owner_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+projectColumns,
		project.Name, project.Description, string(project.Status), project.OwnerID)
	return scanProject(row)
}

// UpdateStatus moves a project between lifecycle states, pinning the
// expected current status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrInvalidTransition
	}
	return nil
}

// Delete removes a project together with its tasks and events. The child
// rows go in the same transaction so a failed delete never leaves
// orphaned work items behind.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM event_attendees WHERE event_id IN (SELECT id FROM events WHERE project_id = $1)`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM events WHERE project_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE project_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func scanProject(row pgx.Row) (*Project, error) {
	var project Project
	var status string
	err := row.Scan(&project.ID, &project.Name, &project.Description, &status, &project.OwnerID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	project.Status = Status(status)
	return &project, nil
}

var _ RepositoryPort = (*Repository)(nil)
