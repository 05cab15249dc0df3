package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/platform/httpx"
	"github.com/taskhive/taskhive/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context, page shared.Pagination) ([]User, int, error)
	Get(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, user User) (*User, error)
	UpdateStatus(ctx context.Context, id int64, from, to Status) error
	UpdateRole(ctx context.Context, id int64, role authz.Role) error
	RoleOf(ctx context.Context, id int64) (authz.Role, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, username, email, full_name, role, status, created_at, updated_at`

// List returns a page of users plus the total count.
func (r *Repository) List(ctx context.Context, page shared.Pagination) ([]User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Get fetches a user by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// Create inserts a new user record.
func (r *Repository) Create(ctx context.Context, user User) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, full_name, role, status, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userColumns,
		user.Username, user.Email, user.FullName, string(user.Role), string(user.Status), user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return created, nil
}

// UpdateStatus moves a user between lifecycle states. The WHERE clause pins
// the expected current status so concurrent updates cannot skip a
// transition check.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrInvalidTransition
	}
	return nil
}

// UpdateRole assigns a new role to the user.
func (r *Repository) UpdateRole(ctx context.Context, id int64, role authz.Role) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`,
		string(role), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// RoleOf fetches the user's current role. Authorization re-reads this on
// every gated action instead of trusting the role baked into a token.
func (r *Repository) RoleOf(ctx context.Context, id int64) (authz.Role, error) {
	var role string
	if err := r.pool.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, id).Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return authz.Role(role), nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	var role, status string
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &role, &status, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	user.Role = authz.Role(role)
	user.Status = Status(status)
	return &user, nil
}

var _ RepositoryPort = (*Repository)(nil)
