package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/shared"
	"github.com/taskhive/taskhive/internal/users"
)

// PGRepository implements Repository against the users table.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const accountColumns = `id, username, full_name, password_hash, role, status, created_at, updated_at`

// FindByUsername fetches credential data by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE username = $1`, username)
	return scanAccount(row)
}

// FindByID fetches credential data by user ID.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE id = $1`, id)
	return scanAccount(row)
}

func scanAccount(row pgx.Row) (*Account, error) {
	var account Account
	var role, status string
	err := row.Scan(&account.ID, &account.Username, &account.FullName, &account.PasswordHash, &role, &status, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	account.Role = authz.Role(role)
	account.IsActive = users.Status(status) == users.StatusActive
	return &account, nil
}

var _ Repository = (*PGRepository)(nil)
