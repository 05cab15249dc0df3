package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive/internal/shared"
)

// RepositoryPort is the storage contract the export service and the worker
// depend on.
type RepositoryPort interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	ListByOwner(ctx context.Context, ownerID int64, page shared.Pagination) ([]Job, error)
	MarkProcessing(ctx context.Context, id string, at time.Time) error
	UpdateProgress(ctx context.Context, id string, progress int, message string) error
	MarkCompleted(ctx context.Context, id string, filename string, size int64, at, expires time.Time) error
	MarkFailed(ctx context.Context, id string, errMsg string, at time.Time) error
	MarkCancelled(ctx context.Context, id string, at time.Time) (bool, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) ([]string, error)
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const jobColumns = `e.id, e.kind, e.status, e.progress, e.message, e.filename, e.file_size,
	e.created_at, e.started_at, e.completed_at, e.failed_at, e.cancelled_at, e.expires_at, e.error_message,
	u.id, u.username, u.full_name`

func (r *Repository) Create(ctx context.Context, job *Job) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO export_jobs (id, kind, status, progress, created_by, created_at)
		VALUES ($1, $2, $3, 0, $4, $5)`,
		job.ID, job.Kind, job.Status, job.CreatedBy.ID, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert export job: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Job, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+jobColumns+`
		FROM export_jobs e
		JOIN users u ON u.id = e.created_by
		WHERE e.id = $1`, id)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get export job: %w", err)
	}
	return job, nil
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID int64, page shared.Pagination) ([]Job, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM export_jobs e
		JOIN users u ON u.id = e.created_by
		WHERE e.created_by = $1
		ORDER BY e.created_at DESC
		LIMIT $2 OFFSET $3`, ownerID, page.PerPage, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list export jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan export job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// MarkProcessing moves a pending job to processing. The pinned status in
// the WHERE clause makes a lost race with Cancel a no-op instead of a
// resurrection.
func (r *Repository) MarkProcessing(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE export_jobs
		SET status = $1, started_at = $2
		WHERE id = $3 AND status = $4`,
		StatusProcessing, at, id, StatusPending)
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrInvalidTransition
	}
	return nil
}

// UpdateProgress records worker progress. GREATEST keeps reported progress
// monotonic even if updates land out of order, and the status pin stops a
// late update from touching a job that was cancelled mid-run.
func (r *Repository) UpdateProgress(ctx context.Context, id string, progress int, message string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE export_jobs
		SET progress = GREATEST(progress, $1), message = $2
		WHERE id = $3 AND status = $4`,
		progress, message, id, StatusProcessing)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

func (r *Repository) MarkCompleted(ctx context.Context, id string, filename string, size int64, at, expires time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE export_jobs
		SET status = $1, progress = 100, filename = $2, file_size = $3, completed_at = $4, expires_at = $5
		WHERE id = $6 AND status = $7`,
		StatusCompleted, filename, size, at, expires, id, StatusProcessing)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrInvalidTransition
	}
	return nil
}

func (r *Repository) MarkFailed(ctx context.Context, id string, errMsg string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE export_jobs
		SET status = $1, error_message = $2, failed_at = $3
		WHERE id = $4 AND status = $5`,
		StatusFailed, errMsg, at, id, StatusProcessing)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrInvalidTransition
	}
	return nil
}

// MarkCancelled cancels a job that is still pending or processing. It
// reports whether a row actually changed so the caller can distinguish "now
// cancelled" from "already finished".
func (r *Repository) MarkCancelled(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE export_jobs
		SET status = $1, cancelled_at = $2
		WHERE id = $3 AND status IN ($4, $5)`,
		StatusCancelled, at, id, StatusPending, StatusProcessing)
	if err != nil {
		return false, fmt.Errorf("mark cancelled: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteExpired removes completed jobs past their expiry and returns their
// filenames so the caller can unlink the artifacts.
func (r *Repository) DeleteExpired(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		DELETE FROM export_jobs
		WHERE expires_at IS NOT NULL AND expires_at < $1
		RETURNING filename`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("delete expired exports: %w", err)
	}
	defer rows.Close()

	var filenames []string
	for rows.Next() {
		var name *string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan expired export: %w", err)
		}
		if name != nil && *name != "" {
			filenames = append(filenames, *name)
		}
	}
	return filenames, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job      Job
		message  *string
		filename *string
		fileSize *int64
		errMsg   *string
	)
	err := row.Scan(
		&job.ID, &job.Kind, &job.Status, &job.Progress, &message, &filename, &fileSize,
		&job.CreatedAt, &job.StartedAt, &job.CompletedAt, &job.FailedAt, &job.CancelledAt, &job.ExpiresAt, &errMsg,
		&job.CreatedBy.ID, &job.CreatedBy.Username, &job.CreatedBy.FullName,
	)
	if err != nil {
		return nil, err
	}
	if message != nil {
		job.Message = *message
	}
	if filename != nil {
		job.Filename = *filename
	}
	if fileSize != nil {
		job.FileSize = *fileSize
	}
	if errMsg != nil {
		job.ErrorMessage = *errMsg
	}
	return &job, nil
}
