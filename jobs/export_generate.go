package jobs

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive/internal/export"
	"github.com/taskhive/taskhive/internal/observability"
	"github.com/taskhive/taskhive/internal/shared"
)

// cancelCheckEvery bounds how many rows are written between checks for an
// owner-initiated cancellation.
const cancelCheckEvery = 500

// exportSource yields the header and rows for one export kind.
type exportSource func(ctx context.Context, kind export.Kind) ([]string, [][]string, error)

// ExportProcessor turns pending export jobs into CSV artifacts while
// driving the job's status machine.
type ExportProcessor struct {
	repo      export.RepositoryPort
	pool      *pgxpool.Pool
	dir       string
	retention time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
	now       func() time.Time
	source    exportSource
}

// NewExportProcessor wires the worker-side export pipeline. Artifacts land
// in dir and expire after retention. metrics may be nil.
func NewExportProcessor(repo export.RepositoryPort, pool *pgxpool.Pool, dir string, retention time.Duration, logger *slog.Logger, metrics *observability.Metrics) *ExportProcessor {
	p := &ExportProcessor{repo: repo, pool: pool, dir: dir, retention: retention, logger: logger, metrics: metrics, now: time.Now}
	p.source = p.fetch
	return p
}

// Handle processes TaskExportGenerate tasks.
func (p *ExportProcessor) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ExportGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	started := p.now().UTC()
	if err := p.repo.MarkProcessing(ctx, payload.JobID, started); err != nil {
		if errors.Is(err, shared.ErrInvalidTransition) {
			// Cancelled before we picked it up, or a duplicate delivery.
			p.logger.Info("export skipped", slog.String("job_id", payload.JobID))
			return nil
		}
		return err
	}
	p.metrics.ExportStarted()

	filename, size, err := p.generate(ctx, payload)
	if err != nil {
		if errors.Is(err, errJobCancelled) {
			p.metrics.ExportFinished(string(export.StatusCancelled))
			p.logger.Info("export cancelled mid-run", slog.String("job_id", payload.JobID))
			return nil
		}
		p.metrics.ExportFinished(string(export.StatusFailed))
		p.logger.Error("export failed", slog.String("job_id", payload.JobID), slog.Any("error", err))
		if markErr := p.repo.MarkFailed(ctx, payload.JobID, err.Error(), p.now().UTC()); markErr != nil {
			p.logger.Error("mark export failed", slog.String("job_id", payload.JobID), slog.Any("error", markErr))
		}
		return fmt.Errorf("generate export %s: %w", payload.JobID, errors.Join(err, asynq.SkipRetry))
	}

	done := p.now().UTC()
	if err := p.repo.MarkCompleted(ctx, payload.JobID, filename, size, done, done.Add(p.retention)); err != nil {
		// Lost the race with a cancellation. The artifact is orphaned,
		// so drop it; the job row already tells the truth.
		_ = os.Remove(filepath.Join(p.dir, filename))
		p.metrics.ExportFinished(string(export.StatusCancelled))
		if errors.Is(err, shared.ErrInvalidTransition) {
			return nil
		}
		return err
	}
	p.metrics.ExportFinished(string(export.StatusCompleted))
	p.logger.Info("export completed",
		slog.String("job_id", payload.JobID),
		slog.String("kind", string(payload.Kind)),
		slog.Int64("bytes", size))
	return nil
}

var errJobCancelled = errors.New("export job cancelled")

func (p *ExportProcessor) generate(ctx context.Context, payload ExportGeneratePayload) (string, int64, error) {
	header, rows, err := p.source(ctx, payload.Kind)
	if err != nil {
		return "", 0, err
	}
	if err := p.repo.UpdateProgress(ctx, payload.JobID, 10, "collected rows"); err != nil {
		return "", 0, err
	}

	filename := string(payload.Kind) + "_" + payload.JobID + ".csv"
	path := filepath.Join(p.dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create artifact: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", 0, err
	}
	for i, row := range rows {
		if err := w.Write(row); err != nil {
			return "", 0, err
		}
		if (i+1)%cancelCheckEvery == 0 {
			job, err := p.repo.Get(ctx, payload.JobID)
			if err != nil {
				return "", 0, err
			}
			if export.IsCancelled(job.Status) {
				w.Flush()
				f.Close()
				_ = os.Remove(path)
				return "", 0, errJobCancelled
			}
			progress := 10 + (i+1)*85/len(rows)
			msg := "wrote " + strconv.Itoa(i+1) + " of " + strconv.Itoa(len(rows)) + " rows"
			if err := p.repo.UpdateProgress(ctx, payload.JobID, progress, msg); err != nil {
				return "", 0, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", 0, err
	}
	if err := f.Close(); err != nil {
		return "", 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", 0, err
	}
	return filename, info.Size(), nil
}

func (p *ExportProcessor) fetch(ctx context.Context, kind export.Kind) ([]string, [][]string, error) {
	switch kind {
	case export.KindTasks:
		return p.fetchTasks(ctx)
	case export.KindProjects:
		return p.fetchProjects(ctx)
	default:
		return nil, nil, fmt.Errorf("unknown export kind %q", kind)
	}
}

func (p *ExportProcessor) fetchTasks(ctx context.Context) ([]string, [][]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT t.id, t.title, t.status, p.name, COALESCE(u.username, ''), t.created_at
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		LEFT JOIN users u ON u.id = t.assignee_id
		ORDER BY t.id`)
	if err != nil {
		return nil, nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var (
			id        int64
			title     string
			status    string
			project   string
			assignee  string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &title, &status, &project, &assignee, &createdAt); err != nil {
			return nil, nil, err
		}
		out = append(out, []string{
			strconv.FormatInt(id, 10), title, status, project, assignee,
			createdAt.UTC().Format(time.RFC3339),
		})
	}
	return []string{"id", "title", "status", "project", "assignee", "created_at"}, out, rows.Err()
}

func (p *ExportProcessor) fetchProjects(ctx context.Context) ([]string, [][]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT p.id, p.name, p.status, COALESCE(u.username, ''), p.created_at,
			(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id)
		FROM projects p
		LEFT JOIN users u ON u.id = p.owner_id
		ORDER BY p.id`)
	if err != nil {
		return nil, nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var (
			id        int64
			name      string
			status    string
			owner     string
			createdAt time.Time
			taskCount int64
		)
		if err := rows.Scan(&id, &name, &status, &owner, &createdAt, &taskCount); err != nil {
			return nil, nil, err
		}
		out = append(out, []string{
			strconv.FormatInt(id, 10), name, status, owner,
			createdAt.UTC().Format(time.RFC3339),
			strconv.FormatInt(taskCount, 10),
		})
	}
	return []string{"id", "name", "status", "owner", "created_at", "task_count"}, out, rows.Err()
}
