package export

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/shared"
)

// Enqueuer hands a freshly created job to the background worker. The jobs
// package provides the asynq-backed implementation.
type Enqueuer interface {
	EnqueueExport(ctx context.Context, jobID string, kind Kind) error
}

type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

type Service struct {
	repo     RepositoryPort
	enqueuer Enqueuer
	audit    Auditor
	dir      string
	now      func() time.Time
}

// NewService wires the export workflow. dir is the directory artifacts are
// written to and served from.
func NewService(repo RepositoryPort, enqueuer Enqueuer, audit Auditor, dir string) *Service {
	return &Service{repo: repo, enqueuer: enqueuer, audit: audit, dir: dir, now: time.Now}
}

// Request creates a pending job owned by the principal and queues it for
// the worker.
func (s *Service) Request(ctx context.Context, actor shared.Principal, kind Kind) (*Job, error) {
	if !ValidKind(kind) {
		return nil, fmt.Errorf("%w: unknown export kind %q", shared.ErrInvalidTransition, kind)
	}
	job := &Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    StatusPending,
		CreatedAt: s.now().UTC(),
		CreatedBy: Creator{ID: actor.UserID, Username: actor.Username},
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}
	if err := s.enqueuer.EnqueueExport(ctx, job.ID, kind); err != nil {
		// The job row stays pending; a stuck pending job is visible and
		// cancellable, a silently dropped one is not.
		return nil, fmt.Errorf("enqueue export: %w", err)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor.UserID,
			Action:   "export.request",
			Entity:   "export_job",
			EntityID: job.ID,
			Meta:     map[string]any{"kind": string(kind)},
		})
	}
	// Re-read through the users join so the creator profile is complete in
	// the first response, not only after a later Get.
	created, err := s.repo.Get(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	return s.decorate(created), nil
}

// Get returns a job visible to the actor. Jobs are owner-scoped.
func (s *Service) Get(ctx context.Context, actor shared.Principal, id string) (*Job, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.CreatedBy.ID != actor.UserID {
		return nil, shared.ErrForbidden
	}
	return s.decorate(job), nil
}

func (s *Service) List(ctx context.Context, actor shared.Principal, page, perPage int) ([]Job, error) {
	jobs, err := s.repo.ListByOwner(ctx, actor.UserID, shared.NewPagination(page, perPage, 0))
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		s.decorate(&jobs[i])
	}
	return jobs, nil
}

// Cancel requests cancellation of the actor's job. Cancelling a job that
// already reached a terminal state is not an error; the caller learns the
// final state from the returned job.
func (s *Service) Cancel(ctx context.Context, actor shared.Principal, id string) (*Job, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.CreatedBy.ID != actor.UserID {
		return nil, shared.ErrForbidden
	}
	changed, err := s.repo.MarkCancelled(ctx, id, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if changed && s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor.UserID,
			Action:   "export.cancel",
			Entity:   "export_job",
			EntityID: id,
		})
	}
	job, err = s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decorate(job), nil
}

// Artifact resolves the on-disk path of a completed job's file. It refuses
// anything not completed, expired artifacts included.
func (s *Service) Artifact(ctx context.Context, actor shared.Principal, id string) (path, filename string, err error) {
	job, err := s.Get(ctx, actor, id)
	if err != nil {
		return "", "", err
	}
	if !IsCompleted(job.Status) {
		return "", "", fmt.Errorf("%w: export %s is %s", shared.ErrInvalidTransition, id, job.Status)
	}
	if job.ExpiresAt != nil && !s.now().Before(*job.ExpiresAt) {
		return "", "", shared.ErrNotFound
	}
	return filepath.Join(s.dir, job.Filename), job.Filename, nil
}

// decorate fills fields derived from state rather than stored.
func (s *Service) decorate(job *Job) *Job {
	if IsCompleted(job.Status) {
		job.DownloadURL = "/api/exports/" + job.ID + "/download"
	}
	return job
}
