package export

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/shared"
)

type memoryRepo struct {
	mu   sync.Mutex
	jobs map[string]*Job

	// fullNames stands in for the users join on reads.
	fullNames map[int64]string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{jobs: make(map[string]*Job), fullNames: make(map[int64]string)}
}

func (m *memoryRepo) Create(ctx context.Context, job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memoryRepo) Get(ctx context.Context, id string) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *job
	cp.CreatedBy.FullName = m.fullNames[cp.CreatedBy.ID]
	return &cp, nil
}

func (m *memoryRepo) ListByOwner(ctx context.Context, ownerID int64, page shared.Pagination) ([]Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Job
	for _, job := range m.jobs {
		if job.CreatedBy.ID == ownerID {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (m *memoryRepo) MarkProcessing(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || job.Status != StatusPending {
		return shared.ErrInvalidTransition
	}
	job.Status = StatusProcessing
	job.StartedAt = &at
	return nil
}

func (m *memoryRepo) UpdateProgress(ctx context.Context, id string, progress int, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || job.Status != StatusProcessing {
		return nil
	}
	if progress > job.Progress {
		job.Progress = progress
	}
	job.Message = message
	return nil
}

func (m *memoryRepo) MarkCompleted(ctx context.Context, id string, filename string, size int64, at, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || job.Status != StatusProcessing {
		return shared.ErrInvalidTransition
	}
	job.Status = StatusCompleted
	job.Progress = 100
	job.Filename = filename
	job.FileSize = size
	job.CompletedAt = &at
	job.ExpiresAt = &expires
	return nil
}

func (m *memoryRepo) MarkFailed(ctx context.Context, id string, errMsg string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || job.Status != StatusProcessing {
		return shared.ErrInvalidTransition
	}
	job.Status = StatusFailed
	job.ErrorMessage = errMsg
	job.FailedAt = &at
	return nil
}

func (m *memoryRepo) MarkCancelled(ctx context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || Terminal(job.Status) {
		return false, nil
	}
	job.Status = StatusCancelled
	job.CancelledAt = &at
	return true, nil
}

func (m *memoryRepo) DeleteExpired(ctx context.Context, cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for id, job := range m.jobs {
		if job.ExpiresAt != nil && job.ExpiresAt.Before(cutoff) {
			names = append(names, job.Filename)
			delete(m.jobs, id)
		}
	}
	return names, nil
}

type recordingEnqueuer struct {
	jobs []string
	err  error
}

func (e *recordingEnqueuer) EnqueueExport(ctx context.Context, jobID string, kind Kind) error {
	if e.err != nil {
		return e.err
	}
	e.jobs = append(e.jobs, jobID)
	return nil
}

var (
	owner    = shared.Principal{UserID: 7, Username: "ava", Role: authz.RoleManager}
	stranger = shared.Principal{UserID: 9, Username: "kai", Role: authz.RoleManager}
)

func TestRequestCreatesPendingAndEnqueues(t *testing.T) {
	repo := newMemoryRepo()
	enq := &recordingEnqueuer{}
	svc := NewService(repo, enq, nil, t.TempDir())

	job, err := svc.Request(context.Background(), owner, KindTasks)
	require.NoError(t, err)
	require.Equal(t, StatusPending, job.Status)
	require.Equal(t, 0, job.Progress)
	require.Equal(t, owner.UserID, job.CreatedBy.ID)
	require.Equal(t, []string{job.ID}, enq.jobs)
}

// The creation response already goes through the users join, so the
// creator's profile is complete without a second request.
func TestRequestReturnsCreatorProfile(t *testing.T) {
	repo := newMemoryRepo()
	repo.fullNames[owner.UserID] = "Ava Chen"
	svc := NewService(repo, &recordingEnqueuer{}, nil, t.TempDir())

	job, err := svc.Request(context.Background(), owner, KindTasks)
	require.NoError(t, err)
	require.Equal(t, "Ava Chen", job.CreatedBy.FullName)
}

func TestRequestRejectsUnknownKind(t *testing.T) {
	svc := NewService(newMemoryRepo(), &recordingEnqueuer{}, nil, t.TempDir())

	_, err := svc.Request(context.Background(), owner, Kind("invoices"))
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestRequestSurfacesEnqueueFailure(t *testing.T) {
	repo := newMemoryRepo()
	enq := &recordingEnqueuer{err: errors.New("redis down")}
	svc := NewService(repo, enq, nil, t.TempDir())

	_, err := svc.Request(context.Background(), owner, KindTasks)
	require.Error(t, err)
}

func TestJobsAreOwnerScoped(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &recordingEnqueuer{}, nil, t.TempDir())

	job, err := svc.Request(context.Background(), owner, KindTasks)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), stranger, job.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.Cancel(context.Background(), stranger, job.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestCancelPendingJob(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &recordingEnqueuer{}, nil, t.TempDir())

	job, err := svc.Request(context.Background(), owner, KindProjects)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), owner, job.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
}

// Cancelling a job that already finished leaves it finished.
func TestCancelAfterCompletionIsNoOp(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &recordingEnqueuer{}, nil, t.TempDir())

	job, err := svc.Request(context.Background(), owner, KindTasks)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, repo.MarkProcessing(context.Background(), job.ID, now))
	require.NoError(t, repo.MarkCompleted(context.Background(), job.ID, "tasks.csv", 128, now, now.Add(time.Hour)))

	after, err := svc.Cancel(context.Background(), owner, job.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, after.Status)
}

func TestArtifactOnlyForCompletedJobs(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &recordingEnqueuer{}, nil, t.TempDir())

	job, err := svc.Request(context.Background(), owner, KindTasks)
	require.NoError(t, err)

	_, _, err = svc.Artifact(context.Background(), owner, job.ID)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	now := time.Now().UTC()
	require.NoError(t, repo.MarkProcessing(context.Background(), job.ID, now))
	require.NoError(t, repo.MarkCompleted(context.Background(), job.ID, "tasks.csv", 128, now, now.Add(time.Hour)))

	_, filename, err := svc.Artifact(context.Background(), owner, job.ID)
	require.NoError(t, err)
	require.Equal(t, "tasks.csv", filename)
}

func TestArtifactExpired(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &recordingEnqueuer{}, nil, t.TempDir())

	job, err := svc.Request(context.Background(), owner, KindTasks)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, repo.MarkProcessing(context.Background(), job.ID, now))
	require.NoError(t, repo.MarkCompleted(context.Background(), job.ID, "tasks.csv", 128, now, now.Add(-time.Minute)))

	_, _, err = svc.Artifact(context.Background(), owner, job.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCompletedJobCarriesDownloadURL(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &recordingEnqueuer{}, nil, t.TempDir())

	job, err := svc.Request(context.Background(), owner, KindTasks)
	require.NoError(t, err)
	require.Empty(t, job.DownloadURL)

	now := time.Now().UTC()
	require.NoError(t, repo.MarkProcessing(context.Background(), job.ID, now))
	require.NoError(t, repo.MarkCompleted(context.Background(), job.ID, "tasks.csv", 128, now, now.Add(time.Hour)))

	got, err := svc.Get(context.Background(), owner, job.ID)
	require.NoError(t, err)
	require.Equal(t, "/api/exports/"+job.ID+"/download", got.DownloadURL)
}
