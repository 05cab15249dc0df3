package export

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/rbac"
	"github.com/taskhive/taskhive/internal/shared"
)

func watchRequest(jobID string, principal shared.Principal) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/exports/"+jobID+"/watch", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", jobID)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = shared.ContextWithPrincipal(ctx, principal)
	return r.WithContext(ctx)
}

func newWatchHandler(svc *Service, interval time.Duration) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(logger, svc, rbac.Middleware{}, interval)
}

func TestWatchReturnsOnceJobFinishes(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &recordingEnqueuer{}, nil, t.TempDir())
	handler := newWatchHandler(svc, 5*time.Millisecond)

	job, err := svc.Request(context.Background(), owner, KindTasks)
	require.NoError(t, err)

	go func() {
		now := time.Now().UTC()
		time.Sleep(20 * time.Millisecond)
		_ = repo.MarkProcessing(context.Background(), job.ID, now)
		time.Sleep(20 * time.Millisecond)
		_ = repo.MarkCompleted(context.Background(), job.ID, "tasks.csv", 64, now, now.Add(time.Hour))
	}()

	w := httptest.NewRecorder()
	handler.watch(w, watchRequest(job.ID, owner))

	require.Equal(t, http.StatusOK, w.Code)
	var got Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, StatusCompleted, got.Status)
	require.Equal(t, 100, got.Progress)
}

func TestWatchAnswersTerminalJobsWithoutPolling(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &recordingEnqueuer{}, nil, t.TempDir())
	// An interval this long would blow the test deadline if a poll happened.
	handler := newWatchHandler(svc, time.Hour)

	job, err := svc.Request(context.Background(), owner, KindTasks)
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), owner, job.ID)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.watch(w, watchRequest(job.ID, owner))

	require.Equal(t, http.StatusOK, w.Code)
	var got Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, StatusCancelled, got.Status)
}

func TestWatchIsOwnerScoped(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &recordingEnqueuer{}, nil, t.TempDir())
	handler := newWatchHandler(svc, 5*time.Millisecond)

	job, err := svc.Request(context.Background(), owner, KindTasks)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.watch(w, watchRequest(job.ID, stranger))

	require.Equal(t, http.StatusForbidden, w.Code)
}
