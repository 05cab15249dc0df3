package export

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type scriptedFetcher struct {
	mu       sync.Mutex
	snapshot []Job
	errs     []error
	calls    int
}

func (f *scriptedFetcher) Fetch(ctx context.Context, id string) (*Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.snapshot) {
		i = len(f.snapshot) - 1
	}
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	job := f.snapshot[i]
	return &job, nil
}

type recordingCanceler struct {
	mu  sync.Mutex
	ids []string
}

func (c *recordingCanceler) Cancel(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, id)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPollerStopsOnTerminalStatus(t *testing.T) {
	fetcher := &scriptedFetcher{snapshot: []Job{
		{ID: "j1", Status: StatusPending},
		{ID: "j1", Status: StatusProcessing, Progress: 40},
		{ID: "j1", Status: StatusProcessing, Progress: 80},
		{ID: "j1", Status: StatusCompleted, Progress: 100},
	}}
	p := NewPoller(fetcher, nil, time.Millisecond, quietLogger())

	var seen []Status
	p.OnUpdate = func(j *Job) { seen = append(seen, j.Status) }

	job, err := p.Wait(context.Background(), "j1")
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if job.Status != StatusCompleted {
		t.Fatalf("final status = %s, want completed", job.Status)
	}
	want := []Status{StatusPending, StatusProcessing, StatusProcessing, StatusCompleted}
	if len(seen) != len(want) {
		t.Fatalf("observed %d snapshots, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("snapshot %d = %s, want %s", i, seen[i], want[i])
		}
	}
}

// A cancellation request does not end the watch; the loop keeps polling
// until the server reports the terminal state it actually reached.
func TestPollerCancelIsObservedNotAssumed(t *testing.T) {
	fetcher := &scriptedFetcher{snapshot: []Job{
		{ID: "j2", Status: StatusProcessing, Progress: 10},
		{ID: "j2", Status: StatusProcessing, Progress: 20},
		{ID: "j2", Status: StatusCancelled, Progress: 20},
	}}
	canceler := &recordingCanceler{}
	p := NewPoller(fetcher, canceler, time.Millisecond, quietLogger())

	p.RequestCancel("j2")

	job, err := p.Wait(context.Background(), "j2")
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !IsCancelled(job.Status) {
		t.Fatalf("final status = %s, want cancelled", job.Status)
	}

	deadline := time.Now().Add(time.Second)
	for {
		canceler.mu.Lock()
		n := len(canceler.ids)
		canceler.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("cancel request never delivered")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPollerRetriesFetchErrors(t *testing.T) {
	fetcher := &scriptedFetcher{
		snapshot: []Job{
			{ID: "j3", Status: StatusProcessing},
			{ID: "j3", Status: StatusProcessing},
			{ID: "j3", Status: StatusFailed},
		},
		errs: []error{nil, errors.New("gateway timeout"), nil},
	}
	p := NewPoller(fetcher, nil, time.Millisecond, quietLogger())

	job, err := p.Wait(context.Background(), "j3")
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if job.Status != StatusFailed {
		t.Fatalf("final status = %s, want failed", job.Status)
	}
	if fetcher.calls < 3 {
		t.Fatalf("fetch calls = %d, want at least 3", fetcher.calls)
	}
}

func TestPollerHonorsContext(t *testing.T) {
	fetcher := &scriptedFetcher{snapshot: []Job{{ID: "j4", Status: StatusPending}}}
	p := NewPoller(fetcher, nil, time.Millisecond, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := p.Wait(ctx, "j4"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait error = %v, want deadline exceeded", err)
	}
}
