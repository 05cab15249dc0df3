package export

import (
	"context"
	"log/slog"
	"time"
)

// Fetcher reads the current state of a job. The Service satisfies it via
// FetcherFunc adapters in tests and in-process callers; remote clients wrap
// an HTTP GET.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*Job, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, id string) (*Job, error)

func (f FetcherFunc) Fetch(ctx context.Context, id string) (*Job, error) {
	return f(ctx, id)
}

// Canceler requests cancellation of a job.
type Canceler interface {
	Cancel(ctx context.Context, id string) error
}

// Poller watches a job until it reaches a terminal status. It is the
// in-process counterpart of a browser polling the export endpoint.
type Poller struct {
	fetcher  Fetcher
	canceler Canceler
	interval time.Duration
	logger   *slog.Logger

	// OnUpdate, when set, is invoked with every fetched snapshot,
	// terminal one included.
	OnUpdate func(*Job)
}

func NewPoller(fetcher Fetcher, canceler Canceler, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{fetcher: fetcher, canceler: canceler, interval: interval, logger: logger}
}

// Wait polls until the job reaches a terminal status and returns the final
// snapshot. The loop only stops on an observed terminal state or a dead
// context; transient fetch errors are logged and retried, so a blip in the
// API never strands a watcher mid-job.
func (p *Poller) Wait(ctx context.Context, id string) (*Job, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		job, err := p.fetcher.Fetch(ctx, id)
		switch {
		case err != nil:
			p.logger.Warn("export poll", slog.String("job_id", id), slog.Any("error", err))
		default:
			if p.OnUpdate != nil {
				p.OnUpdate(job)
			}
			if Terminal(job.Status) {
				return job, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// RequestCancel fires a cancellation request without waiting for the job to
// actually stop. Whether the job ends up cancelled, completed or failed is
// learned from the poll loop, not from this call.
func (p *Poller) RequestCancel(id string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.canceler.Cancel(ctx, id); err != nil {
			p.logger.Warn("export cancel", slog.String("job_id", id), slog.Any("error", err))
		}
	}()
}
