package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/taskhive/taskhive/internal/export"
)

// ExportPurger deletes expired export rows and unlinks their artifacts.
type ExportPurger struct {
	repo   export.RepositoryPort
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

func NewExportPurger(repo export.RepositoryPort, dir string, logger *slog.Logger) *ExportPurger {
	return &ExportPurger{repo: repo, dir: dir, logger: logger, now: time.Now}
}

// Handle processes TaskExportPurge tasks.
func (p *ExportPurger) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ExportPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	filenames, err := p.repo.DeleteExpired(ctx, p.now().UTC())
	if err != nil {
		return err
	}
	for _, name := range filenames {
		if err := os.Remove(filepath.Join(p.dir, name)); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("remove expired artifact", slog.String("filename", name), slog.Any("error", err))
		}
	}
	if len(filenames) > 0 {
		p.logger.Info("purged expired exports", slog.Int("count", len(filenames)))
	}
	return nil
}
