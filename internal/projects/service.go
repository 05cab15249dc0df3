package projects

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/taskhive/taskhive/internal/platform/httpx"
	"github.com/taskhive/taskhive/internal/shared"
)

// Auditor records project mutations.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles project business logic.
type Service struct {
	repo  RepositoryPort
	audit Auditor
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit Auditor) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns all projects.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	return s.repo.List(ctx)
}

// Get fetches a single project.
func (s *Service) Get(ctx context.Context, id int64) (*Project, error) {
	return s.repo.Get(ctx, id)
}

// Create adds a project in the planning state.
func (s *Service) Create(ctx context.Context, ownerID int64, name, description string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, Project{
		Name:        name,
		Description: strings.TrimSpace(description),
		Status:      StatusPlanning,
		OwnerID:     ownerID,
	})
}

// Delete removes a terminal project and everything under it.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	project, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !Terminal(project.Status) {
		return fmt.Errorf("%w: only completed or cancelled projects can be deleted", shared.ErrInvalidTransition)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "project.delete",
			Entity:   "project",
			EntityID: strconv.FormatInt(id, 10),
			Meta:     map[string]any{"name": project.Name},
		})
	}
	return nil
}

// ChangeStatus moves a project between lifecycle states, validating the
// edge against the project transition table.
func (s *Service) ChangeStatus(ctx context.Context, actorID, id int64, to Status) (*Project, error) {
	if !ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, to)
	}
	project, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(project.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", shared.ErrInvalidTransition, project.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, project.Status, to); err != nil {
		return nil, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "project.status_change",
			Entity:   "project",
			EntityID: strconv.FormatInt(id, 10),
			Meta:     map[string]any{"from": string(project.Status), "to": string(to)},
		})
	}
	return s.repo.Get(ctx, id)
}
