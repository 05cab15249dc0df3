package tasks

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/taskhive/taskhive/internal/platform/httpx"
	"github.com/taskhive/taskhive/internal/shared"
)

// Auditor records task mutations.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles task business logic.
type Service struct {
	repo  RepositoryPort
	audit Auditor
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit Auditor) *Service {
	return &Service{repo: repo, audit: audit}
}

// ListByProject returns the project's tasks.
func (s *Service) ListByProject(ctx context.Context, projectID int64) ([]Task, error) {
	return s.repo.ListByProject(ctx, projectID)
}

// Get fetches a single task.
func (s *Service) Get(ctx context.Context, id int64) (*Task, error) {
	return s.repo.Get(ctx, id)
}

// BoardColumn groups a project's tasks under one board status.
type BoardColumn struct {
	Status Status `json:"status"`
	Label  string `json:"label"`
	Tasks  []Task `json:"tasks"`
}

// Board returns the project's tasks grouped into columns ordered by board
// weight. Every chain status gets a column even when empty; a stray status
// from old data still shows up, sunk to the front by its zero weight.
func (s *Service) Board(ctx context.Context, projectID int64) ([]BoardColumn, error) {
	list, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	grouped := make(map[Status][]Task, len(StatusChain.States()))
	for _, t := range list {
		grouped[t.Status] = append(grouped[t.Status], t)
	}
	statuses := StatusChain.States()
	for st := range grouped {
		if !StatusChain.Valid(st) {
			statuses = append(statuses, st)
		}
	}
	sort.SliceStable(statuses, func(i, j int) bool {
		return StatusWeight(statuses[i]) < StatusWeight(statuses[j])
	})
	columns := make([]BoardColumn, 0, len(statuses))
	for _, st := range statuses {
		columns = append(columns, BoardColumn{Status: st, Label: StatusLabel(st), Tasks: grouped[st]})
	}
	return columns, nil
}

// Create adds a task in the todo state.
func (s *Service) Create(ctx context.Context, creatorID, projectID int64, title, description string, assigneeID *int64) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title required", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, Task{
		ProjectID:   projectID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      StatusTodo,
		AssigneeID:  assigneeID,
		CreatedBy:   creatorID,
	})
}

// Update rewrites the task's editable fields.
func (s *Service) Update(ctx context.Context, id int64, title, description string, assigneeID *int64) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title required", httpx.ErrValidation)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Title = title
	existing.Description = strings.TrimSpace(description)
	existing.AssigneeID = assigneeID
	return s.repo.Update(ctx, *existing)
}

// ChangeStatus moves the task along the board, validating the move against
// the transition table so out-of-chain jumps are rejected.
func (s *Service) ChangeStatus(ctx context.Context, actorID, id int64, to Status) (*Task, error) {
	if !ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, to)
	}
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(task.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", shared.ErrInvalidTransition, task.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, task.Status, to); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "task.status_change", id, map[string]any{
		"from": string(task.Status),
		"to":   string(to),
	})
	return s.repo.Get(ctx, id)
}

// Advance moves the task one step forward on the board.
func (s *Service) Advance(ctx context.Context, actorID, id int64) (*Task, error) {
	return s.step(ctx, actorID, id, NextStatus)
}

// SendBack moves the task one step backward on the board.
func (s *Service) SendBack(ctx context.Context, actorID, id int64) (*Task, error) {
	return s.step(ctx, actorID, id, PreviousStatus)
}

func (s *Service) step(ctx context.Context, actorID, id int64, move func(Status) (Status, bool)) (*Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	to, ok := move(task.Status)
	if !ok {
		return nil, fmt.Errorf("%w: %s is at the end of the board", shared.ErrInvalidTransition, task.Status)
	}
	return s.ChangeStatus(ctx, actorID, id, to)
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "task.delete", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "task",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
}
