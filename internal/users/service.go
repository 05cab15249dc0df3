package users

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/platform/httpx"
	"github.com/taskhive/taskhive/internal/shared"
)

// Auditor records account mutations. shared.AuditLogger satisfies this.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles user business logic.
type Service struct {
	repo  RepositoryPort
	audit Auditor
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit Auditor) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, page, perPage int) ([]User, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	users, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return users, shared.NewPagination(page, perPage, total), nil
}

// Get fetches a single user.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new account in the pending state.
func (s *Service) Create(ctx context.Context, username, email, fullName, password string, role authz.Role) (*User, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" {
		return nil, fmt.Errorf("%w: username required", httpx.ErrValidation)
	}
	if !authz.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
		Status:       StatusPending,
		PasswordHash: string(hash),
	})
}

// ChangeStatus moves a user between lifecycle states, validating the edge
// against the account transition table.
func (s *Service) ChangeStatus(ctx context.Context, actorID, id int64, to Status) (*User, error) {
	if !ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, to)
	}
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(user.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", shared.ErrInvalidTransition, user.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, user.Status, to); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "user.status_change", id, map[string]any{
		"from": string(user.Status),
		"to":   string(to),
	})
	return s.repo.Get(ctx, id)
}

// ChangeRole assigns a new role to the target account. The actor's role is
// re-fetched from storage here rather than taken from the token, so an
// out-of-band downgrade takes effect immediately; the change itself is
// gated by the authority hierarchy.
func (s *Service) ChangeRole(ctx context.Context, actorID, targetID int64, proposed authz.Role) (*User, error) {
	if !authz.ValidRole(proposed) {
		return nil, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, proposed)
	}
	actorRole, err := s.repo.RoleOf(ctx, actorID)
	if err != nil {
		return nil, err
	}
	target, err := s.repo.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !authz.CanChangeRole(actorRole, target.Role, proposed) {
		return nil, fmt.Errorf("%w: insufficient authority", shared.ErrForbidden)
	}
	if err := s.repo.UpdateRole(ctx, targetID, proposed); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "user.role_change", targetID, map[string]any{
		"from": string(target.Role),
		"to":   string(proposed),
	})
	return s.repo.Get(ctx, targetID)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
}
