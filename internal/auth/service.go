package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive/internal/shared"
)

// Repository defines the persistence operations the auth module needs.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	issuer   *TokenIssuer
	sessions *SessionStore
}

// NewService constructs a new Service.
func NewService(repo Repository, issuer *TokenIssuer, sessions *SessionStore) *Service {
	return &Service{repo: repo, issuer: issuer, sessions: sessions}
}

// Login validates credentials and issues a token pair. Every failure mode
// collapses into ErrInvalidCredentials so responses do not leak which part
// was wrong.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return s.issuePair(ctx, account)
}

// Refresh exchanges a refresh token for a fresh pair. The old token is
// consumed even when issuing fails, so a stolen token cannot be retried.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.sessions.Consume(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	account, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	return s.issuePair(ctx, account)
}

// Logout revokes the refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.sessions.Revoke(ctx, refreshToken)
}

// HashPassword derives a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) issuePair(ctx context.Context, account *Account) (*TokenPair, error) {
	principal := shared.Principal{
		UserID:   account.ID,
		Username: account.Username,
		Role:     account.Role,
	}
	access, expiresAt, err := s.issuer.Issue(principal)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sessions.Create(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}
