package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/shared"
)

type stubRepo struct {
	account *Account
}

func (s *stubRepo) FindByUsername(ctx context.Context, username string) (*Account, error) {
	if s.account == nil || s.account.Username != username {
		return nil, shared.ErrNotFound
	}
	return s.account, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*Account, error) {
	if s.account == nil || s.account.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.account, nil
}

func newTestService(t *testing.T, account *Account) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := NewSessionStore(client, time.Hour)
	issuer := NewTokenIssuer("test-secret", 15*time.Minute)
	return NewService(&stubRepo{account: account}, issuer, sessions)
}

func testAccount(t *testing.T) *Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	return &Account{
		ID:           1,
		Username:     "mira",
		PasswordHash: string(hash),
		Role:         authz.RoleDeveloper,
		IsActive:     true,
	}
}

func TestLoginSuccess(t *testing.T) {
	svc := newTestService(t, testAccount(t))

	pair, err := svc.Login(context.Background(), "mira", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.True(t, pair.ExpiresAt.After(time.Now()))
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t, testAccount(t))

	_, err := svc.Login(context.Background(), "mira", "wrong password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	account := testAccount(t)
	account.IsActive = false
	svc := newTestService(t, account)

	_, err := svc.Login(context.Background(), "mira", "correct horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newTestService(t, testAccount(t))

	_, err := svc.Login(context.Background(), "nobody", "correct horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRefreshIsSingleUse(t *testing.T) {
	svc := newTestService(t, testAccount(t))

	pair, err := svc.Login(context.Background(), "mira", "correct horse")
	require.NoError(t, err)

	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc := newTestService(t, testAccount(t))

	pair, err := svc.Login(context.Background(), "mira", "correct horse")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), pair.RefreshToken))
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
