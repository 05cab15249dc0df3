package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/taskhive/taskhive/internal/shared"
)

// SessionStore keeps refresh tokens in Redis so they can be rotated and
// revoked server-side. Access tokens stay stateless; only the refresh leg
// touches storage.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) key(token string) string {
	return "auth:refresh:" + token
}

// Create mints a refresh token for the user and stores it with the
// configured TTL.
func (s *SessionStore) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, s.key(token), strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("auth: store refresh token: %w", err)
	}
	return token, nil
}

// Consume atomically deletes the refresh token and returns the user it
// belonged to. Unknown or already-consumed tokens fail with
// ErrInvalidCredentials.
func (s *SessionStore) Consume(ctx context.Context, token string) (int64, error) {
	raw, err := s.client.GetDel(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, shared.ErrInvalidCredentials
		}
		return 0, fmt.Errorf("auth: consume refresh token: %w", err)
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, shared.ErrInvalidCredentials
	}
	return userID, nil
}

// Revoke removes a refresh token. Revoking an unknown token is not an error.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("auth: revoke refresh token: %w", err)
	}
	return nil
}
