package rdx

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sessions tracks the active access token of each user. A user holds at
// most one session; logging in again replaces it.
type Sessions struct {
	client redis.UniversalClient
}

func NewSessions(client redis.UniversalClient) *Sessions {
	return &Sessions{client: client}
}

func sessionKey(userID string) string {
	return "session:" + userID
}

// Store records token as the user's session until ttl elapses.
func (s *Sessions) Store(ctx context.Context, userID, token string, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKey(userID), token, ttl).Err()
}

// Active reports whether token is the user's current session.
func (s *Sessions) Active(ctx context.Context, userID, token string) (bool, error) {
	current, err := s.client.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return current == token, nil
}

// Remove ends the user's session.
func (s *Sessions) Remove(ctx context.Context, userID string) error {
	return s.client.Del(ctx, sessionKey(userID)).Err()
}
