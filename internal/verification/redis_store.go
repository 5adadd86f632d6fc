package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"collabquest/internal/models"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "verification:session:"

// RedisStore keeps sessions in redis with a per-key expiry. Take uses GETDEL
// so a session is handed out once across all service instances.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *RedisStore) Put(ctx context.Context, session *models.VerificationSession, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Take(ctx context.Context, sessionID string) (*models.VerificationSession, error) {
	payload, err := s.client.GetDel(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("take session: %w", err)
	}

	var session models.VerificationSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session.Expired(time.Now()) {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}
