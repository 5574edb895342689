package handoff

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/alquipy/notifier/internal/domain"
)

const keyPrefix = "handoff:"

var _ domain.HandoffStore = (*RedisStore)(nil)

// RedisStore keeps payloads in Redis so tokens can be redeemed by any
// instance. Expiry is delegated to Redis key TTLs.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, payload []byte) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, keyPrefix+token, payload, TTL).Err(); err != nil {
		return "", fmt.Errorf("storing handoff payload: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Take(ctx context.Context, token string) ([]byte, error) {
	// GETDEL makes the read-once semantics atomic across instances.
	payload, err := s.client.GetDel(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrHandoffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redeeming handoff token: %w", err)
	}
	return payload, nil
}
