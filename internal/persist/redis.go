package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tausepro/internal/sentinel"
	id "tausepro/pkg/domain"
)

const defaultRedisTTL = 7 * 24 * time.Hour

// Redis stores documents as plain string keys "<prefix><session>:<key>" so
// several BFF instances can serve the same visitor. Every save refreshes the TTL.
type Redis struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedis(client redis.Cmdable, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(sessionID id.SessionID, key string) string {
	return r.prefix + sessionID.String() + ":" + key
}

func (r *Redis) Load(ctx context.Context, sessionID id.SessionID, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(sessionID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s for session %s: %w", key, sessionID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return data, nil
}

func (r *Redis) Save(ctx context.Context, sessionID id.SessionID, key string, data []byte) error {
	if err := r.client.Set(ctx, r.key(sessionID, key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, sessionID id.SessionID, key string) error {
	if err := r.client.Del(ctx, r.key(sessionID, key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return nil
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*File)(nil)
	_ Store = (*Redis)(nil)
)
