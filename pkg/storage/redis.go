package storage

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sunshinecoast4wd/booking-engine/pkg/redis"
)

// RedisSnapshots stores session slots in Redis with a per-slot TTL so
// abandoned sessions age out on their own.
type RedisSnapshots struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshots wraps the shared redis client as a snapshot backend.
func NewRedisSnapshots(client *redis.Client, ttl time.Duration) (*RedisSnapshots, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &RedisSnapshots{client: client, ttl: ttl}, nil
}

func (r *RedisSnapshots) Load(ctx context.Context, slot, sessionID string) (string, bool, error) {
	payload, err := r.client.Get(ctx, r.client.SnapshotKey(slot, sessionID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return payload, true, nil
}

func (r *RedisSnapshots) Save(ctx context.Context, slot, sessionID, payload string) error {
	return r.client.Set(ctx, r.client.SnapshotKey(slot, sessionID), payload, r.ttl)
}

func (r *RedisSnapshots) Delete(ctx context.Context, slot, sessionID string) error {
	return r.client.Del(ctx, r.client.SnapshotKey(slot, sessionID))
}
