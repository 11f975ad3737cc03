package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const guardKeyPrefix = "submit:"

// SubmitGuard implements repository.SubmitGuard with SET NX.
type SubmitGuard struct {
	client *redis.Client
}

// NewSubmitGuard creates a Redis-backed submit guard.
func NewSubmitGuard(client *redis.Client) *SubmitGuard {
	return &SubmitGuard{client: client}
}

func (g *SubmitGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, guardKeyPrefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx submit guard: %w", err)
	}
	return ok, nil
}

func (g *SubmitGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, guardKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del submit guard: %w", err)
	}
	return nil
}
