package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var (
	_ ProgressCache = (*RedisProgressCache)(nil)
	_ ProgressCache = NopCache{}
)

func TestNopCache_AlwaysMisses(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	var c NopCache
	_, ok := c.Generation(ctx)
	assert.False(t, ok)
	c.Set(ctx, id, 0, models.TypeCounts{Thanks: 3})

	_, ok = c.Get(ctx, id)
	assert.False(t, ok)
	c.Invalidate(ctx)
}

// An unreachable Redis must degrade to misses, never to errors or panics.
func TestRedisProgressCache_UnreachableServerMisses(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisProgressCache(client, time.Minute, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	_, ok := c.Generation(ctx)
	assert.False(t, ok)
	c.Set(ctx, id, 0, models.TypeCounts{Thanks: 1, Honesty: 2})
	_, ok = c.Get(ctx, id)
	assert.False(t, ok)
	c.Invalidate(ctx)
}

func TestNewRedisClient_RejectsBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}
