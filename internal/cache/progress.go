// Package cache holds read-through projections of ledger data.
//
// Nothing here is a source of truth. Every entry can be dropped at any time
// and is rebuilt from Postgres on the next read.
//
// Why cache progress at all?
//   - Every dashboard and every progress_updated push recomputes it, and
//     the count scans all messages since the goal started. Between writes
//     the answer does not change.
//   - Points are derived, never stored. Keeping the counts as a projection
//     with a TTL means a lost invalidation costs at most PROGRESS_CACHE_TTL
//     of staleness, never a wrong total in the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProgressCache stores the per-type point counts for the active goal.
//
// Why a generation?
//   - A reader that misses counts the ledger and then fills the cache. If a
//     writer commits and invalidates between that count and the fill, a
//     plain SET would write the pre-append counts back and serve them until
//     the TTL runs out.
//   - Every Invalidate bumps the generation. A reader takes the generation
//     BEFORE counting and Set only stores when it is still current, so a
//     fill that raced an invalidation is dropped instead of cached.
//
// Get reports a miss for anything it cannot answer with certainty,
// including a cached entry that belongs to a different goal. Generation
// reports false when the cache cannot vouch for one; callers then skip Set.
type ProgressCache interface {
	Get(ctx context.Context, goalID uuid.UUID) (models.TypeCounts, bool)
	Generation(ctx context.Context) (int64, bool)
	Set(ctx context.Context, goalID uuid.UUID, generation int64, counts models.TypeCounts)
	Invalidate(ctx context.Context)
}

const (
	progressKey    = "heartfelt:progress"
	progressGenKey = "heartfelt:progress:gen"
)

// setIfGeneration stores ARGV[2] under KEYS[1] with a PX of ARGV[3] only if
// KEYS[2] still holds generation ARGV[1]. A missing generation reads as 0.
// Running it as a script makes the compare and the write one atomic step.
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

type progressEntry struct {
	GoalID  uuid.UUID `json:"goal_id"`
	Thanks  int       `json:"thanks"`
	Honesty int       `json:"honesty"`
}

// RedisProgressCache keeps a single key holding the counts and the goal
// they were computed for. Redis errors are logged and treated as misses.
type RedisProgressCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisProgressCache falls back to a 30s TTL when ttl is not positive;
// the TTL bounds how long an entry survives a failed invalidation.
func NewRedisProgressCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisProgressCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisProgressCache{client: client, ttl: ttl, logger: logger}
}

// NewRedisClient parses a redis:// URL and pings the server once.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (c *RedisProgressCache) Get(ctx context.Context, goalID uuid.UUID) (models.TypeCounts, bool) {
	raw, err := c.client.Get(ctx, progressKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("progress cache read failed", zap.Error(err))
		}
		return models.TypeCounts{}, false
	}

	var entry progressEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn("progress cache entry corrupt", zap.Error(err))
		return models.TypeCounts{}, false
	}
	if entry.GoalID != goalID {
		return models.TypeCounts{}, false
	}
	return models.TypeCounts{Thanks: entry.Thanks, Honesty: entry.Honesty}, true
}

// Generation returns the current invalidation counter. A counter that was
// never written is generation 0.
func (c *RedisProgressCache) Generation(ctx context.Context) (int64, bool) {
	gen, err := c.client.Get(ctx, progressGenKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, true
		}
		c.logger.Warn("progress cache generation read failed", zap.Error(err))
		return 0, false
	}
	return gen, true
}

// Set stores counts for goalID unless an Invalidate happened after
// generation was read.
func (c *RedisProgressCache) Set(ctx context.Context, goalID uuid.UUID, generation int64, counts models.TypeCounts) {
	raw, err := json.Marshal(progressEntry{GoalID: goalID, Thanks: counts.Thanks, Honesty: counts.Honesty})
	if err != nil {
		return
	}
	keys := []string{progressKey, progressGenKey}
	stored, err := setIfGeneration.Run(ctx, c.client, keys, generation, raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.logger.Warn("progress cache write failed", zap.Error(err))
		return
	}
	if stored == 0 {
		c.logger.Debug("progress cache fill skipped: invalidated while counting", zap.Stringer("goal_id", goalID))
	}
}

// Invalidate bumps the generation and drops the cached counts in one
// MULTI/EXEC. If it fails the entry still expires after the TTL.
func (c *RedisProgressCache) Invalidate(ctx context.Context) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, progressGenKey)
		pipe.Del(ctx, progressKey)
		return nil
	})
	if err != nil {
		c.logger.Warn("progress cache invalidate failed", zap.Error(err))
	}
}

// NopCache always misses. Used when REDIS_URL is empty.
type NopCache struct{}

func (NopCache) Get(context.Context, uuid.UUID) (models.TypeCounts, bool) {
	return models.TypeCounts{}, false
}

func (NopCache) Generation(context.Context) (int64, bool) { return 0, false }

func (NopCache) Set(context.Context, uuid.UUID, int64, models.TypeCounts) {}

func (NopCache) Invalidate(context.Context) {}
