package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bridgefeed/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const StatsKeyPrefix = "bridgefeed:stats"

// DefaultStatsTTL bounds how long superseded generations linger in Redis.
const DefaultStatsTTL = 30 * time.Second

// StatsCache is a cache-aside wrapper for the aggregate stats. Entries are
// keyed by process instance and store generation, so a mutation or a restart
// never serves numbers computed for another state. A nil client turns every
// method into a pass-through.
type StatsCache struct {
	client   *redis.Client
	ttl      time.Duration
	instance string
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsCache{client: client, ttl: ttl, instance: uuid.NewString()}
}

// Key is the Redis key holding the stats for one store generation.
func (c *StatsCache) Key(generation uint64) string {
	return fmt.Sprintf("%s:%s:%d", StatsKeyPrefix, c.instance, generation)
}

// Get returns the stats cached for generation, or compute's result which is
// then stored under it. generation must be read before compute runs. Redis
// failures fall back to compute.
func (c *StatsCache) Get(ctx context.Context, generation uint64, compute func() models.Stats) models.Stats {
	if c == nil || c.client == nil {
		return compute()
	}

	key := c.Key(generation)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var st models.Stats
		if json.Unmarshal(raw, &st) == nil {
			return st
		}
	} else if !errors.Is(err, redis.Nil) {
		return compute()
	}

	st := compute()
	if data, err := json.Marshal(st); err == nil {
		c.client.Set(ctx, key, data, c.ttl)
	}
	return st
}
