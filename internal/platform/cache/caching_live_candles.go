// Package cache provides caching implementations for usecase interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"candle_backend/internal/feature/candles/domain/window"
	"candle_backend/internal/feature/candles/usecase"
)

// LiveCandlesProvider is the decorated interface: the inner implementation is
// the live-candles usecase. Defined here on the consumer side.
type LiveCandlesProvider interface {
	GetLiveCandles(ctx context.Context, mode window.Mode, requested time.Time, batchNo int) (*usecase.Result, error)
}

// CachingLiveCandles decorates a LiveCandlesProvider with Redis caching.
// A whole batch response is cached until the next interval boundary, so
// repeated polls within one candle interval hit the cache instead of the
// upstream provider. With a nil Redis client every call passes through.
type CachingLiveCandles struct {
	inner           LiveCandlesProvider
	rdb             *redis.Client
	intervalMinutes int
	namespace       string
	now             func() time.Time
}

// NewCachingLiveCandles decorates inner with Redis caching. If namespace is
// empty, it uses "live". intervalMinutes drives the cache TTL.
func NewCachingLiveCandles(rdb *redis.Client, intervalMinutes int, inner LiveCandlesProvider, namespace string) *CachingLiveCandles {
	if namespace == "" {
		namespace = "live"
	}
	if intervalMinutes <= 0 {
		intervalMinutes = 1
	}
	return &CachingLiveCandles{
		inner:           inner,
		rdb:             rdb,
		intervalMinutes: intervalMinutes,
		namespace:       namespace,
		now:             time.Now,
	}
}

// GetLiveCandles retrieves a batch response, checking cache first then falling
// back to the inner usecase. Cache writes are best effort.
func (c *CachingLiveCandles) GetLiveCandles(ctx context.Context, mode window.Mode, requested time.Time, batchNo int) (*usecase.Result, error) {
	if c.rdb == nil {
		return c.inner.GetLiveCandles(ctx, mode, requested, batchNo)
	}

	key := c.cacheKey(mode, requested, batchNo)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out usecase.Result
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the live usecase
	out, err := c.inner.GetLiveCandles(ctx, mode, requested, batchNo)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache until the next candle boundary (best effort)
	if b, err := json.Marshal(out); err == nil {
		ttl := TimeUntilNextBoundary(c.now(), time.Duration(c.intervalMinutes)*time.Minute)
		_ = c.rdb.Set(ctx, key, b, ttl).Err()
	}

	return out, nil
}

// cacheKey identifies one batch request. A zero requested date is keyed as
// "today"; the sub-interval TTL keeps such entries from leaking across
// boundaries.
func (c *CachingLiveCandles) cacheKey(mode window.Mode, requested time.Time, batchNo int) string {
	date := "today"
	if !requested.IsZero() {
		date = requested.Format("2006-01-02")
	}
	return fmt.Sprintf("%s:%s:%s:%d", c.namespace, safe(string(mode)), date, batchNo)
}
