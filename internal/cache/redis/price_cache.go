package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/poolside-labs/darksave/internal/domain"
)

// PriceCache implements domain.PriceCache using a Redis hash per instrument
// with fields "price" and "ts" (Unix nanoseconds), expiring after a TTL so a
// stale spot price is never used for amount normalization.
type PriceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPriceCache creates a PriceCache with the given entry TTL. A zero ttl
// disables expiry.
func NewPriceCache(c *Client, ttl time.Duration) *PriceCache {
	return &PriceCache{rdb: c.Underlying(), ttl: ttl}
}

func spotKey(instrument string) string {
	return "spot:" + instrument
}

// SetPrice stores the latest spot price for an instrument.
func (pc *PriceCache) SetPrice(ctx context.Context, instrument string, price float64, ts time.Time) error {
	key := spotKey(instrument)
	pipe := pc.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"price": strconv.FormatFloat(price, 'f', -1, 64),
		"ts":    strconv.FormatInt(ts.UnixNano(), 10),
	})
	if pc.ttl > 0 {
		pipe.Expire(ctx, key, pc.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set spot price %s: %w", instrument, err)
	}
	return nil
}

// GetPrice returns the cached spot price and its timestamp, or
// domain.ErrNotFound when the entry is missing or expired.
func (pc *PriceCache) GetPrice(ctx context.Context, instrument string) (float64, time.Time, error) {
	vals, err := pc.rdb.HGetAll(ctx, spotKey(instrument)).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: get spot price %s: %w", instrument, err)
	}
	if len(vals) == 0 {
		return 0, time.Time{}, domain.ErrNotFound
	}

	price, err := strconv.ParseFloat(vals["price"], 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: parse spot price %s: %w", instrument, err)
	}
	tsNano, err := strconv.ParseInt(vals["ts"], 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: parse spot ts %s: %w", instrument, err)
	}
	return price, time.Unix(0, tsNano), nil
}

// Compile-time interface check.
var _ domain.PriceCache = (*PriceCache)(nil)
