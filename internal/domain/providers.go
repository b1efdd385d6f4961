package domain

import (
	"context"
	"io"
	"time"
)

// BookProvider fetches a raw order-book snapshot for an instrument on a venue
// as of the given timestamp. Implementations do not normalize the levels.
type BookProvider interface {
	OrderbookSnapshot(ctx context.Context, instrument, exchange string, at time.Time) (RawOrderbook, error)
}

// PriceProvider returns the current quote-denominated spot price for a pair.
type PriceProvider interface {
	SpotPrice(ctx context.Context, instrument string) (float64, error)
}

// PriceCache provides short-lived caching of spot prices. GetPrice returns
// ErrNotFound when no fresh entry exists.
type PriceCache interface {
	SetPrice(ctx context.Context, instrument string, price float64, ts time.Time) error
	GetPrice(ctx context.Context, instrument string) (float64, time.Time, error)
}

// RateLimiter provides distributed request rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// EstimateStore persists simulation outcomes.
type EstimateStore interface {
	Insert(ctx context.Context, rec SavingsRecord) error
	ListRecent(ctx context.Context, limit int) ([]SavingsRecord, error)
}

// BlobWriter archives raw payloads to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
