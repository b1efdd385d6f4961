package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/poolside-labs/darksave/internal/blob/s3"
	"github.com/poolside-labs/darksave/internal/cache/redis"
	"github.com/poolside-labs/darksave/internal/config"
	"github.com/poolside-labs/darksave/internal/domain"
	"github.com/poolside-labs/darksave/internal/fees"
	"github.com/poolside-labs/darksave/internal/platform/amberdata"
	"github.com/poolside-labs/darksave/internal/service"
	"github.com/poolside-labs/darksave/internal/store/postgres"
)

// Dependencies bundles everything the server needs to operate. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Savings     *service.SavingsService
	RateLimiter domain.RateLimiter
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function to be
// called on shutdown. The estimate store and snapshot archive are optional:
// they are wired only when a Postgres DSN or an S3 bucket is configured.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Redis (price cache + rate limiter) ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	priceCache := redis.NewPriceCache(redisClient, cfg.Simulation.PriceCacheTTL.Duration)
	limiter := redis.NewRateLimiter(redisClient)

	// --- Estimate store (optional) ---
	var store domain.EstimateStore
	if cfg.Postgres.DSN != "" {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			MaxConns: cfg.Postgres.MaxConns,
			MinConns: cfg.Postgres.MinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}
		store = postgres.NewEstimateStore(pgClient.Pool())
	}

	// --- Snapshot archive (optional) ---
	var archive domain.BlobWriter
	if cfg.S3.Bucket != "" {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		archive = s3blob.NewArchiver(s3Client)
	}

	// --- Market data + savings service ---
	market := amberdata.NewClient(cfg.Amberdata.BaseURL, cfg.Amberdata.APIKey)
	schedule := fees.NewSchedule(cfg.Simulation.VenueFees)

	savings := service.NewSavingsService(
		service.SavingsConfig{
			DefaultExchange: cfg.Simulation.DefaultExchange,
			Tokens:          cfg.Simulation.Tokens,
		},
		market, market, priceCache,
		schedule,
		store, archive,
		logger,
	)

	return &Dependencies{
		Savings:     savings,
		RateLimiter: limiter,
	}, cleanup, nil
}
