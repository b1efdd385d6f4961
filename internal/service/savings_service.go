// Package service coordinates the savings estimation flow: resolve the
// instrument, fan out the upstream fetches, normalize the requested amount,
// run the simulation, and record the outcome.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/poolside-labs/darksave/internal/domain"
	"github.com/poolside-labs/darksave/internal/fees"
	"github.com/poolside-labs/darksave/internal/sim"
)

// SavingsConfig holds the service-level knobs.
type SavingsConfig struct {
	// DefaultExchange is the venue simulated when the request does not name
	// one.
	DefaultExchange string

	// Tokens maps a lowercase base-asset mint address to its ticker, used to
	// build the instrument symbol for the market-data provider.
	Tokens map[string]string
}

// SavingsService runs trade simulations against reconstructed order books
// and computes the midpoint-venue savings estimate.
type SavingsService struct {
	cfg        SavingsConfig
	books      domain.BookProvider
	prices     domain.PriceProvider
	priceCache domain.PriceCache    // optional
	schedule   *fees.Schedule
	store      domain.EstimateStore // optional
	archive    domain.BlobWriter    // optional
	logger     *slog.Logger
	now        func() time.Time
}

// NewSavingsService creates a SavingsService. priceCache, store, and archive
// may be nil; the corresponding behavior is skipped.
func NewSavingsService(
	cfg SavingsConfig,
	books domain.BookProvider,
	prices domain.PriceProvider,
	priceCache domain.PriceCache,
	schedule *fees.Schedule,
	store domain.EstimateStore,
	archive domain.BlobWriter,
	logger *slog.Logger,
) *SavingsService {
	return &SavingsService{
		cfg:        cfg,
		books:      books,
		prices:     prices,
		priceCache: priceCache,
		schedule:   schedule,
		store:      store,
		archive:    archive,
		logger:     logger.With(slog.String("component", "savings_service")),
		now:        time.Now,
	}
}

// Estimate runs a full savings simulation for the given request. The request
// must already have its required fields present; Estimate performs the
// semantic validation (direction, token, venue) and returns typed errors for
// the boundary layer to map.
func (s *SavingsService) Estimate(ctx context.Context, req domain.SavingsRequest) (domain.SavingsEstimate, error) {
	dir, err := domain.ParseDirection(req.Direction)
	if err != nil {
		return domain.SavingsEstimate{}, err
	}

	ticker, ok := s.cfg.Tokens[strings.ToLower(req.BaseMint)]
	if !ok {
		return domain.SavingsEstimate{}, fmt.Errorf("%w: no ticker mapping for mint %s", domain.ErrUnknownToken, req.BaseMint)
	}

	exchange := strings.ToLower(req.Exchange)
	if exchange == "" {
		exchange = s.cfg.DefaultExchange
	}
	venueFee, ok := s.schedule.Taker(exchange)
	if !ok {
		return domain.SavingsEstimate{}, fmt.Errorf("%w: no fee schedule for venue %q", domain.ErrInvalidRequest, exchange)
	}

	at := s.now()
	if req.Timestamp > 0 {
		at = time.UnixMilli(req.Timestamp)
	}
	instrument := strings.ToLower(ticker + "_" + req.QuoteTicker)

	// Book and spot price are independent upstream calls; fetch them
	// concurrently and join before simulating. The spot price is only needed
	// to convert a quote-denominated amount into base units.
	var (
		raw  domain.RawOrderbook
		spot float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw, err = s.books.OrderbookSnapshot(gctx, instrument, exchange, at)
		return err
	})
	if req.IsQuoteCurrency {
		g.Go(func() error {
			var err error
			spot, err = s.spotPrice(gctx, instrument)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return domain.SavingsEstimate{}, fmt.Errorf("savings: fetch inputs for %s: %w", instrument, err)
	}

	normalized := float64(req.Amount)
	if req.IsQuoteCurrency {
		if spot <= 0 {
			return domain.SavingsEstimate{}, fmt.Errorf("savings: spot price %v for %s: %w", spot, instrument, domain.ErrUpstream)
		}
		normalized = normalized / spot
	}

	book := sim.ConstructOrderbook(raw, venueFee)
	mid, err := book.MidpointPrice()
	if err != nil {
		return domain.SavingsEstimate{}, fmt.Errorf("savings: midpoint for %s@%s: %w", instrument, exchange, err)
	}

	var midpointFee float64
	if req.MidpointFeeRate != nil {
		midpointFee = *req.MidpointFeeRate
	}

	amounts := book.SimulateTradeAmounts(normalized, dir)
	est := sim.CalculateSavings(amounts, normalized, dir, mid, midpointFee)

	s.logger.InfoContext(ctx, "savings estimated",
		slog.String("instrument", instrument),
		slog.String("exchange", exchange),
		slog.String("direction", string(dir)),
		slog.Float64("normalized_amount", normalized),
		slog.Float64("midpoint_price", mid),
		slog.Float64("savings", est.Savings),
		slog.Float64("savings_bps", est.SavingsBps),
	)

	rec := domain.SavingsRecord{
		ID:               uuid.NewString(),
		BaseMint:         strings.ToLower(req.BaseMint),
		BaseTicker:       ticker,
		QuoteTicker:      strings.ToUpper(req.QuoteTicker),
		Exchange:         exchange,
		Direction:        dir,
		RequestedAmount:  float64(req.Amount),
		NormalizedAmount: normalized,
		BaseFilled:       amounts.Base,
		QuoteFilled:      amounts.Quote,
		MidpointPrice:    mid,
		VenueFeeRate:     venueFee,
		MidpointFeeRate:  midpointFee,
		Savings:          est.Savings,
		SavingsBps:       est.SavingsBps,
		CreatedAt:        s.now().UTC(),
	}
	s.record(ctx, rec, raw)

	return est, nil
}

// ListRecent returns the most recent recorded estimates. It returns
// domain.ErrNotFound when recording is not enabled.
func (s *SavingsService) ListRecent(ctx context.Context, limit int) ([]domain.SavingsRecord, error) {
	if s.store == nil {
		return nil, domain.ErrNotFound
	}
	records, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("savings: list recent: %w", err)
	}
	return records, nil
}

// spotPrice returns the current spot price, preferring a fresh cache entry
// and populating the cache on a miss.
func (s *SavingsService) spotPrice(ctx context.Context, instrument string) (float64, error) {
	if s.priceCache != nil {
		if price, _, err := s.priceCache.GetPrice(ctx, instrument); err == nil && price > 0 {
			return price, nil
		}
	}

	price, err := s.prices.SpotPrice(ctx, instrument)
	if err != nil {
		return 0, err
	}

	if s.priceCache != nil {
		if err := s.priceCache.SetPrice(ctx, instrument, price, s.now()); err != nil {
			s.logger.WarnContext(ctx, "spot price cache set failed",
				slog.String("instrument", instrument),
				slog.String("error", err.Error()),
			)
		}
	}
	return price, nil
}

// record persists the outcome and archives the raw snapshot, best-effort.
// Failures are logged and never fail the request.
func (s *SavingsService) record(ctx context.Context, rec domain.SavingsRecord, raw domain.RawOrderbook) {
	if s.store != nil {
		if err := s.store.Insert(ctx, rec); err != nil {
			s.logger.WarnContext(ctx, "estimate record insert failed",
				slog.String("estimate_id", rec.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.archive != nil {
		payload, err := json.Marshal(raw)
		if err != nil {
			s.logger.WarnContext(ctx, "snapshot marshal failed",
				slog.String("estimate_id", rec.ID),
				slog.String("error", err.Error()),
			)
			return
		}
		path := fmt.Sprintf("snapshots/%s/%s/%s.json",
			rec.Exchange,
			rec.CreatedAt.Format("2006-01-02"),
			rec.ID,
		)
		if err := s.archive.Put(ctx, path, bytes.NewReader(payload), "application/json"); err != nil {
			s.logger.WarnContext(ctx, "snapshot archive failed",
				slog.String("estimate_id", rec.ID),
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}
}
