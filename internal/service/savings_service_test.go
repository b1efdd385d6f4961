package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolside-labs/darksave/internal/domain"
	"github.com/poolside-labs/darksave/internal/fees"
)

const wethMint = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"

type fakeBookProvider struct {
	raw        domain.RawOrderbook
	err        error
	instrument string
	exchange   string
	at         time.Time
}

func (f *fakeBookProvider) OrderbookSnapshot(_ context.Context, instrument, exchange string, at time.Time) (domain.RawOrderbook, error) {
	f.instrument = instrument
	f.exchange = exchange
	f.at = at
	return f.raw, f.err
}

type fakePriceProvider struct {
	price float64
	err   error
	calls int
}

func (f *fakePriceProvider) SpotPrice(context.Context, string) (float64, error) {
	f.calls++
	return f.price, f.err
}

type fakePriceCache struct {
	price float64
	sets  int
}

func (f *fakePriceCache) SetPrice(_ context.Context, _ string, price float64, _ time.Time) error {
	f.sets++
	f.price = price
	return nil
}

func (f *fakePriceCache) GetPrice(context.Context, string) (float64, time.Time, error) {
	if f.price == 0 {
		return 0, time.Time{}, domain.ErrNotFound
	}
	return f.price, time.Now(), nil
}

type fakeStore struct {
	records []domain.SavingsRecord
}

func (f *fakeStore) Insert(_ context.Context, rec domain.SavingsRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeStore) ListRecent(_ context.Context, limit int) ([]domain.SavingsRecord, error) {
	if limit > len(f.records) {
		limit = len(f.records)
	}
	return f.records[:limit], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRawBook() domain.RawOrderbook {
	return domain.RawOrderbook{
		Bids: []domain.PriceLevel{{Price: 99, Size: 5}},
		Asks: []domain.PriceLevel{{Price: 101, Size: 2}, {Price: 100, Size: 1}},
	}
}

func newTestService(books domain.BookProvider, prices domain.PriceProvider, cache domain.PriceCache, store domain.EstimateStore) *SavingsService {
	return NewSavingsService(
		SavingsConfig{
			DefaultExchange: "binance",
			Tokens:          map[string]string{"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2": "weth"},
		},
		books, prices, cache,
		fees.NewSchedule(nil),
		store, nil,
		discardLogger(),
	)
}

func feeRate(t *testing.T) float64 {
	t.Helper()
	rate, ok := fees.NewSchedule(nil).Taker("binance")
	require.True(t, ok)
	return rate
}

func TestEstimateBuy(t *testing.T) {
	books := &fakeBookProvider{raw: testRawBook()}
	store := &fakeStore{}
	midFee := 0.0002
	svc := newTestService(books, &fakePriceProvider{}, nil, store)

	est, err := svc.Estimate(context.Background(), domain.SavingsRequest{
		BaseMint:        wethMint,
		QuoteTicker:     "USDC",
		Direction:       "buy",
		Amount:          2,
		MidpointFeeRate: &midFee,
		Timestamp:       1700000000000,
	})
	require.NoError(t, err)

	assert.Equal(t, "weth_usdc", books.instrument)
	assert.Equal(t, "binance", books.exchange)
	assert.Equal(t, time.UnixMilli(1700000000000), books.at)

	// Asks normalize to [{100,1},{101,2}]; 2 base at the venue taker fee vs
	// a 2 bps midpoint fill at (99+100)/2 = 99.5.
	fee := feeRate(t)
	simQuote := (1*100.0 + 1*101.0) * (1 + fee)
	ideal := 2 * 99.5 * (1 + midFee)
	assert.InDelta(t, simQuote-ideal, est.Savings, 1e-9)
	assert.InDelta(t, est.Savings/(2*99.5)*10000, est.SavingsBps, 1e-9)

	require.Len(t, store.records, 1)
	rec := store.records[0]
	assert.Equal(t, "weth", rec.BaseTicker)
	assert.Equal(t, domain.DirectionBuy, rec.Direction)
	assert.Equal(t, 2.0, rec.BaseFilled)
	assert.Equal(t, 99.5, rec.MidpointPrice)
	assert.NotEmpty(t, rec.ID)
}

func TestEstimateQuoteDenominatedNormalization(t *testing.T) {
	books := &fakeBookProvider{raw: testRawBook()}
	prices := &fakePriceProvider{price: 100}
	cache := &fakePriceCache{}
	store := &fakeStore{}
	svc := newTestService(books, prices, cache, store)

	zero := 0.0
	_, err := svc.Estimate(context.Background(), domain.SavingsRequest{
		BaseMint:        wethMint,
		QuoteTicker:     "usdc",
		Direction:       "sell",
		Amount:          250, // quote units -> 2.5 base at spot 100
		MidpointFeeRate: &zero,
		IsQuoteCurrency: true,
	})
	require.NoError(t, err)

	require.Len(t, store.records, 1)
	assert.InDelta(t, 2.5, store.records[0].NormalizedAmount, 1e-12)
	assert.Equal(t, 1, prices.calls)
	assert.Equal(t, 1, cache.sets, "spot price cached after fetch")

	// A second request is served from the cache.
	_, err = svc.Estimate(context.Background(), domain.SavingsRequest{
		BaseMint:        wethMint,
		QuoteTicker:     "usdc",
		Direction:       "sell",
		Amount:          100,
		MidpointFeeRate: &zero,
		IsQuoteCurrency: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, prices.calls)
}

func TestEstimateBaseDenominatedSkipsPriceFetch(t *testing.T) {
	prices := &fakePriceProvider{err: errors.New("should not be called")}
	svc := newTestService(&fakeBookProvider{raw: testRawBook()}, prices, nil, nil)

	zero := 0.0
	_, err := svc.Estimate(context.Background(), domain.SavingsRequest{
		BaseMint:        wethMint,
		QuoteTicker:     "usdc",
		Direction:       "buy",
		Amount:          1,
		MidpointFeeRate: &zero,
	})
	require.NoError(t, err)
	assert.Zero(t, prices.calls)
}

func TestEstimateErrors(t *testing.T) {
	zero := 0.0
	valid := domain.SavingsRequest{
		BaseMint:        wethMint,
		QuoteTicker:     "usdc",
		Direction:       "buy",
		Amount:          1,
		MidpointFeeRate: &zero,
	}

	t.Run("bad direction", func(t *testing.T) {
		svc := newTestService(&fakeBookProvider{raw: testRawBook()}, &fakePriceProvider{}, nil, nil)
		req := valid
		req.Direction = "hold"
		_, err := svc.Estimate(context.Background(), req)
		require.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc := newTestService(&fakeBookProvider{raw: testRawBook()}, &fakePriceProvider{}, nil, nil)
		req := valid
		req.BaseMint = "0x0000000000000000000000000000000000000001"
		_, err := svc.Estimate(context.Background(), req)
		require.ErrorIs(t, err, domain.ErrUnknownToken)
	})

	t.Run("unknown venue", func(t *testing.T) {
		svc := newTestService(&fakeBookProvider{raw: testRawBook()}, &fakePriceProvider{}, nil, nil)
		req := valid
		req.Exchange = "nosuchvenue"
		_, err := svc.Estimate(context.Background(), req)
		require.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("upstream book failure", func(t *testing.T) {
		books := &fakeBookProvider{err: domain.ErrUpstream}
		svc := newTestService(books, &fakePriceProvider{}, nil, nil)
		_, err := svc.Estimate(context.Background(), valid)
		require.ErrorIs(t, err, domain.ErrUpstream)
	})

	t.Run("empty book", func(t *testing.T) {
		books := &fakeBookProvider{raw: domain.RawOrderbook{}}
		svc := newTestService(books, &fakePriceProvider{}, nil, nil)
		_, err := svc.Estimate(context.Background(), valid)
		require.ErrorIs(t, err, domain.ErrNoLiquidity)
	})

	t.Run("crossed book", func(t *testing.T) {
		books := &fakeBookProvider{raw: domain.RawOrderbook{
			Bids: []domain.PriceLevel{{Price: 101, Size: 1}},
			Asks: []domain.PriceLevel{{Price: 100, Size: 1}},
		}}
		svc := newTestService(books, &fakePriceProvider{}, nil, nil)
		_, err := svc.Estimate(context.Background(), valid)
		require.ErrorIs(t, err, domain.ErrCrossedBook)
	})
}

func TestListRecent(t *testing.T) {
	store := &fakeStore{records: []domain.SavingsRecord{{ID: "a"}, {ID: "b"}}}
	svc := newTestService(&fakeBookProvider{}, &fakePriceProvider{}, nil, store)

	records, err := svc.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	noStore := newTestService(&fakeBookProvider{}, &fakePriceProvider{}, nil, nil)
	_, err = noStore.ListRecent(context.Background(), 10)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
