// Package sim implements the order-book trade simulation and savings
// calculation engine. Given a reconstructed limit order book it estimates how
// a hypothetical market order would execute against resting liquidity and
// compares that execution to a midpoint-price fill at the dark pool.
package sim

import (
	"github.com/poolside-labs/darksave/internal/domain"
)

// Orderbook is an immutable two-sided book plus the taker fee rate of the
// venue being simulated. Bids are expected best-first (descending price),
// asks best-first (ascending price); the type stores levels as given and
// performs no re-sorting or deduplication. A side with zero levels is valid
// and represents no liquidity.
type Orderbook struct {
	bids    []domain.PriceLevel
	asks    []domain.PriceLevel
	feeRate float64
}

// NewOrderbook builds an Orderbook from already-normalized sides. Callers
// that hold raw provider data should use ConstructOrderbook instead.
func NewOrderbook(bids, asks []domain.PriceLevel, feeRate float64) *Orderbook {
	return &Orderbook{bids: bids, asks: asks, feeRate: feeRate}
}

// Bids returns the bid levels, best-first.
func (b *Orderbook) Bids() []domain.PriceLevel { return b.bids }

// Asks returns the ask levels, best-first.
func (b *Orderbook) Asks() []domain.PriceLevel { return b.asks }

// FeeRate returns the venue taker fee as a fraction (0.001 = 10 bps).
func (b *Orderbook) FeeRate() float64 { return b.feeRate }

// MidpointPrice returns (bestBid + bestAsk) / 2. It returns
// domain.ErrNoLiquidity when either side is empty, and domain.ErrCrossedBook
// when best bid >= best ask: a crossed reconstruction means bad upstream
// data, and no meaningful midpoint exists.
func (b *Orderbook) MidpointPrice() (float64, error) {
	if len(b.bids) == 0 || len(b.asks) == 0 {
		return 0, domain.ErrNoLiquidity
	}
	bestBid := b.bids[0].Price
	bestAsk := b.asks[0].Price
	if bestBid >= bestAsk {
		return 0, domain.ErrCrossedBook
	}
	return (bestBid + bestAsk) / 2, nil
}

// SimulateTradeAmounts walks the side selected by dir, consuming liquidity
// level by level until amount base units are filled or depth runs out.
// A buy consumes asks and pays gross*(1+fee); a sell consumes bids and
// receives gross*(1-fee). Running out of depth is a partial fill, not an
// error. Levels are accumulated in their given priority order so results are
// deterministic across runs.
func (b *Orderbook) SimulateTradeAmounts(amount float64, dir domain.Direction) domain.TradeAmounts {
	levels := b.asks
	feeMult := 1 + b.feeRate
	if dir == domain.DirectionSell {
		levels = b.bids
		feeMult = 1 - b.feeRate
	}

	remaining := amount
	var amounts domain.TradeAmounts
	for _, lvl := range levels {
		if remaining <= 0 {
			break
		}
		fillSize := remaining
		if lvl.Size < fillSize {
			fillSize = lvl.Size
		}
		amounts.Base += fillSize
		amounts.Quote += fillSize * lvl.Price * feeMult
		remaining -= fillSize
	}
	return amounts
}
