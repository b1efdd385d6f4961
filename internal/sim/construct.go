package sim

import (
	"sort"

	"github.com/poolside-labs/darksave/internal/domain"
)

// ConstructOrderbook normalizes a raw provider snapshot into an Orderbook:
// levels with non-positive price or size are dropped, duplicate prices on a
// side are aggregated into a single level, bids are sorted descending and
// asks ascending so the best price is first on each side.
func ConstructOrderbook(raw domain.RawOrderbook, feeRate float64) *Orderbook {
	bids := normalizeSide(raw.Bids, func(a, b float64) bool { return a > b })
	asks := normalizeSide(raw.Asks, func(a, b float64) bool { return a < b })
	return NewOrderbook(bids, asks, feeRate)
}

// normalizeSide filters, aggregates, and sorts one side of the book. The
// better comparator orders prices best-first for that side.
func normalizeSide(levels []domain.PriceLevel, better func(a, b float64) bool) []domain.PriceLevel {
	sizeByPrice := make(map[float64]float64, len(levels))
	for _, lvl := range levels {
		if lvl.Price <= 0 || lvl.Size <= 0 {
			continue
		}
		sizeByPrice[lvl.Price] += lvl.Size
	}

	out := make([]domain.PriceLevel, 0, len(sizeByPrice))
	for price, size := range sizeByPrice {
		out = append(out, domain.PriceLevel{Price: price, Size: size})
	}
	sort.Slice(out, func(i, j int) bool {
		return better(out[i].Price, out[j].Price)
	})
	return out
}
