package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolside-labs/darksave/internal/domain"
)

func testBook(feeRate float64) *Orderbook {
	return NewOrderbook(
		[]domain.PriceLevel{{Price: 99, Size: 1}, {Price: 98, Size: 2}, {Price: 97, Size: 3}},
		[]domain.PriceLevel{{Price: 100, Size: 1}, {Price: 101, Size: 2}, {Price: 102, Size: 3}},
		feeRate,
	)
}

func TestMidpointPrice(t *testing.T) {
	mid, err := testBook(0).MidpointPrice()
	require.NoError(t, err)
	assert.Equal(t, 99.5, mid)

	// Midpoint lies strictly between best bid and best ask.
	assert.Greater(t, mid, 99.0)
	assert.Less(t, mid, 100.0)
}

func TestMidpointPriceNoLiquidity(t *testing.T) {
	cases := []struct {
		name string
		bids []domain.PriceLevel
		asks []domain.PriceLevel
	}{
		{"empty book", nil, nil},
		{"no bids", nil, []domain.PriceLevel{{Price: 100, Size: 1}}},
		{"no asks", []domain.PriceLevel{{Price: 99, Size: 1}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOrderbook(tc.bids, tc.asks, 0).MidpointPrice()
			require.ErrorIs(t, err, domain.ErrNoLiquidity)
		})
	}
}

func TestMidpointPriceCrossedBook(t *testing.T) {
	// Best bid >= best ask is rejected rather than averaged.
	crossed := NewOrderbook(
		[]domain.PriceLevel{{Price: 101, Size: 1}},
		[]domain.PriceLevel{{Price: 100, Size: 1}},
		0,
	)
	_, err := crossed.MidpointPrice()
	require.ErrorIs(t, err, domain.ErrCrossedBook)

	touching := NewOrderbook(
		[]domain.PriceLevel{{Price: 100, Size: 1}},
		[]domain.PriceLevel{{Price: 100, Size: 1}},
		0,
	)
	_, err = touching.MidpointPrice()
	require.ErrorIs(t, err, domain.ErrCrossedBook)

	require.True(t, errors.Is(err, domain.ErrCrossedBook))
}

func TestSimulateZeroAmount(t *testing.T) {
	for _, dir := range []domain.Direction{domain.DirectionBuy, domain.DirectionSell} {
		amounts := testBook(0.001).SimulateTradeAmounts(0, dir)
		assert.Zero(t, amounts.Base, "direction %s", dir)
		assert.Zero(t, amounts.Quote, "direction %s", dir)
	}
}

func TestSimulateEmptyBook(t *testing.T) {
	empty := NewOrderbook(nil, nil, 0.001)
	for _, dir := range []domain.Direction{domain.DirectionBuy, domain.DirectionSell} {
		amounts := empty.SimulateTradeAmounts(1, dir)
		assert.Zero(t, amounts.Base)
		assert.Zero(t, amounts.Quote)
	}
}

func TestSimulateThinBookBuy(t *testing.T) {
	book := NewOrderbook(
		nil,
		[]domain.PriceLevel{{Price: 100, Size: 1}, {Price: 101, Size: 2}},
		0.001,
	)
	amounts := book.SimulateTradeAmounts(2.5, domain.DirectionBuy)
	assert.InDelta(t, 2.5, amounts.Base, 1e-12)
	// (1*100 + 1.5*101) * 1.001
	assert.InDelta(t, 251.7515, amounts.Quote, 1e-9)
}

func TestSimulateSellExceedsDepth(t *testing.T) {
	book := NewOrderbook(
		[]domain.PriceLevel{{Price: 99, Size: 1}},
		nil,
		0,
	)
	amounts := book.SimulateTradeAmounts(5, domain.DirectionSell)
	assert.Equal(t, 1.0, amounts.Base)
	assert.Equal(t, 99.0, amounts.Quote)
}

func TestSimulateFullDepthExact(t *testing.T) {
	book := testBook(0.002)
	// Total ask depth is 1+2+3 = 6: the last level is exactly exhausted.
	amounts := book.SimulateTradeAmounts(6, domain.DirectionBuy)
	assert.Equal(t, 6.0, amounts.Base)

	// Asking for more fills no more.
	more := book.SimulateTradeAmounts(10, domain.DirectionBuy)
	assert.Equal(t, 6.0, more.Base)
	assert.Equal(t, amounts.Quote, more.Quote)
}

func TestSimulateFillMonotonic(t *testing.T) {
	book := testBook(0.001)
	prev := 0.0
	for _, amount := range []float64{0, 0.5, 1, 2.5, 4, 6, 8} {
		amounts := book.SimulateTradeAmounts(amount, domain.DirectionSell)
		assert.LessOrEqual(t, amounts.Base, amount)
		assert.GreaterOrEqual(t, amounts.Base, prev)
		prev = amounts.Base
	}
}

func TestSimulateFeeDirection(t *testing.T) {
	withFee := testBook(0.001)
	noFee := testBook(0)

	// A buyer pays strictly more with a fee.
	buyFee := withFee.SimulateTradeAmounts(2, domain.DirectionBuy)
	buyFree := noFee.SimulateTradeAmounts(2, domain.DirectionBuy)
	assert.Equal(t, buyFree.Base, buyFee.Base)
	assert.Greater(t, buyFee.Quote, buyFree.Quote)

	// A seller receives strictly less with a fee.
	sellFee := withFee.SimulateTradeAmounts(2, domain.DirectionSell)
	sellFree := noFee.SimulateTradeAmounts(2, domain.DirectionSell)
	assert.Equal(t, sellFree.Base, sellFee.Base)
	assert.Less(t, sellFee.Quote, sellFree.Quote)
}

func TestSimulateWalksLevelsInPriorityOrder(t *testing.T) {
	book := NewOrderbook(
		[]domain.PriceLevel{{Price: 99, Size: 1}, {Price: 98, Size: 1}},
		nil,
		0,
	)
	amounts := book.SimulateTradeAmounts(1.5, domain.DirectionSell)
	// 1 @ 99 then 0.5 @ 98, not the other way round.
	assert.InDelta(t, 99+0.5*98, amounts.Quote, 1e-12)
}
