package sim

import (
	"github.com/poolside-labs/darksave/internal/domain"
)

// CalculateSavings quantifies the benefit of clearing normalizedAmount base
// units at the midpoint (fee-adjusted by the dark pool's flat midpointFeeRate)
// versus the simulated public-book execution in amounts. The result is signed
// so that a positive value always means the midpoint venue was more favorable
// to the trader: a buyer saves by paying less, a seller by receiving more.
// SavingsBps is relative to the trade notional at the midpoint, guarded
// against zero notional.
func CalculateSavings(
	amounts domain.TradeAmounts,
	normalizedAmount float64,
	dir domain.Direction,
	midpointPrice float64,
	midpointFeeRate float64,
) domain.SavingsEstimate {
	if normalizedAmount == 0 {
		return domain.SavingsEstimate{}
	}

	idealQuote := normalizedAmount * midpointPrice
	if dir == domain.DirectionBuy {
		idealQuote *= 1 + midpointFeeRate
	} else {
		idealQuote *= 1 - midpointFeeRate
	}

	var savings float64
	if dir == domain.DirectionBuy {
		// Buyer: public book costs amounts.Quote, midpoint costs idealQuote.
		savings = amounts.Quote - idealQuote
	} else {
		// Seller: midpoint pays idealQuote, public book pays amounts.Quote.
		savings = idealQuote - amounts.Quote
	}

	totalTradeValue := normalizedAmount * midpointPrice
	var savingsBps float64
	if totalTradeValue > 0 {
		savingsBps = savings / totalTradeValue * 10000
	}

	return domain.SavingsEstimate{
		Savings:    savings,
		SavingsBps: savingsBps,
	}
}
