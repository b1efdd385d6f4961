// Package domain defines the core types shared across the darksave service:
// order-book levels, trade requests, simulation results, and the contracts
// implemented by the platform, cache, store, and blob layers.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Direction is the taker side of a simulated market order.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// ParseDirection normalizes a wire direction string. It returns
// ErrInvalidRequest for anything other than "buy" or "sell".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return DirectionBuy, nil
	case "sell":
		return DirectionSell, nil
	default:
		return "", fmt.Errorf("%w: direction %q must be \"buy\" or \"sell\"", ErrInvalidRequest, s)
	}
}

// PriceLevel is a single price+size entry in an order book. Size is resting
// liquidity at that price, denominated in the base asset.
type PriceLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// RawOrderbook is the order-book payload as returned by the market-data
// provider, before normalization. Neither side is guaranteed to be sorted,
// aggregated, or free of zero-size levels.
type RawOrderbook struct {
	Instrument string       `json:"instrument"`
	Exchange   string       `json:"exchange"`
	Bids       []PriceLevel `json:"bids"`
	Asks       []PriceLevel `json:"asks"`
	Timestamp  time.Time    `json:"timestamp"`
}

// TradeAmounts is the outcome of walking one side of a book: how much base
// was actually filled and the fee-adjusted quote amount that changed hands.
type TradeAmounts struct {
	Base  float64 // base asset filled, <= requested amount
	Quote float64 // quote paid (buy) or received (sell), net of venue fee
}

// SavingsEstimate compares a simulated public-book execution against a
// hypothetical midpoint fill at the dark pool. Savings is in quote-currency
// units and positive when the midpoint venue is more favorable to the trader.
type SavingsEstimate struct {
	Savings    float64 `json:"savings"`
	SavingsBps float64 `json:"savingsBps"`
}

// FlexFloat is a float64 that accepts either a JSON number or a numeric
// string, matching the loose request bodies sent by frontend callers.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			return err
		}
		s = strings.TrimSpace(unquoted)
		if s == "" {
			*f = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*f = FlexFloat(v)
	return nil
}

// SavingsRequest is the validated body of a savings estimation call.
// MidpointFeeRate travels on the wire as "renegadeFeeRate" for compatibility
// with existing frontend callers.
type SavingsRequest struct {
	BaseMint        string     `json:"baseMint"`
	QuoteTicker     string     `json:"quoteTicker"`
	Direction       string     `json:"direction"`
	Amount          FlexFloat  `json:"amount"`
	MidpointFeeRate *float64   `json:"renegadeFeeRate"`
	Timestamp       int64      `json:"timestamp,omitempty"` // ms since epoch; zero means now
	IsQuoteCurrency bool       `json:"isQuoteCurrency,omitempty"`
	Exchange        string     `json:"exchange,omitempty"` // optional venue override
}

// SavingsRecord is a persisted simulation outcome, kept for auditing and the
// recent-estimates endpoint.
type SavingsRecord struct {
	ID               string    `json:"id"`
	BaseMint         string    `json:"base_mint"`
	BaseTicker       string    `json:"base_ticker"`
	QuoteTicker      string    `json:"quote_ticker"`
	Exchange         string    `json:"exchange"`
	Direction        Direction `json:"direction"`
	RequestedAmount  float64   `json:"requested_amount"`
	NormalizedAmount float64   `json:"normalized_amount"`
	BaseFilled       float64   `json:"base_filled"`
	QuoteFilled      float64   `json:"quote_filled"`
	MidpointPrice    float64   `json:"midpoint_price"`
	VenueFeeRate     float64   `json:"venue_fee_rate"`
	MidpointFeeRate  float64   `json:"midpoint_fee_rate"`
	Savings          float64   `json:"savings"`
	SavingsBps       float64   `json:"savings_bps"`
	CreatedAt        time.Time `json:"created_at"`
}
