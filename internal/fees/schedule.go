// Package fees provides the flat taker-fee schedule for simulated venues.
package fees

import "strings"

// Schedule maps a venue identifier to its fractional taker fee
// (0.001 = 10 bps), applied uniformly to all fills in a simulation.
type Schedule struct {
	taker map[string]float64
}

// Built-in taker fees for the venues we reconstruct books from.
var defaultTaker = map[string]float64{
	"binance":  0.001,
	"coinbase": 0.006,
	"kraken":   0.0026,
	"okx":      0.001,
}

// NewSchedule returns a Schedule with the built-in defaults, overridden or
// extended by overrides (venue name -> fractional fee).
func NewSchedule(overrides map[string]float64) *Schedule {
	taker := make(map[string]float64, len(defaultTaker)+len(overrides))
	for venue, fee := range defaultTaker {
		taker[venue] = fee
	}
	for venue, fee := range overrides {
		taker[strings.ToLower(venue)] = fee
	}
	return &Schedule{taker: taker}
}

// Taker returns the taker fee for a venue. Unknown venues return false.
func (s *Schedule) Taker(venue string) (float64, bool) {
	fee, ok := s.taker[strings.ToLower(venue)]
	return fee, ok
}

// Known reports whether a venue has a fee entry.
func (s *Schedule) Known(venue string) bool {
	_, ok := s.Taker(venue)
	return ok
}
