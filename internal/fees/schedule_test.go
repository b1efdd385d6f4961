package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduleDefaults(t *testing.T) {
	s := NewSchedule(nil)

	fee, ok := s.Taker("binance")
	assert.True(t, ok)
	assert.Equal(t, 0.001, fee)

	fee, ok = s.Taker("KRAKEN")
	assert.True(t, ok)
	assert.Equal(t, 0.0026, fee)

	_, ok = s.Taker("unknown-venue")
	assert.False(t, ok)
}

func TestScheduleOverrides(t *testing.T) {
	s := NewSchedule(map[string]float64{
		"Binance": 0.00075,
		"bitmex":  0.00025,
	})

	fee, _ := s.Taker("binance")
	assert.Equal(t, 0.00075, fee)

	assert.True(t, s.Known("bitmex"))
	fee, _ = s.Taker("bitmex")
	assert.Equal(t, 0.00025, fee)

	// Untouched defaults remain.
	fee, _ = s.Taker("coinbase")
	assert.Equal(t, 0.006, fee)
}
