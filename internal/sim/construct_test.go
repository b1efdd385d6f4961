package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poolside-labs/darksave/internal/domain"
)

func TestConstructOrderbookSortsBestFirst(t *testing.T) {
	raw := domain.RawOrderbook{
		Bids: []domain.PriceLevel{{Price: 97, Size: 1}, {Price: 99, Size: 1}, {Price: 98, Size: 1}},
		Asks: []domain.PriceLevel{{Price: 102, Size: 1}, {Price: 100, Size: 1}, {Price: 101, Size: 1}},
	}
	book := ConstructOrderbook(raw, 0)

	assert.Equal(t, []domain.PriceLevel{
		{Price: 99, Size: 1}, {Price: 98, Size: 1}, {Price: 97, Size: 1},
	}, book.Bids())
	assert.Equal(t, []domain.PriceLevel{
		{Price: 100, Size: 1}, {Price: 101, Size: 1}, {Price: 102, Size: 1},
	}, book.Asks())
}

func TestConstructOrderbookAggregatesDuplicates(t *testing.T) {
	raw := domain.RawOrderbook{
		Asks: []domain.PriceLevel{{Price: 100, Size: 1}, {Price: 100, Size: 2.5}},
	}
	book := ConstructOrderbook(raw, 0)
	assert.Equal(t, []domain.PriceLevel{{Price: 100, Size: 3.5}}, book.Asks())
}

func TestConstructOrderbookDropsDegenerateLevels(t *testing.T) {
	raw := domain.RawOrderbook{
		Bids: []domain.PriceLevel{{Price: 99, Size: 0}, {Price: 0, Size: 3}, {Price: -1, Size: 1}},
		Asks: []domain.PriceLevel{{Price: 100, Size: 2}, {Price: 101, Size: -4}},
	}
	book := ConstructOrderbook(raw, 0)
	assert.Empty(t, book.Bids())
	assert.Equal(t, []domain.PriceLevel{{Price: 100, Size: 2}}, book.Asks())
}

func TestConstructOrderbookCarriesFeeRate(t *testing.T) {
	book := ConstructOrderbook(domain.RawOrderbook{}, 0.0026)
	assert.Equal(t, 0.0026, book.FeeRate())
}
