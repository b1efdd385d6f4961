package amberdata

import (
	"time"

	"github.com/poolside-labs/darksave/internal/domain"
)

// snapshotPayload is the payload of an order-book snapshot response. The API
// returns a window of snapshots; the first entry is the one closest to the
// requested timestamp.
type snapshotPayload struct {
	Data []snapshotData `json:"data"`
}

// snapshotData is a single order-book snapshot on the wire. Amberdata calls
// level size "volume".
type snapshotData struct {
	Timestamp int64       `json:"timestamp"` // ms since epoch
	Bid       []wireLevel `json:"bid"`
	Ask       []wireLevel `json:"ask"`
}

type wireLevel struct {
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// pricePayload is the payload of a latest-pair-price response.
type pricePayload struct {
	Price     domain.FlexFloat `json:"price"` // some pairs arrive as strings
	Timestamp int64            `json:"timestamp"`
}

// toDomain converts a wire snapshot into the provider-neutral raw book.
func (s snapshotData) toDomain(instrument, exchange string) domain.RawOrderbook {
	raw := domain.RawOrderbook{
		Instrument: instrument,
		Exchange:   exchange,
		Bids:       make([]domain.PriceLevel, 0, len(s.Bid)),
		Asks:       make([]domain.PriceLevel, 0, len(s.Ask)),
		Timestamp:  time.UnixMilli(s.Timestamp),
	}
	for _, lvl := range s.Bid {
		raw.Bids = append(raw.Bids, domain.PriceLevel{Price: lvl.Price, Size: lvl.Volume})
	}
	for _, lvl := range s.Ask {
		raw.Asks = append(raw.Asks, domain.PriceLevel{Price: lvl.Price, Size: lvl.Volume})
	}
	return raw
}
