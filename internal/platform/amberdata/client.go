// Package amberdata is the REST client for the Amberdata market-data API.
// It supplies the two upstream inputs of a savings simulation: historical
// order-book snapshots and latest spot prices.
package amberdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/poolside-labs/darksave/internal/domain"
)

// Client is the Amberdata REST client. All errors returned by its fetch
// methods wrap domain.ErrUpstream so callers can map them uniformly.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an Amberdata client.
//
// baseURL is the API root, e.g. "https://api.amberdata.com".
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// envelope is the standard Amberdata response wrapper.
type envelope struct {
	Status  int             `json:"status"`
	Title   string          `json:"title"`
	Payload json.RawMessage `json:"payload"`
}

// OrderbookSnapshot fetches raw bid/ask levels for an instrument on an
// exchange as of the given timestamp. Levels are returned as provided, in
// whatever order the venue feed emitted them; normalization is the caller's
// concern.
func (c *Client) OrderbookSnapshot(ctx context.Context, instrument, exchange string, at time.Time) (domain.RawOrderbook, error) {
	params := url.Values{}
	params.Set("exchange", exchange)
	params.Set("timestamp", strconv.FormatInt(at.UnixMilli(), 10))

	path := "/market/spot/order-book-snapshots/" + url.PathEscape(instrument)
	payload, err := c.get(ctx, path, params)
	if err != nil {
		return domain.RawOrderbook{}, fmt.Errorf("amberdata: order book %s@%s: %w", instrument, exchange, err)
	}

	var body snapshotPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return domain.RawOrderbook{}, fmt.Errorf("amberdata: order book %s@%s: decode: %w: %v", instrument, exchange, domain.ErrUpstream, err)
	}
	if len(body.Data) == 0 {
		return domain.RawOrderbook{}, fmt.Errorf("amberdata: order book %s@%s: empty payload: %w", instrument, exchange, domain.ErrUpstream)
	}

	return body.Data[0].toDomain(instrument, exchange), nil
}

// SpotPrice fetches the latest quote-denominated price for a pair.
func (c *Client) SpotPrice(ctx context.Context, instrument string) (float64, error) {
	path := "/market/spot/prices/pairs/" + url.PathEscape(instrument) + "/latest"
	payload, err := c.get(ctx, path, nil)
	if err != nil {
		return 0, fmt.Errorf("amberdata: spot price %s: %w", instrument, err)
	}

	var body pricePayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return 0, fmt.Errorf("amberdata: spot price %s: decode: %w: %v", instrument, domain.ErrUpstream, err)
	}
	if body.Price <= 0 {
		return 0, fmt.Errorf("amberdata: spot price %s: non-positive price %v: %w", instrument, float64(body.Price), domain.ErrUpstream)
	}

	return float64(body.Price), nil
}

// get performs an authenticated GET and returns the payload portion of the
// response envelope.
func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w: %v", domain.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w: %v", domain.ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, truncate(raw, 256))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w: %v", domain.ErrUpstream, err)
	}
	return env.Payload, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Compile-time interface checks.
var (
	_ domain.BookProvider  = (*Client)(nil)
	_ domain.PriceProvider = (*Client)(nil)
)
