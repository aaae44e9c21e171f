// Package coingecko fetches spot price quotes from the CoinGecko simple
// price API. Only the bitcoin/usd pair is consumed by this project.
package coingecko

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.coingecko.com/api/v3"
	defaultTimeout = 15 * time.Second
)

// QuoteProvider is the behaviour the price collector depends on.
type QuoteProvider interface {
	BitcoinPriceUSD(ctx context.Context) (float64, error)
}

// Client wraps the CoinGecko REST API.
type Client struct {
	http *resty.Client
}

var _ QuoteProvider = (*Client)(nil)

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.http.SetBaseURL(url)
	}
}

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// NewClient constructs a CoinGecko client. The simple price endpoint is
// public; no API key is required.
func NewClient(opts ...Option) *Client {
	httpClient := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json")

	c := &Client{http: httpClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type simplePriceResponse struct {
	Bitcoin struct {
		USD float64 `json:"usd"`
	} `json:"bitcoin"`
}

// BitcoinPriceUSD returns the current BTC/USD quote. Non-2xx statuses and
// missing payload fields are errors; no retry is attempted here.
func (c *Client) BitcoinPriceUSD(ctx context.Context) (float64, error) {
	var payload simplePriceResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":           "bitcoin",
			"vs_currencies": "usd",
		}).
		SetResult(&payload).
		Get("/simple/price")
	if err != nil {
		return 0, fmt.Errorf("coingecko: fetch price: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("coingecko: unexpected status %d", resp.StatusCode())
	}
	if payload.Bitcoin.USD <= 0 {
		return 0, fmt.Errorf("coingecko: missing bitcoin price in response")
	}
	return payload.Bitcoin.USD, nil
}
