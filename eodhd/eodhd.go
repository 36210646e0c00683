// Package eodhd reads end-of-day prices and splits from eodhd.com.
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://eodhd.com/api"
	// EnvToken is the environment variable conventionally holding the API token.
	EnvToken = "EODHD_API_KEY"
)

// Client is an EODHD API client. HTTP is typically a cache.NewClient, the
// API quota being daily.
type Client struct {
	HTTP    *http.Client
	Token   string
	BaseURL string
	logger  *zap.Logger
}

func New(token string, client *http.Client, logger *zap.Logger) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{HTTP: client, Token: token, BaseURL: DefaultBaseURL, logger: logger}
}

// get queries an endpoint over rng. The caller must close the body.
func (c *Client) get(ctx context.Context, endpoint, ticker string, rng date.Range) (io.ReadCloser, error) {
	if c.Token == "" {
		return nil, fmt.Errorf("%w: missing EODHD API token", analytics.ErrInvalidInput)
	}
	q := url.Values{}
	q.Set("fmt", "json")
	q.Set("api_token", c.Token)
	if !rng.From.IsZero() {
		q.Set("from", rng.From.String())
	}
	q.Set("to", rng.To.String())
	addr := fmt.Sprintf("%s/%s/%s?%s", strings.TrimSuffix(c.BaseURL, "/"), endpoint, url.PathEscape(ticker), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	c.logger.Debug("eodhd", zap.String("endpoint", endpoint), zap.String("ticker", ticker), zap.Stringer("range", rng))
	return resp.Body, nil
}

// Prices returns the daily prices of ticker (like "AAPL.US") within rng,
// recorded under symbol. Closes are split and dividend adjusted.
func (c *Client) Prices(ctx context.Context, ticker, symbol string, rng date.Range) ([]analytics.PricePoint, error) {
	body, err := c.get(ctx, "eod", ticker, rng)
	if err != nil {
		return nil, fmt.Errorf("could not fetch prices of %q: %w", ticker, err)
	}
	defer body.Close()
	return store.ImportPrices(body, symbol, store.EODHD)
}

// Split is a stock split: a holder of 1 share owns Ratio shares after Date.
type Split struct {
	Date  date.Date          `json:"date"`
	Ratio analytics.Quantity `json:"ratio"`
}

// Splits returns the splits of ticker within rng.
func (c *Client) Splits(ctx context.Context, ticker string, rng date.Range) ([]Split, error) {
	body, err := c.get(ctx, "splits", ticker, rng)
	if err != nil {
		return nil, fmt.Errorf("could not fetch splits of %q: %w", ticker, err)
	}
	defer body.Close()

	var content []struct {
		Date  date.Date `json:"date"`
		Split string    `json:"split"` // like "4.000000/1.000000"
	}
	if err := json.NewDecoder(body).Decode(&content); err != nil {
		return nil, fmt.Errorf("could not decode splits of %q: %w", ticker, err)
	}
	splits := make([]Split, 0, len(content))
	for _, s := range content {
		ratio, err := parseRatio(s.Split)
		if err != nil {
			return nil, fmt.Errorf("split of %q on %v: %w", ticker, s.Date, err)
		}
		splits = append(splits, Split{Date: s.Date, Ratio: ratio})
	}
	return splits, nil
}

func parseRatio(s string) (analytics.Quantity, error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return analytics.Quantity{}, fmt.Errorf("%w: invalid split format %q", analytics.ErrInvalidInput, s)
	}
	n, err := decimal.NewFromString(strings.TrimSpace(num))
	if err != nil {
		return analytics.Quantity{}, fmt.Errorf("invalid numerator in split %q: %w", s, err)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(den))
	if err != nil {
		return analytics.Quantity{}, fmt.Errorf("invalid denominator in split %q: %w", s, err)
	}
	if !n.IsPositive() || !d.IsPositive() {
		return analytics.Quantity{}, fmt.Errorf("%w: non positive split %q", analytics.ErrInvalidInput, s)
	}
	return analytics.Q(n).Div(analytics.Q(d)), nil
}

// SplitEntries turns splits into ledger entries of a holding.
func SplitEntries(holdingID string, splits []Split) []analytics.Entry {
	entries := make([]analytics.Entry, 0, len(splits))
	for _, s := range splits {
		entries = append(entries, analytics.Entry{
			HoldingID: holdingID,
			Type:      analytics.Split,
			Date:      s.Date,
			Ratio:     s.Ratio,
			Memo:      "eodhd split",
		})
	}
	return entries
}
