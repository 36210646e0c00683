package eodhd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/cache"
	"github.com/etnz/analytics/date"
)

// newServer serves canned EODHD responses and counts the requests it receives.
func newServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/eod/SPY.US", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("api_token") != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[
			{"date":"2025-01-02","open":580,"high":590,"low":575,"close":585,"adjusted_close":584.5,"volume":1000},
			{"date":"2025-01-03","open":585,"high":595,"low":580,"close":592,"adjusted_close":591.5,"volume":1200}
		]`))
	})
	mux.HandleFunc("/splits/AAPL.US", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[{"date":"2020-08-31","split":"4.000000/1.000000"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPrices(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	c := New("secret", cache.NewClient(cache.NewMemoryStore(0), time.Hour, nil), nil)
	c.BaseURL = srv.URL
	rng := date.Range{From: date.New(2025, 1, 1), To: date.New(2025, 1, 3)}

	for range 2 {
		points, err := c.Prices(context.Background(), "SPY.US", "SPY", rng)
		if err != nil {
			t.Fatalf("Prices() error = %v", err)
		}
		if len(points) != 2 {
			t.Fatalf("Prices() returned %d points, want 2", len(points))
		}
		if p := points[1]; p.Symbol != "SPY" || p.Date != date.New(2025, 1, 3) || p.Close != 591.5 {
			t.Errorf("Prices()[1] = %+v", p)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1 (second call cached)", got)
	}
}

func TestPrices_Errors(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	c := New("wrong", srv.Client(), nil)
	c.BaseURL = srv.URL
	rng := date.Range{To: date.New(2025, 1, 3)}

	if _, err := c.Prices(context.Background(), "SPY.US", "SPY", rng); err == nil {
		t.Error("Prices() with a wrong token: nil error")
	}
	c.Token = ""
	if _, err := c.Prices(context.Background(), "SPY.US", "SPY", rng); !errors.Is(err, analytics.ErrInvalidInput) {
		t.Errorf("Prices() without token error = %v, want ErrInvalidInput", err)
	}
}

func TestSplits(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	c := New("secret", srv.Client(), nil)
	c.BaseURL = srv.URL

	splits, err := c.Splits(context.Background(), "AAPL.US", date.Range{To: date.New(2025, 1, 1)})
	if err != nil {
		t.Fatalf("Splits() error = %v", err)
	}
	if len(splits) != 1 || !splits[0].Ratio.Equal(analytics.Q(4)) || splits[0].Date != date.New(2020, 8, 31) {
		t.Fatalf("Splits() = %+v, want a 4:1 split on 2020-08-31", splits)
	}

	entries := SplitEntries("h1", splits)
	if len(entries) != 1 || entries[0].Type != analytics.Split || entries[0].HoldingID != "h1" {
		t.Errorf("SplitEntries() = %+v", entries)
	}
}

func TestParseRatio(t *testing.T) {
	testCases := []struct {
		in      string
		want    analytics.Quantity
		wantErr bool
	}{
		{"4.000000/1.000000", analytics.Q(4), false},
		{"1/10", analytics.Q(0.1), false},
		{"3:2", analytics.Quantity{}, true},
		{"0/1", analytics.Quantity{}, true},
	}
	for _, tc := range testCases {
		got, err := parseRatio(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseRatio(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && !got.Equal(tc.want) {
			t.Errorf("parseRatio(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
