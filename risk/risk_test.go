package risk

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/cache"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/performance"
	"github.com/etnz/analytics/reconstruct"
	"github.com/etnz/analytics/store"
)

var d0 = date.New(2025, 1, 1)

func returns(values ...float64) []performance.Return {
	res := make([]performance.Return, len(values))
	for i, v := range values {
		res[i] = performance.Return{Date: d0.Add(7 * (i + 1)), Value: v}
	}
	return res
}

func series(values ...float64) reconstruct.Series {
	s := make(reconstruct.Series, len(values))
	for i, v := range values {
		s[i] = reconstruct.Point{Date: d0.Add(7 * i), Value: v}
	}
	return s
}

func TestBeta(t *testing.T) {
	market := returns(0.01, -0.02, 0.03, 0.01)
	doubled := returns(0.02, -0.04, 0.06, 0.02)
	if got := Beta(doubled, market); math.Abs(got-2) > 1e-9 {
		t.Errorf("Beta() = %v, want 2", got)
	}
	if got := Beta(returns(0.01), returns(0.02)); got != 1 {
		t.Errorf("Beta(one pair) = %v, want 1", got)
	}
	if got := Beta(doubled, returns(0.01, 0.01, 0.01, 0.01)); got != 1 {
		t.Errorf("Beta(flat market) = %v, want 1", got)
	}
	// only returns of the same dates are paired.
	shifted := []performance.Return{{Date: d0.Add(1000), Value: 0.5}}
	if got := Beta(doubled, append(shifted, market[0])); got != 1 {
		t.Errorf("Beta(one paired date) = %v, want 1", got)
	}
}

func TestCorrelation(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	testCases := []struct {
		name string
		b    []float64
		want float64
	}{
		{"identical", []float64{2, 4, 6, 8}, 1},
		{"opposite", []float64{4, 3, 2, 1}, -1},
		{"flat", []float64{1, 1, 1, 1}, 0},
		{"length mismatch", []float64{1, 2, 3}, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Correlation(a, tc.b); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Correlation() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMaxDrawdown(t *testing.T) {
	s := series(100, 120, 90, 110, 130, 104)
	got, history := MaxDrawdown(s)
	if want := -25.0; math.Abs(got.Percent-want) > 1e-9 {
		t.Errorf("MaxDrawdown() = %v, want %v", got.Percent, want)
	}
	if got.Peak != s[1].Date || got.Trough != s[2].Date {
		t.Errorf("MaxDrawdown() peak/trough = %v/%v, want %v/%v", got.Peak, got.Trough, s[1].Date, s[2].Date)
	}
	if len(history) != len(s) {
		t.Fatalf("history = %v, want %d points", history, len(s))
	}
	for _, p := range history {
		if p.Value > 0 {
			t.Errorf("drawdown on %v = %v, want <= 0", p.Date, p.Value)
		}
	}

	t.Run("rising series", func(t *testing.T) {
		got, _ := MaxDrawdown(series(1, 2, 3))
		if got.Percent != 0 || got.Peak.After(got.Trough) {
			t.Errorf("MaxDrawdown() = %+v, want 0 and peak <= trough", got)
		}
	})
}

func TestRollingVolatility(t *testing.T) {
	values := make([]float64, 13)
	for i := range values {
		values[i] = 100 + float64(i%2)*5
	}
	s := series(values...) // 12 weeks
	got := RollingVolatility(s, 30, 7)
	// windows end on day 30, 37, ... up to day 84.
	if len(got) != 8 {
		t.Fatalf("RollingVolatility() = %v, want 8 windows", got)
	}
	if got[0].Date != d0.Add(30) {
		t.Errorf("first window ends %v, want %v", got[0].Date, d0.Add(30))
	}
	for _, p := range got {
		if p.Value <= 0 {
			t.Errorf("volatility on %v = %v, want > 0", p.Date, p.Value)
		}
	}

	short := RollingVolatility(series(100, 110, 100), 30, 7)
	if len(short) != 1 || short[0].Date != d0.Add(14) {
		t.Errorf("RollingVolatility(short) = %v, want a single window ending %v", short, d0.Add(14))
	}
}

type countingPrices struct {
	analytics.PriceReader
	calls atomic.Int32
}

func (c *countingPrices) PriceAtOrBefore(ctx context.Context, symbol string, on date.Date) (analytics.PricePoint, bool, error) {
	c.calls.Add(1)
	return c.PriceReader.PriceAtOrBefore(ctx, symbol, on)
}

func dataset() *store.Memory {
	m := store.NewMemory()
	m.AddHolding(analytics.Holding{ID: "a", AccountID: "acc", Symbol: "AAA", Quantity: analytics.Q(10), CurrentPrice: analytics.M(10, "USD")})
	m.AddHolding(analytics.Holding{ID: "b", AccountID: "acc", Symbol: "BBB", Quantity: analytics.Q(10), CurrentPrice: analytics.M(20, "USD")})
	m.AddEntries(
		analytics.Entry{HoldingID: "a", Type: analytics.InitialBalance, Date: d0, Quantity: analytics.Q(10)},
		analytics.Entry{HoldingID: "b", Type: analytics.InitialBalance, Date: d0, Quantity: analytics.Q(10)},
	)
	for i := 0; i <= 120; i++ {
		wave := float64((i / 7) % 3)
		m.AddPrices(
			analytics.PricePoint{Symbol: "SPY", Date: d0.Add(i), Close: 400 + 10*wave},
			analytics.PricePoint{Symbol: "AAA", Date: d0.Add(i), Close: 10 + wave},
			analytics.PricePoint{Symbol: "BBB", Date: d0.Add(i), Close: 20 - wave},
		)
	}
	return m
}

func TestBenchmark_Cache(t *testing.T) {
	prices := &countingPrices{PriceReader: dataset()}
	b := NewBenchmark("", prices, cache.NewMemoryStore(10), time.Hour, nil)
	dates := date.Range{From: d0, To: d0.Add(60)}.Weekly()

	first, err := b.Series(context.Background(), dates)
	if err != nil {
		t.Fatalf("Series() error = %v", err)
	}
	calls := prices.calls.Load()
	second, err := b.Series(context.Background(), dates)
	if err != nil {
		t.Fatalf("Series() error = %v", err)
	}
	if prices.calls.Load() != calls {
		t.Errorf("second Series() read prices again, want a cache hit")
	}
	if len(first) != len(second) || first.Last() != second.Last() {
		t.Errorf("cached Series() = %v, want %v", second, first)
	}
}

func TestEngine_Compute(t *testing.T) {
	src := dataset()
	rec := reconstruct.New(src, nil)
	e := NewEngine(rec, NewBenchmark("SPY", src, nil, 0, nil), nil)
	rng := date.Range{From: d0, To: d0.Add(120)}

	res, err := e.Compute(context.Background(), "acc", rng)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if res.MaxDrawdown.Percent > 0 || res.MaxDrawdown.Peak.After(res.MaxDrawdown.Trough) {
		t.Errorf("MaxDrawdown = %+v, want <= 0 and peak <= trough", res.MaxDrawdown)
	}
	// AAA, BBB, then each against SPY.
	if len(res.Correlations) != 3 {
		t.Fatalf("Correlations = %v, want 3 pairs", res.Correlations)
	}
	if p := res.Correlations[0]; p.A != "BBB" || p.B != "AAA" || p.Value >= 0 {
		t.Errorf("Correlations[0] = %+v, want BBB/AAA negatively correlated", p)
	}
	if len(res.VolatilityHistory) == 0 || len(res.DrawdownHistory) != len(rec.Dates(rng)) {
		t.Errorf("histories: %d volatility, %d drawdown points", len(res.VolatilityHistory), len(res.DrawdownHistory))
	}

	e.TopHoldings = 1
	res, err = e.Compute(context.Background(), "acc", rng)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if len(res.Correlations) != 1 || res.Correlations[0].B != "SPY" {
		t.Errorf("Correlations with one holding = %v, want only the benchmark pair", res.Correlations)
	}
}
