package reconstruct

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/store"
)

func usd(v float64) analytics.Money { return analytics.M(v, "USD") }

func buy(h string, on date.Date, q, price float64) analytics.Entry {
	return analytics.Entry{HoldingID: h, Type: analytics.Buy, Date: on, Quantity: analytics.Q(q), Price: usd(price)}
}

func TestFold(t *testing.T) {
	d := date.New(2025, 1, 1)
	entries := []analytics.Entry{
		buy("h", d, 10, 10),
		{Type: analytics.Sell, Date: d.Add(1), Quantity: analytics.Q(-4)},
		{Type: analytics.Dividend, Date: d.Add(2), Quantity: analytics.Q(1), Reinvested: true},
		{Type: analytics.Dividend, Date: d.Add(3), Quantity: analytics.Q(5)},
		{Type: analytics.Fee, Date: d.Add(3), Quantity: analytics.Q(3)},
		{Type: analytics.Split, Date: d.Add(4), Ratio: analytics.Q(2)},
		buy("h", d.Add(10), 100, 10),
	}
	testCases := []struct {
		on   date.Date
		want float64
	}{
		{d.Add(-1), 0},
		{d, 10},
		{d.Add(1), 6},
		{d.Add(3), 7},
		{d.Add(4), 14},
		{d.Add(9), 14},
		{d.Add(10), 114},
	}
	for _, tc := range testCases {
		if got := Fold(entries, tc.on); got.Float() != tc.want {
			t.Errorf("Fold(%v) = %v, want %v", tc.on, got, tc.want)
		}
	}
}

func TestComplete(t *testing.T) {
	d := date.New(2025, 1, 1)
	h := analytics.Holding{ID: "h", Quantity: analytics.Q(100)}
	testCases := []struct {
		name    string
		h       analytics.Holding
		entries []analytics.Entry
		want    bool
	}{
		{"initial balance always trusted", h, []analytics.Entry{{Type: analytics.InitialBalance, Date: d, Quantity: analytics.Q(1)}}, true},
		{"exact", h, []analytics.Entry{buy("h", d, 100, 1)}, true},
		{"within 5%", h, []analytics.Entry{buy("h", d, 96, 1)}, true},
		{"beyond 5%", h, []analytics.Entry{buy("h", d, 94, 1)}, false},
		{"empty ledger", h, nil, false},
		{"closed position", analytics.Holding{ID: "h"}, []analytics.Entry{buy("h", d, 5, 1), {Type: analytics.Sell, Date: d, Quantity: analytics.Q(5)}}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Complete(tc.h, tc.entries, DefaultTolerance); got != tc.want {
				t.Errorf("Complete() = %v, want %v", got, tc.want)
			}
		})
	}
}

// dataset: one trusted holding with prices, one trusted holding without
// prices, one holding with an incomplete ledger.
func dataset() *store.Memory {
	m := store.NewMemory()
	start := date.New(2025, 1, 1)
	m.AddHolding(analytics.Holding{ID: "aapl", AccountID: "acc", Symbol: "AAPL", Quantity: analytics.Q(10), CurrentPrice: usd(130)})
	m.AddHolding(analytics.Holding{ID: "priv", AccountID: "acc", Symbol: "PRIV", Quantity: analytics.Q(1), CurrentPrice: usd(50)})
	m.AddHolding(analytics.Holding{ID: "ghost", AccountID: "acc", Symbol: "GHOST", Quantity: analytics.Q(1000), CurrentPrice: usd(1)})
	m.AddEntries(
		buy("aapl", start, 10, 100),
		analytics.Entry{HoldingID: "priv", Type: analytics.InitialBalance, Date: start, Quantity: analytics.Q(1), Price: usd(50)},
		buy("ghost", start, 1, 1),
		analytics.Entry{AccountID: "acc", Type: analytics.Deposit, Date: start.Add(10), Amount: usd(500)},
	)
	for i := 0; i < 30; i++ {
		m.AddPrices(analytics.PricePoint{Symbol: "AAPL", Date: start.Add(i), Close: 100 + float64(i)})
	}
	return m
}

func TestReconstructor_QuantityAtDate(t *testing.T) {
	r := New(dataset(), nil)
	q, err := r.QuantityAtDate(context.Background(), "aapl", date.New(2025, 1, 5))
	if err != nil {
		t.Fatalf("QuantityAtDate() error = %v", err)
	}
	if q.Float() != 10 {
		t.Errorf("QuantityAtDate() = %v, want 10", q)
	}

	_, err = r.QuantityAtDate(context.Background(), "nope", date.New(2025, 1, 5))
	if !errors.Is(err, analytics.ErrNotFound) {
		t.Errorf("QuantityAtDate(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestReconstructor_NegativeQuantityIsClamped(t *testing.T) {
	m := store.NewMemory()
	m.AddHolding(analytics.Holding{ID: "h", AccountID: "acc", Symbol: "X"})
	d := date.New(2025, 1, 1)
	m.AddEntries(buy("h", d, 1, 1), analytics.Entry{HoldingID: "h", Type: analytics.Sell, Date: d, Quantity: analytics.Q(3)})

	q, err := New(m, nil).QuantityAtDate(context.Background(), "h", d)
	if err != nil {
		t.Fatalf("QuantityAtDate() error = %v", err)
	}
	if !q.IsZero() {
		t.Errorf("QuantityAtDate() = %v, want 0", q)
	}
}

func TestReconstructor_ValueAtDate(t *testing.T) {
	r := New(dataset(), nil)
	// 10 AAPL at 104, 1 PRIV at its current price, GHOST excluded.
	got, err := r.ValueAtDate(context.Background(), "acc", date.New(2025, 1, 5))
	if err != nil {
		t.Fatalf("ValueAtDate() error = %v", err)
	}
	if want := 10*104.0 + 50; math.Abs(got-want) > 1e-9 {
		t.Errorf("ValueAtDate() = %v, want %v", got, want)
	}

	s, err := r.Snapshot(context.Background(), "acc")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if !s.Excluded("ghost") || s.Excluded("aapl") {
		t.Errorf("Excluded(ghost) = %v, Excluded(aapl) = %v, want true, false", s.Excluded("ghost"), s.Excluded("aapl"))
	}
}

func TestReconstructor_Series(t *testing.T) {
	r := New(dataset(), nil)
	rng := date.Range{From: date.New(2025, 1, 1), To: date.New(2025, 1, 20)}
	series, err := r.Series(context.Background(), "acc", rng)
	if err != nil {
		t.Fatalf("Series() error = %v", err)
	}
	if len(series) != 4 {
		t.Fatalf("Series() = %v, want 4 weekly points", series)
	}
	if last := series.Last().Date; last != rng.To {
		t.Errorf("Series() last date = %v, want %v", last, rng.To)
	}
	// the deposit on the 11th belongs to the (8th, 15th] sub-period.
	if cf := series[2].CashFlow; cf != 500 {
		t.Errorf("Series()[2].CashFlow = %v, want 500", cf)
	}
	if cf := series[1].CashFlow; cf != 0 {
		t.Errorf("Series()[1].CashFlow = %v, want 0", cf)
	}
	if v, want := series[3].Value, 10*119.0+50; math.Abs(v-want) > 1e-9 {
		t.Errorf("Series()[3].Value = %v, want %v", v, want)
	}
}

func TestReconstructor_SeriesInvalid(t *testing.T) {
	r := New(dataset(), nil)
	_, err := r.Series(context.Background(), "acc", date.Range{From: date.New(2025, 2, 1), To: date.New(2025, 1, 1)})
	if !errors.Is(err, analytics.ErrInvalidInput) {
		t.Errorf("Series(empty range) error = %v, want ErrInvalidInput", err)
	}
}

func TestReconstructor_SeriesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New(dataset(), nil)
	_, err := r.Series(ctx, "acc", date.Range{From: date.New(2025, 1, 1), To: date.New(2025, 3, 1)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Series() error = %v, want context.Canceled", err)
	}
}
