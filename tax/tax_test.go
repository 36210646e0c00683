package tax

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/store"
)

var asOf = date.New(2025, 6, 30)

func usd(v float64) analytics.Money { return analytics.M(v, "USD") }

// holding returns a holding of 10 shares with the given gain.
func holding(id, symbol string, gain float64, purchase date.Date) analytics.Holding {
	return analytics.Holding{
		ID:           id,
		AccountID:    "acc",
		Symbol:       symbol,
		Quantity:     analytics.Q(10),
		AverageCost:  usd(100),
		CurrentPrice: usd(100 + gain/10),
		PurchaseDate: purchase,
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		days int
		want Term
	}{
		{364, ShortTerm},
		{365, LongTerm},
		{366, LongTerm},
		{0, ShortTerm},
	}
	for _, tc := range testCases {
		if got := Classify(asOf.Add(-tc.days), asOf); got != tc.want {
			t.Errorf("Classify(%d days ago) = %v, want %v", tc.days, got, tc.want)
		}
	}
}

func TestPurchaseDate(t *testing.T) {
	d := date.New(2024, 1, 10)
	entries := []analytics.Entry{
		{Type: analytics.Dividend, Date: d.Add(-30)},
		{Type: analytics.Buy, Date: d.Add(5)},
		{Type: analytics.InitialBalance, Date: d},
	}
	testCases := []struct {
		name    string
		h       analytics.Holding
		entries []analytics.Entry
		want    date.Date
	}{
		{"explicit date wins", analytics.Holding{PurchaseDate: d.Add(100), CreatedAt: d.Add(-100)}, entries, d.Add(100)},
		{"earliest qualifying entry", analytics.Holding{CreatedAt: d.Add(-100)}, entries, d},
		{"creation date as last resort", analytics.Holding{CreatedAt: d.Add(-100)}, entries[:1], d.Add(-100)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PurchaseDate(tc.h, tc.entries); got != tc.want {
				t.Errorf("PurchaseDate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAnalyze_Harvesting(t *testing.T) {
	old := asOf.Add(-400)
	holdings := []analytics.Holding{
		holding("a", "AAPL", -499, old),
		holding("b", "SPY", -500, old),
		holding("c", "ACME", -501, asOf.Add(-10)),
		holding("d", "VOO", -1000, old),
	}
	res := Analyze(holdings, nil, asOf, DefaultOptions())
	if len(res.HarvestingOpportunities) != 2 {
		t.Fatalf("HarvestingOpportunities = %+v, want ACME and VOO", res.HarvestingOpportunities)
	}
	acme, voo := res.HarvestingOpportunities[0], res.HarvestingOpportunities[1]
	if acme.Symbol != "ACME" || acme.Term != ShortTerm || math.Abs(acme.TaxSavings-501*0.24) > 1e-9 || acme.Replacement != "VTI" {
		t.Errorf("ACME opportunity = %+v", acme)
	}
	if voo.Symbol != "VOO" || voo.Term != LongTerm || math.Abs(voo.TaxSavings-150) > 1e-9 || voo.Replacement == "VOO" {
		t.Errorf("VOO opportunity = %+v", voo)
	}
	for _, o := range res.HarvestingOpportunities {
		if o.Loss >= -500 {
			t.Errorf("opportunity %s with loss %v, want < -500", o.Symbol, o.Loss)
		}
	}
}

func TestAnalyze_Liability(t *testing.T) {
	holdings := []analytics.Holding{
		holding("s1", "AAA", 1000, asOf.Add(-30)),
		holding("s2", "BBB", -200, asOf.Add(-30)),
		holding("l1", "CCC", 2000, asOf.Add(-800)),
	}
	res := Analyze(holdings, nil, asOf, DefaultOptions())
	g := res.UnrealizedGains
	if math.Abs(g.ShortTerm-800) > 1e-9 || math.Abs(g.LongTerm-2000) > 1e-9 || math.Abs(g.Total-2800) > 1e-9 {
		t.Errorf("UnrealizedGains = %+v, want 800/2000/2800", g)
	}
	l := res.EstimatedTaxLiability
	if want := 800*0.24 + 2000*0.15; math.Abs(l.Total-want) > 1e-9 {
		t.Errorf("Total = %v, want %v", l.Total, want)
	}
	if want := analytics.Percent((800*0.24 + 2000*0.15) / 2800 * 100); !l.EffectiveRate.Equal(want) {
		t.Errorf("EffectiveRate = %v, want %v", l.EffectiveRate, want)
	}

	t.Run("losses are not taxed", func(t *testing.T) {
		res := Analyze([]analytics.Holding{holding("x", "X", -300, asOf.Add(-30))}, nil, asOf, DefaultOptions())
		if l := res.EstimatedTaxLiability; l.Total != 0 || l.EffectiveRate != 0 {
			t.Errorf("EstimatedTaxLiability = %+v, want zero", l)
		}
	})
}

func TestAnalyzer(t *testing.T) {
	m := store.NewMemory()
	h := holding("h", "MSFT", -800, date.Date{})
	m.AddHolding(h)
	m.AddEntries(analytics.Entry{HoldingID: "h", Type: analytics.Buy, Date: asOf.Add(-365), Quantity: analytics.Q(10), Price: usd(100)})

	a := NewAnalyzer(m, DefaultOptions(), nil)
	res, err := a.Analyze(context.Background(), "acc", asOf)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.Account != "acc" || len(res.Holdings) != 1 {
		t.Fatalf("Analyze() = %+v", res)
	}
	if lot := res.Holdings[0]; lot.Term != LongTerm || lot.HoldingDays != 365 {
		t.Errorf("lot = %+v, want long-term after 365 days", lot)
	}
	if len(res.HarvestingOpportunities) != 1 || res.HarvestingOpportunities[0].Replacement != "XLK" {
		t.Errorf("HarvestingOpportunities = %+v", res.HarvestingOpportunities)
	}

	if _, err := a.Analyze(context.Background(), "nope", asOf); !errors.Is(err, analytics.ErrNotFound) {
		t.Errorf("Analyze(unknown) error = %v, want ErrNotFound", err)
	}
}
