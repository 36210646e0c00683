package performance

import (
	"math"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/reconstruct"
)

// Newton-Raphson parameters of IRR.
const (
	irrGuess         = 0.10
	irrMaxIterations = 100
	irrTolerance     = 1e-4
	irrMinRate       = -0.99
	irrMaxRate       = 10.0
)

// CashFlow is a dated amount from the investor point of view: money put in
// is negative, money taken out (or still held at the end) is positive.
type CashFlow struct {
	Date   date.Date `json:"date"`
	Amount float64   `json:"amount"`
}

// MoneyWeightedFlows builds the cash flows of an investment over a series:
// the initial value invested at the start, every external flow of entries
// dated within (start, end] and the final value withdrawn at the end.
// Zero flows are dropped.
func MoneyWeightedFlows(series reconstruct.Series, entries []analytics.Entry) []CashFlow {
	if len(series) == 0 {
		return nil
	}
	first, last := series.First(), series.Last()
	var flows []CashFlow
	add := func(on date.Date, amount float64) {
		if amount != 0 {
			flows = append(flows, CashFlow{Date: on, Amount: amount})
		}
	}
	add(first.Date, -first.Value)
	for _, e := range entries {
		if e.Date.After(first.Date) && !e.Date.After(last.Date) {
			add(e.Date, -analytics.CashFlowAmount(e))
		}
	}
	add(last.Date, last.Value)
	return flows
}

// IRR solves Σ amount / (1+r)^years = 0 with Newton-Raphson and returns r
// in percent. Years are counted in 365 days from the first flow.
func IRR(flows []CashFlow) analytics.Outcome {
	if len(flows) < 2 {
		return analytics.Invalidf("need at least two cash flows, got %d", len(flows))
	}
	var in, out bool
	for _, f := range flows {
		in = in || f.Amount < 0
		out = out || f.Amount > 0
	}
	if !in || !out {
		return analytics.Invalidf("cash flows must change sign")
	}

	t0 := flows[0].Date
	years := make([]float64, len(flows))
	for i, f := range flows {
		years[i] = float64(f.Date.Sub(t0)) / 365
	}

	r := irrGuess
	for i := 0; i < irrMaxIterations; i++ {
		var npv, dnpv float64
		for j, f := range flows {
			t := years[j]
			npv += f.Amount / math.Pow(1+r, t)
			dnpv -= t * f.Amount / math.Pow(1+r, t+1)
		}
		if math.Abs(npv) < irrTolerance {
			return analytics.Ok(r * 100)
		}
		if dnpv == 0 {
			return analytics.Diverged("zero derivative at rate %.4f", r)
		}
		next := r - npv/dnpv
		if next < irrMinRate || next > irrMaxRate || math.IsNaN(next) {
			return analytics.Diverged("rate %.4f out of [%.2f, %.2f]", next, irrMinRate, irrMaxRate)
		}
		if math.Abs(next-r) < irrTolerance {
			return analytics.Ok(next * 100)
		}
		r = next
	}
	return analytics.Diverged("no convergence after %d iterations", irrMaxIterations)
}
