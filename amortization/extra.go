package amortization

import (
	"fmt"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/payoff"
)

// Comparison is the effect of paying extra every month on a debt.
// Savings are only reported when both projections pay off.
type Comparison struct {
	DebtID        string            `json:"debt"`
	Extra         float64           `json:"extra"`
	Minimum       payoff.Projection `json:"minimum"`
	Accelerated   payoff.Projection `json:"accelerated"`
	MonthsSaved   int               `json:"months_saved"`
	InterestSaved float64           `json:"interest_saved"`
	CostSaved     float64           `json:"cost_saved"`
}

// CompareExtraPayment projects a debt at its minimum payment and at the
// minimum plus extra.
func CompareExtraPayment(d analytics.Debt, extra float64, start date.Date) (Comparison, error) {
	if err := d.Validate(); err != nil {
		return Comparison{}, err
	}
	if extra < 0 {
		return Comparison{}, fmt.Errorf("extra payment %v: %w", extra, analytics.ErrInvalidInput)
	}
	c := Comparison{
		DebtID:      d.ID,
		Extra:       extra,
		Minimum:     payoff.Project(d.Balance, d.AnnualRatePercent, d.MinimumPayment, start),
		Accelerated: payoff.Project(d.Balance, d.AnnualRatePercent, d.MinimumPayment+extra, start),
	}
	if c.Minimum.PaidOff() && c.Accelerated.PaidOff() {
		c.MonthsSaved = c.Minimum.Months - c.Accelerated.Months
		c.InterestSaved = c.Minimum.TotalInterest - c.Accelerated.TotalInterest
		c.CostSaved = c.Minimum.TotalCost - c.Accelerated.TotalCost
	}
	return c, nil
}
