package amortization

import (
	"fmt"
	"math"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/payoff"
)

// Summary is the progress of an amortizing debt at a date.
type Summary struct {
	DebtID          string            `json:"debt"`
	AsOf            date.Date         `json:"as_of"`
	Payment         float64           `json:"payment"`
	MonthsElapsed   int               `json:"months_elapsed"`
	MonthsRemaining int               `json:"months_remaining"`
	PercentPaidOff  analytics.Percent `json:"percent_paid_off"`
	PrincipalPaid   float64           `json:"principal_paid"`
	InterestPaid    float64           `json:"interest_paid"`
	PayoffDate      date.Date         `json:"payoff_date"`
	Status          analytics.Status  `json:"status"`
}

// Summarize measures how much of a debt has been paid off. It needs the
// original amount, the term and the start date of the debt.
//
// A balance above the original amount (negative amortization) counts as 0%
// paid off and the shortfall is added to the interest paid so far.
func Summarize(d analytics.Debt, asOf date.Date) (Summary, error) {
	if err := d.Validate(); err != nil {
		return Summary{}, err
	}
	if d.OriginalAmount <= 0 || d.TermMonths <= 0 || d.StartDate.IsZero() {
		return Summary{}, fmt.Errorf("debt %q needs an original amount, a term and a start date: %w", d.ID, analytics.ErrInvalidInput)
	}

	s := Summary{DebtID: d.ID, AsOf: asOf, Payment: d.MinimumPayment}
	if s.Payment == 0 {
		s.Payment = Payment(d.OriginalAmount, d.AnnualRatePercent, d.TermMonths)
	}
	s.MonthsElapsed = min(max(asOf.MonthsSince(d.StartDate), 0), d.TermMonths)
	totalPaid := s.Payment * float64(s.MonthsElapsed)

	s.PrincipalPaid = d.OriginalAmount - d.Balance
	if s.PrincipalPaid < 0 {
		shortfall := -s.PrincipalPaid
		s.PrincipalPaid = 0
		s.InterestPaid = totalPaid + shortfall
	} else {
		s.InterestPaid = math.Max(totalPaid-s.PrincipalPaid, 0)
	}
	s.PercentPaidOff = analytics.Percent(s.PrincipalPaid / d.OriginalAmount * 100)

	p := payoff.Project(d.Balance, d.AnnualRatePercent, s.Payment, asOf)
	s.MonthsRemaining, s.PayoffDate, s.Status = p.Months, p.PayoffDate, p.Status
	return s, nil
}
