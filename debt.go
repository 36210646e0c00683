package analytics

import (
	"errors"
	"fmt"

	"github.com/etnz/analytics/date"
)

// Debt is a liability with a fixed annual rate and a minimum monthly payment.
//
// OriginalAmount, TermMonths and StartDate are optional and only used to
// summarize the progress of an amortizing loan.
type Debt struct {
	ID                string    `json:"id"`
	Name              string    `json:"name,omitempty"`
	Balance           float64   `json:"balance"`
	AnnualRatePercent float64   `json:"annual_rate"`
	MinimumPayment    float64   `json:"minimum_payment"`
	OriginalAmount    float64   `json:"original_amount,omitempty"`
	TermMonths        int       `json:"term_months,omitempty"`
	StartDate         date.Date `json:"start_date,omitzero"`
}

// MonthlyRate returns the monthly interest rate as a ratio.
func (d Debt) MonthlyRate() float64 { return d.AnnualRatePercent / 100 / 12 }

// MonthlyInterest returns the interest accruing on the current balance for one month.
func (d Debt) MonthlyInterest() float64 { return d.Balance * d.MonthlyRate() }

// Validate reports every invalid field of the debt.
func (d Debt) Validate() error {
	var errs []error
	if d.Balance < 0 {
		errs = append(errs, fmt.Errorf("debt %q: negative balance %v: %w", d.ID, d.Balance, ErrInvalidInput))
	}
	if d.AnnualRatePercent < 0 {
		errs = append(errs, fmt.Errorf("debt %q: negative rate %v: %w", d.ID, d.AnnualRatePercent, ErrInvalidInput))
	}
	if d.MinimumPayment < 0 {
		errs = append(errs, fmt.Errorf("debt %q: negative minimum payment %v: %w", d.ID, d.MinimumPayment, ErrInvalidInput))
	}
	if d.TermMonths < 0 {
		errs = append(errs, fmt.Errorf("debt %q: negative term %d: %w", d.ID, d.TermMonths, ErrInvalidInput))
	}
	return errors.Join(errs...)
}

// WeightedAverageRate returns Σ(balance × rate) / Σ balance, in percent.
func WeightedAverageRate(debts []Debt) float64 {
	var total, weighted float64
	for _, d := range debts {
		total += d.Balance
		weighted += d.Balance * d.AnnualRatePercent
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}
