// Package amortization generates loan amortization schedules and measures
// the progress and acceleration of amortizing debts.
package amortization

import (
	"errors"
	"fmt"
	"math"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
)

// halfCent is the residual balance swept into the last principal payment.
const halfCent = 0.005

// Payment returns the amortizing monthly payment of a loan:
// P·r(1+r)^n / ((1+r)^n - 1). It is principal/term without interest and 0
// without a term.
func Payment(principal, annualRatePercent float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	r := annualRatePercent / 100 / 12
	if r <= 0 {
		return principal / float64(termMonths)
	}
	f := math.Pow(1+r, float64(termMonths))
	return principal * r * f / (f - 1)
}

// Loan describes an amortizing loan. A zero Payment uses the amortizing payment.
type Loan struct {
	Principal         float64   `json:"principal"`
	AnnualRatePercent float64   `json:"annual_rate"`
	TermMonths        int       `json:"term_months"`
	Payment           float64   `json:"payment,omitempty"`
	Start             date.Date `json:"start"`
}

// Validate reports every invalid field of the loan.
func (l Loan) Validate() error {
	var errs []error
	if l.Principal <= 0 {
		errs = append(errs, fmt.Errorf("principal %v must be positive: %w", l.Principal, analytics.ErrInvalidInput))
	}
	if l.AnnualRatePercent < 0 {
		errs = append(errs, fmt.Errorf("rate %v must not be negative: %w", l.AnnualRatePercent, analytics.ErrInvalidInput))
	}
	if l.TermMonths <= 0 {
		errs = append(errs, fmt.Errorf("term %d must be positive: %w", l.TermMonths, analytics.ErrInvalidInput))
	}
	if l.Payment < 0 {
		errs = append(errs, fmt.Errorf("payment %v must not be negative: %w", l.Payment, analytics.ErrInvalidInput))
	}
	return errors.Join(errs...)
}

// Row is one payment of a schedule.
type Row struct {
	Number              int       `json:"number"`
	Date                date.Date `json:"date"`
	Payment             float64   `json:"payment"`
	Principal           float64   `json:"principal"`
	Interest            float64   `json:"interest"`
	Balance             float64   `json:"balance"`
	CumulativePrincipal float64   `json:"cumulative_principal"`
	CumulativeInterest  float64   `json:"cumulative_interest"`
}

// Schedule is the amortization of a loan. A NonConvergent schedule stopped
// early with a remaining balance.
type Schedule struct {
	Loan           Loan             `json:"loan"`
	Rows           []Row            `json:"rows"`
	TotalPayment   float64          `json:"total_payment"`
	TotalPrincipal float64          `json:"total_principal"`
	TotalInterest  float64          `json:"total_interest"`
	PayoffDate     date.Date        `json:"payoff_date"`
	Status         analytics.Status `json:"status"`
}

// Generate amortizes a loan month by month. When the payment does not
// exceed the interest of the month, the amortizing payment is used from then on;
// if even that cannot reduce the principal, the schedule stops and is
// flagged NonConvergent.
func Generate(loan Loan) (*Schedule, error) {
	if err := loan.Validate(); err != nil {
		return nil, err
	}
	r := loan.AnnualRatePercent / 100 / 12
	amortizing := Payment(loan.Principal, loan.AnnualRatePercent, loan.TermMonths)
	payment := loan.Payment
	if payment == 0 {
		payment = amortizing
	}

	s := &Schedule{Loan: loan, Status: analytics.Converged}
	balance := loan.Principal
	for n := 1; n <= loan.TermMonths && balance > 0; n++ {
		interest := balance * r
		if payment <= interest {
			payment = amortizing
		}
		principal := math.Min(payment-interest, balance)
		if principal <= 0 {
			s.Status = analytics.NonConvergent
			break
		}
		if balance-principal < halfCent {
			principal = balance
		}
		balance -= principal
		s.TotalPrincipal += principal
		s.TotalInterest += interest
		s.TotalPayment += principal + interest
		s.Rows = append(s.Rows, Row{
			Number:              n,
			Date:                loan.Start.AddMonth(n),
			Payment:             principal + interest,
			Principal:           principal,
			Interest:            interest,
			Balance:             balance,
			CumulativePrincipal: s.TotalPrincipal,
			CumulativeInterest:  s.TotalInterest,
		})
	}
	if balance > 0 {
		s.Status = analytics.NonConvergent
		s.PayoffDate = date.Never
		return s, nil
	}
	s.PayoffDate = s.Rows[len(s.Rows)-1].Date
	return s, nil
}
