package payoff

import (
	"math"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
)

// Projection is the payoff of a single debt at a fixed monthly payment.
type Projection struct {
	Payment       float64          `json:"payment"`
	Months        int              `json:"months"`
	TotalInterest float64          `json:"total_interest"`
	TotalCost     float64          `json:"total_cost"`
	PayoffDate    date.Date        `json:"payoff_date"`
	Status        analytics.Status `json:"status"`
	Timeline      []Month          `json:"timeline,omitempty"`
}

// never is the sentinel of a debt that never pays off.
func never(payment float64) Projection {
	return Projection{
		Payment:       payment,
		Months:        NeverMonths,
		TotalInterest: math.MaxFloat64,
		TotalCost:     math.MaxFloat64,
		PayoffDate:    date.Never,
		Status:        analytics.NonConvergent,
	}
}

// PaidOff reports whether the debt is paid within MaxMonths.
func (p Projection) PaidOff() bool { return p.Status == analytics.Converged }

// Project pays balance at payment every month. A payment that does not
// exceed the interest of the month, or a payoff beyond MaxMonths, yields the
// never-pays-off sentinel.
func Project(balance, annualRatePercent, payment float64, start date.Date) Projection {
	rate := annualRatePercent / 100 / 12
	p := Projection{Payment: payment, Status: analytics.Converged, PayoffDate: start}
	for month := 1; balance > Epsilon; month++ {
		if month > MaxMonths {
			return never(payment)
		}
		interest := balance * rate
		if payment <= interest {
			return never(payment)
		}
		pay := math.Min(payment, balance+interest)
		balance += interest - pay
		if balance <= Epsilon {
			pay += balance
			balance = 0
		}
		p.Months = month
		p.TotalInterest += interest
		p.TotalCost += pay
		p.PayoffDate = start.AddMonth(month)
		p.Timeline = append(p.Timeline, Month{Number: month, Date: p.PayoffDate, Interest: interest, Payment: pay, Balance: balance})
	}
	return p
}
