// Package payoff simulates paying off debts month by month, comparing the
// avalanche, snowball and minimum-only strategies.
//
// A simulation never runs for more than MaxMonths. Plans that do not finish
// are reported with the NeverMonths and date.Never sentinels.
package payoff

import (
	"fmt"
	"math"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
)

const (
	// MaxMonths caps every simulation (50 years).
	MaxMonths = 600
	// Epsilon is the balance under which a debt is considered paid off.
	Epsilon = 0.01
	// NeverMonths is the month count of a plan that never pays off.
	NeverMonths = math.MaxInt
)

// account is the state of one debt during a simulation. It is never
// modified in place; step returns new accounts.
type account struct {
	id        string
	balance   float64
	rate      float64 // monthly
	minimum   float64
	paidMonth int // 0 while active
}

func (a account) active() bool { return a.paidMonth == 0 }

// Month is one month of a plan.
type Month struct {
	Number   int       `json:"month"`
	Date     date.Date `json:"date"`
	Interest float64   `json:"interest"`
	Payment  float64   `json:"payment"`
	Balance  float64   `json:"balance"`
}

// Plan is the outcome of one strategy.
type Plan struct {
	Strategy       Strategy  `json:"strategy"`
	PayoffDate     date.Date `json:"payoff_date"`
	TotalInterest  float64   `json:"total_interest"`
	TotalCost      float64   `json:"total_cost"`
	MonthsToPayoff int       `json:"months_to_payoff"`
	// FirstDebtPayoffMonth is 0 when a debt was already paid at the start.
	FirstDebtPayoffMonth int              `json:"first_debt_payoff_month"`
	PayoffOrder          []string         `json:"payoff_order"`
	Status               analytics.Status `json:"status"`
	Timeline             []Month          `json:"timeline,omitempty"`
}

// PaidOff reports whether every debt is paid within MaxMonths.
func (p Plan) PaidOff() bool { return p.Status == analytics.Converged }

// step simulates one month. Every active debt accrues interest and receives
// its minimum; the first active debt also receives the whole pool. Debts
// paid off this month are marked with month.
func step(accounts []account, pool float64, month int) (next []account, m Month) {
	next = make([]account, len(accounts))
	first := true
	for i, a := range accounts {
		if !a.active() {
			next[i] = a
			continue
		}
		interest := a.balance * a.rate
		a.balance += interest
		pay := math.Min(a.minimum, a.balance)
		if first {
			pay = math.Min(pay+pool, a.balance)
			first = false
		}
		a.balance -= pay
		if a.balance <= Epsilon {
			pay += a.balance
			a.balance = 0
			a.paidMonth = month
		}
		m.Interest += interest
		m.Payment += pay
		m.Balance += a.balance
		next[i] = a
	}
	m.Number = month
	return next, m
}

// Simulate runs one strategy over debts with a fixed extra monthly payment.
// Every strategy rolls the minimum of a paid-off debt into the pool;
// MinimumOnly only ignores extra.
func Simulate(debts []analytics.Debt, extra float64, strategy Strategy, start date.Date) (Plan, error) {
	if extra < 0 || math.IsNaN(extra) {
		return Plan{}, fmt.Errorf("extra payment %v: %w", extra, analytics.ErrInvalidInput)
	}
	for _, d := range debts {
		if err := d.Validate(); err != nil {
			return Plan{}, err
		}
	}

	plan := Plan{Strategy: strategy, Status: analytics.Converged}
	pool := extra
	if strategy == MinimumOnly {
		pool = 0
	}

	ordered := strategy.Order(debts)
	accounts := make([]account, len(ordered))
	active := 0
	firstPaid := false
	for i, d := range ordered {
		accounts[i] = account{id: d.ID, balance: d.Balance, rate: d.MonthlyRate(), minimum: d.MinimumPayment}
		if d.Balance <= Epsilon {
			// nothing to pay, its minimum is free from the start.
			accounts[i].balance, accounts[i].paidMonth = 0, -1
			plan.PayoffOrder = append(plan.PayoffOrder, d.ID)
			pool += d.MinimumPayment
			firstPaid = true
			continue
		}
		active++
	}

	month := 0
	for active > 0 && month < MaxMonths {
		month++
		var m Month
		accounts, m = step(accounts, pool, month)
		m.Date = start.AddMonth(month)
		plan.TotalInterest += m.Interest
		plan.TotalCost += m.Payment
		plan.Timeline = append(plan.Timeline, m)

		for _, a := range accounts {
			if a.paidMonth != month {
				continue
			}
			active--
			plan.PayoffOrder = append(plan.PayoffOrder, a.id)
			if !firstPaid {
				plan.FirstDebtPayoffMonth, firstPaid = month, true
			}
			pool += a.minimum
		}
	}

	if active > 0 {
		for _, a := range accounts {
			if a.active() {
				plan.PayoffOrder = append(plan.PayoffOrder, a.id)
			}
		}
		plan.Status = analytics.NonConvergent
		plan.MonthsToPayoff = NeverMonths
		plan.PayoffDate = date.Never
		return plan, nil
	}
	plan.MonthsToPayoff = month
	plan.PayoffDate = start.AddMonth(month)
	return plan, nil
}
