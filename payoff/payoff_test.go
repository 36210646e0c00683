package payoff

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/store"
)

var start = date.New(2025, 1, 1)

func debts() []analytics.Debt {
	return []analytics.Debt{
		{ID: "car", Balance: 12000, AnnualRatePercent: 6, MinimumPayment: 300},
		{ID: "card", Balance: 5000, AnnualRatePercent: 22, MinimumPayment: 150},
		{ID: "store", Balance: 800, AnnualRatePercent: 18, MinimumPayment: 40},
	}
}

func ids(debts []analytics.Debt) []string {
	var res []string
	for _, d := range debts {
		res = append(res, d.ID)
	}
	return res
}

func TestStrategy_Order(t *testing.T) {
	testCases := []struct {
		s    Strategy
		want []string
	}{
		{Avalanche, []string{"card", "store", "car"}},
		{Snowball, []string{"store", "card", "car"}},
		{MinimumOnly, []string{"car", "card", "store"}},
	}
	for _, tc := range testCases {
		if got := ids(tc.s.Order(debts())); !slices.Equal(got, tc.want) {
			t.Errorf("%v.Order() = %v, want %v", tc.s, got, tc.want)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies {
		got, err := ParseStrategy(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStrategy(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseStrategy("random"); err == nil {
		t.Error(`ParseStrategy("random") error = nil, want error`)
	}
}

func TestSimulate_Rollover(t *testing.T) {
	debts := []analytics.Debt{
		{ID: "a", Balance: 100, MinimumPayment: 50},
		{ID: "b", Balance: 300, MinimumPayment: 50},
	}
	snowball, err := Simulate(debts, 0, Snowball, start)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if snowball.MonthsToPayoff != 4 || snowball.FirstDebtPayoffMonth != 2 {
		t.Errorf("snowball months = %d, first = %d, want 4, 2", snowball.MonthsToPayoff, snowball.FirstDebtPayoffMonth)
	}
	if !slices.Equal(snowball.PayoffOrder, []string{"a", "b"}) {
		t.Errorf("PayoffOrder = %v, want [a b]", snowball.PayoffOrder)
	}
	if snowball.PayoffDate != date.New(2025, 5, 1) {
		t.Errorf("PayoffDate = %v, want 2025-05-01", snowball.PayoffDate)
	}
	if snowball.TotalCost != 400 || snowball.TotalInterest != 0 {
		t.Errorf("TotalCost = %v, TotalInterest = %v, want 400, 0", snowball.TotalCost, snowball.TotalInterest)
	}

	minimum, err := Simulate(debts, 0, MinimumOnly, start)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	// same order and no extra: the rollover makes it identical to snowball.
	if minimum.MonthsToPayoff != snowball.MonthsToPayoff || minimum.FirstDebtPayoffMonth != 2 {
		t.Errorf("minimum only months = %d, first = %d, want %d, 2", minimum.MonthsToPayoff, minimum.FirstDebtPayoffMonth, snowball.MonthsToPayoff)
	}
	if minimum.TotalCost != 400 {
		t.Errorf("minimum only TotalCost = %v, want 400", minimum.TotalCost)
	}
}

func TestSimulate_PoolGoesToFirstActiveDebt(t *testing.T) {
	debts := []analytics.Debt{
		{ID: "a", Balance: 100, MinimumPayment: 10},
		{ID: "b", Balance: 100, MinimumPayment: 10},
	}
	plan, err := Simulate(debts, 100, Avalanche, start)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if plan.MonthsToPayoff != 2 || plan.FirstDebtPayoffMonth != 1 {
		t.Errorf("months = %d, first = %d, want 2, 1", plan.MonthsToPayoff, plan.FirstDebtPayoffMonth)
	}
	if got := plan.Timeline[0].Balance; got != 90 {
		t.Errorf("balance after month 1 = %v, want 90", got)
	}
}

func TestSimulate_InterestOrdering(t *testing.T) {
	var interest []float64
	for _, s := range Strategies {
		plan, err := Simulate(debts(), 200, s, start)
		if err != nil {
			t.Fatalf("Simulate(%v) error = %v", s, err)
		}
		if !plan.PaidOff() {
			t.Fatalf("Simulate(%v) = %v, want paid off", s, plan.Status)
		}
		interest = append(interest, plan.TotalInterest)
	}
	if !(interest[0] <= interest[1] && interest[1] <= interest[2]) {
		t.Errorf("interest avalanche %.2f, snowball %.2f, minimum %.2f: want increasing", interest[0], interest[1], interest[2])
	}
}

func TestSimulate_BalanceDecreases(t *testing.T) {
	plan, err := Simulate(debts(), 0, Avalanche, start)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	prev := math.Inf(1)
	for _, m := range plan.Timeline {
		if m.Balance >= prev {
			t.Fatalf("balance of month %d = %v, not below %v", m.Number, m.Balance, prev)
		}
		prev = m.Balance
	}
	if prev != 0 {
		t.Errorf("final balance = %v, want 0", prev)
	}
}

func TestSimulate_NeverPaysOff(t *testing.T) {
	debts := []analytics.Debt{
		{ID: "ok", Balance: 100, MinimumPayment: 50},
		{ID: "loan shark", Balance: 10000, AnnualRatePercent: 24, MinimumPayment: 100},
	}
	plan, err := Simulate(debts, 0, MinimumOnly, start)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if plan.PaidOff() || plan.MonthsToPayoff != NeverMonths || plan.PayoffDate != date.Never {
		t.Errorf("Simulate() = %v months, %v, %v: want the never sentinel", plan.MonthsToPayoff, plan.PayoffDate, plan.Status)
	}
	if len(plan.Timeline) != MaxMonths {
		t.Errorf("simulated %d months, want the %d cap", len(plan.Timeline), MaxMonths)
	}
	if !slices.Equal(plan.PayoffOrder, []string{"ok", "loan shark"}) {
		t.Errorf("PayoffOrder = %v, want unpaid debts appended", plan.PayoffOrder)
	}
}

func TestSimulate_Invalid(t *testing.T) {
	if _, err := Simulate(debts(), -1, Avalanche, start); !errors.Is(err, analytics.ErrInvalidInput) {
		t.Errorf("Simulate(negative extra) error = %v, want ErrInvalidInput", err)
	}
	bad := []analytics.Debt{{ID: "x", Balance: -5}}
	if _, err := Simulate(bad, 0, Avalanche, start); !errors.Is(err, analytics.ErrInvalidInput) {
		t.Errorf("Simulate(negative balance) error = %v, want ErrInvalidInput", err)
	}
}

func TestSimulate_PaidDebt(t *testing.T) {
	debts := []analytics.Debt{
		{ID: "done", Balance: 0, MinimumPayment: 50},
		{ID: "b", Balance: 100, MinimumPayment: 50},
	}
	plan, err := Simulate(debts, 0, Snowball, start)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if plan.MonthsToPayoff != 1 {
		t.Errorf("months = %d, want 1: the paid debt's minimum is free", plan.MonthsToPayoff)
	}
	if plan.FirstDebtPayoffMonth != 0 || !slices.Equal(plan.PayoffOrder, []string{"done", "b"}) {
		t.Errorf("first = %d, order = %v, want 0, [done b]", plan.FirstDebtPayoffMonth, plan.PayoffOrder)
	}

	paid := []analytics.Debt{{ID: "x", MinimumPayment: 10}, {ID: "y", MinimumPayment: 10}}
	for _, s := range Strategies {
		plan, err := Simulate(paid, 100, s, start)
		if err != nil {
			t.Fatalf("Simulate(%v) error = %v", s, err)
		}
		if !plan.PaidOff() || plan.MonthsToPayoff != 0 || plan.FirstDebtPayoffMonth != 0 || len(plan.PayoffOrder) != 2 {
			t.Errorf("Simulate(%v) of paid debts = %+v, want paid at month 0", s, plan)
		}
	}
}

func TestProject(t *testing.T) {
	p := Project(1000, 0, 100, start)
	if p.Months != 10 || p.TotalInterest != 0 || p.TotalCost != 1000 {
		t.Errorf("Project() = %d months, %v interest, %v cost, want 10, 0, 1000", p.Months, p.TotalInterest, p.TotalCost)
	}

	p = Project(5000, 18, 200, start)
	if !p.PaidOff() {
		t.Fatalf("Project() = %v, want paid off", p.Status)
	}
	prev := 5000.0
	for _, m := range p.Timeline {
		if m.Balance >= prev {
			t.Fatalf("balance of month %d = %v, not below %v", m.Number, m.Balance, prev)
		}
		prev = m.Balance
	}

	// 1% a month on 10000 is 100: the payment never covers the interest.
	p = Project(10000, 12, 100, start)
	if p.PaidOff() || p.Months != NeverMonths || p.TotalInterest != math.MaxFloat64 || p.PayoffDate != date.Never {
		t.Errorf("Project() = %+v, want the never sentinel", p)
	}
}

func TestCompare(t *testing.T) {
	c, err := Compare(context.Background(), debts(), 200, start)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(c.Plans) != 3 {
		t.Fatalf("Compare() = %d plans, want 3", len(c.Plans))
	}
	if c.TotalBalance != 17800 || c.TotalMinimum != 490 {
		t.Errorf("totals = %v, %v, want 17800, 490", c.TotalBalance, c.TotalMinimum)
	}
	if best := c.Best(); best.Strategy != Avalanche {
		t.Errorf("Best() = %v, want avalanche", best.Strategy)
	}
	if p, ok := c.Plan(MinimumOnly); !ok || p.Strategy != MinimumOnly {
		t.Errorf("Plan(MinimumOnly) = %v, %v", p.Strategy, ok)
	}
}

func TestPlanner(t *testing.T) {
	m := store.NewMemory()
	m.AddDebts("u1", debts()...)
	p := NewPlanner(m, nil)

	c, err := p.Compare(context.Background(), "u1", 100, start)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(c.Debts) != 3 {
		t.Errorf("Compare() read %d debts, want 3", len(c.Debts))
	}
	if _, err := p.Compare(context.Background(), "nobody", 100, start); !errors.Is(err, analytics.ErrNotFound) {
		t.Errorf("Compare(unknown) error = %v, want ErrNotFound", err)
	}
}
