package payoff

import (
	"context"
	"fmt"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Comparison holds one plan per strategy, in Strategies order.
type Comparison struct {
	Debts               []analytics.Debt `json:"debts"`
	Extra               float64          `json:"extra"`
	TotalBalance        float64          `json:"total_balance"`
	TotalMinimum        float64          `json:"total_minimum"`
	WeightedAverageRate float64          `json:"weighted_average_rate"`
	Plans               []Plan           `json:"plans"`
}

// Plan returns the plan of a strategy.
func (c *Comparison) Plan(s Strategy) (Plan, bool) {
	for _, p := range c.Plans {
		if p.Strategy == s {
			return p, true
		}
	}
	return Plan{}, false
}

// Best returns the plan paying the least interest, Strategies order breaking ties.
func (c *Comparison) Best() Plan {
	best := c.Plans[0]
	for _, p := range c.Plans[1:] {
		if p.TotalInterest < best.TotalInterest {
			best = p
		}
	}
	return best
}

// Compare simulates every strategy concurrently.
func Compare(ctx context.Context, debts []analytics.Debt, extra float64, start date.Date) (*Comparison, error) {
	c := &Comparison{
		Debts:               debts,
		Extra:               extra,
		WeightedAverageRate: analytics.WeightedAverageRate(debts),
		Plans:               make([]Plan, len(Strategies)),
	}
	for _, d := range debts {
		c.TotalBalance += d.Balance
		c.TotalMinimum += d.MinimumPayment
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, s := range Strategies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			plan, err := Simulate(debts, extra, s, start)
			if err != nil {
				return fmt.Errorf("could not simulate %s: %w", s, err)
			}
			c.Plans[i] = plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}

// Planner compares the strategies of a user's debts.
type Planner struct {
	debts  analytics.DebtReader
	logger *zap.Logger
}

func NewPlanner(debts analytics.DebtReader, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{debts: debts, logger: logger}
}

// Compare reads the debts of userID and compares the strategies.
func (p *Planner) Compare(ctx context.Context, userID string, extra float64, start date.Date) (*Comparison, error) {
	debts, err := p.debts.Debts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not read debts of %q: %w", userID, err)
	}
	c, err := Compare(ctx, debts, extra, start)
	if err != nil {
		return nil, err
	}
	for _, plan := range c.Plans {
		if !plan.PaidOff() {
			p.logger.Info("plan never pays off",
				zap.String("user", userID),
				zap.Stringer("strategy", plan.Strategy))
		}
	}
	return c, nil
}
