package performance

import (
	"context"
	"fmt"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/reconstruct"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultRiskFreeRate is a 10-year benchmark yield, in percent.
const DefaultRiskFreeRate analytics.Percent = 4.25

// Result is the performance of one account over a range.
type Result struct {
	Account    string             `json:"account"`
	Range      date.Range         `json:"range"`
	TWR        analytics.Percent  `json:"twr_percent"`
	MWR        analytics.Outcome  `json:"mwr_percent"`
	Volatility analytics.Percent  `json:"volatility_percent"`
	Sharpe     float64            `json:"sharpe_ratio"`
	Series     reconstruct.Series `json:"series,omitempty"`
}

// Engine computes performance results through a Reconstructor.
type Engine struct {
	rec    *reconstruct.Reconstructor
	logger *zap.Logger

	// RiskFreeRate is the Sharpe ratio reference rate, in percent.
	RiskFreeRate analytics.Percent
	// Concurrency bounds ComputeAll, unbounded when <= 0.
	Concurrency int
}

func NewEngine(rec *reconstruct.Reconstructor, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{rec: rec, logger: logger, RiskFreeRate: DefaultRiskFreeRate}
}

// Compute measures one account over rng.
func (e *Engine) Compute(ctx context.Context, accountID string, rng date.Range) (*Result, error) {
	if err := rng.Validate(); err != nil {
		return nil, fmt.Errorf("could not compute performance of %q: %w: %w", accountID, analytics.ErrInvalidInput, err)
	}
	snap, err := e.rec.Snapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	series, err := snap.Series(ctx, e.rec.Dates(rng))
	if err != nil {
		return nil, fmt.Errorf("could not reconstruct account %q: %w", accountID, err)
	}

	res := &Result{Account: accountID, Range: rng, Series: series}
	res.TWR = TimeWeightedReturn(series)
	res.MWR = IRR(MoneyWeightedFlows(series, snap.Entries(rng.From, rng.To)))
	if !res.MWR.Converged() {
		e.logger.Info("money weighted return not computed",
			zap.String("account", accountID),
			zap.Stringer("status", res.MWR.Status),
			zap.String("reason", res.MWR.Reason))
	}
	res.Volatility = Volatility(Values(Returns(series)))
	res.Sharpe = SharpeRatio(res.TWR, e.RiskFreeRate, res.Volatility)
	return res, nil
}

// ComputeAll measures several accounts concurrently. Results are in the
// order of accountIDs; the first error cancels the others.
func (e *Engine) ComputeAll(ctx context.Context, accountIDs []string, rng date.Range) ([]*Result, error) {
	results := make([]*Result, len(accountIDs))
	g, ctx := errgroup.WithContext(ctx)
	if e.Concurrency > 0 {
		g.SetLimit(e.Concurrency)
	}
	for i, id := range accountIDs {
		g.Go(func() error {
			res, err := e.Compute(ctx, id, rng)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
