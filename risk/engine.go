package risk

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
	"github.com/etnz/analytics/performance"
	"github.com/etnz/analytics/reconstruct"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Defaults of an Engine.
const (
	DefaultTopHoldings = 10
	DefaultWindow      = 30
	DefaultEvery       = 7
)

// Pair is the correlation of the weekly returns of two symbols.
type Pair struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Value float64 `json:"correlation"`
}

// Result is the risk profile of one account over a range.
type Result struct {
	Account           string            `json:"account"`
	Range             date.Range        `json:"range"`
	Benchmark         string            `json:"benchmark"`
	Volatility        analytics.Percent `json:"volatility"`
	Beta              float64           `json:"beta"`
	MaxDrawdown       Drawdown          `json:"max_drawdown"`
	Correlations      []Pair            `json:"correlations"`
	VolatilityHistory []Point           `json:"volatility_history"`
	DrawdownHistory   []Point           `json:"drawdown_history"`
}

// Engine computes risk results.
type Engine struct {
	rec       *reconstruct.Reconstructor
	benchmark *Benchmark
	logger    *zap.Logger

	// TopHoldings caps the correlation matrix to the largest holdings.
	TopHoldings int
	// Window and Every configure the rolling volatility, in days.
	Window, Every int
	// Concurrency bounds the holdings read in parallel, unbounded when <= 0.
	Concurrency int
}

func NewEngine(rec *reconstruct.Reconstructor, benchmark *Benchmark, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		rec:         rec,
		benchmark:   benchmark,
		logger:      logger,
		TopHoldings: DefaultTopHoldings,
		Window:      DefaultWindow,
		Every:       DefaultEvery,
	}
}

// Compute measures the risk of one account over rng.
func (e *Engine) Compute(ctx context.Context, accountID string, rng date.Range) (*Result, error) {
	if err := rng.Validate(); err != nil {
		return nil, fmt.Errorf("could not compute risk of %q: %w: %w", accountID, analytics.ErrInvalidInput, err)
	}
	snap, err := e.rec.Snapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	dates := e.rec.Dates(rng)
	series, err := snap.Series(ctx, dates)
	if err != nil {
		return nil, fmt.Errorf("could not reconstruct account %q: %w", accountID, err)
	}
	market, err := e.benchmark.Series(ctx, dates)
	if err != nil {
		return nil, fmt.Errorf("could not read benchmark %q: %w", e.benchmark.Symbol, err)
	}
	if len(market) == 0 {
		e.logger.Warn("no benchmark prices, beta defaults to 1", zap.String("benchmark", e.benchmark.Symbol))
	}

	returns := performance.Returns(series)
	marketReturns := performance.Returns(market)
	res := &Result{
		Account:    accountID,
		Range:      rng,
		Benchmark:  e.benchmark.Symbol,
		Volatility: performance.Volatility(performance.Values(returns)),
		Beta:       Beta(returns, marketReturns),
	}
	res.MaxDrawdown, res.DrawdownHistory = MaxDrawdown(series)
	res.VolatilityHistory = RollingVolatility(series, e.Window, e.Every)

	res.Correlations, err = e.correlations(ctx, snap.Holdings(), dates, marketReturns)
	if err != nil {
		return nil, fmt.Errorf("could not correlate holdings of %q: %w", accountID, err)
	}
	return res, nil
}

// top returns the n holdings of largest current value, one per symbol.
func top(holdings []analytics.Holding, n int) []analytics.Holding {
	holdings = slices.Clone(holdings)
	slices.SortStableFunc(holdings, func(a, b analytics.Holding) int {
		return cmp.Compare(b.CurrentValue().Float(), a.CurrentValue().Float())
	})
	var res []analytics.Holding
	seen := make(map[string]bool)
	for _, h := range holdings {
		if len(res) == n {
			break
		}
		if seen[h.Symbol] {
			continue
		}
		seen[h.Symbol] = true
		res = append(res, h)
	}
	return res
}

func (e *Engine) correlations(ctx context.Context, holdings []analytics.Holding, dates []date.Date, market []performance.Return) ([]Pair, error) {
	n := e.TopHoldings
	if n <= 0 {
		n = DefaultTopHoldings
	}
	holdings = top(holdings, n)

	returns := make([][]float64, len(holdings))
	g, ctx := errgroup.WithContext(ctx)
	if e.Concurrency > 0 {
		g.SetLimit(e.Concurrency)
	}
	for i, h := range holdings {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := reconstruct.PriceSeries(ctx, e.rec.Prices(), h.Symbol, dates)
			if err != nil {
				return err
			}
			returns[i] = performance.Values(performance.Returns(s))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	marketValues := performance.Values(market)
	var pairs []Pair
	for i := range holdings {
		for j := i + 1; j < len(holdings); j++ {
			pairs = append(pairs, Pair{A: holdings[i].Symbol, B: holdings[j].Symbol, Value: Correlation(returns[i], returns[j])})
		}
	}
	for i, h := range holdings {
		if h.Symbol == e.benchmark.Symbol {
			continue
		}
		pairs = append(pairs, Pair{A: h.Symbol, B: e.benchmark.Symbol, Value: Correlation(returns[i], marketValues)})
	}
	return pairs, nil
}
