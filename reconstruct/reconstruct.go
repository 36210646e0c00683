// Package reconstruct rebuilds the historical state of holdings and accounts
// from their ledger.
//
// The ledger is the only source of truth: a holding's quantity at a past date
// is the fold of its entries up to that date. A holding whose ledger does not
// reconcile with its current quantity is excluded from valuations rather
// than counted at zero.
package reconstruct

import (
	"context"
	"fmt"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
	"go.uber.org/zap"
)

// Reader is the data access needed to reconstruct history.
type Reader interface {
	analytics.LedgerReader
	analytics.HoldingReader
	analytics.PriceReader
}

// Reconstructor computes quantities and values at arbitrary past dates.
type Reconstructor struct {
	src    Reader
	logger *zap.Logger

	// Tolerance is the relative reconciliation tolerance, DefaultTolerance when zero.
	Tolerance float64
	// Step is the sampling interval of Series, in days. Weekly when zero.
	Step int
}

// New returns a Reconstructor reading from src. A nil logger discards logs.
func New(src Reader, logger *zap.Logger) *Reconstructor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconstructor{src: src, logger: logger}
}

func (r *Reconstructor) tolerance() float64 {
	if r.Tolerance <= 0 {
		return DefaultTolerance
	}
	return r.Tolerance
}

func (r *Reconstructor) step() int {
	if r.Step <= 0 {
		return 7
	}
	return r.Step
}

// QuantityAtDate returns the quantity of a holding held on a date, clamped to zero.
func (r *Reconstructor) QuantityAtDate(ctx context.Context, holdingID string, on date.Date) (analytics.Quantity, error) {
	entries, err := r.src.HoldingEntries(ctx, holdingID, date.Until(on))
	if err != nil {
		return analytics.Quantity{}, fmt.Errorf("could not read ledger of holding %q: %w", holdingID, err)
	}
	analytics.SortEntries(entries)
	q, ok := clamp(Fold(entries, on))
	if !ok {
		r.logger.Warn("negative reconstructed quantity",
			zap.String("holding", holdingID),
			zap.Stringer("on", on))
	}
	return q, nil
}

// ValueAtDate returns the value of an account's trusted holdings on a date.
func (r *Reconstructor) ValueAtDate(ctx context.Context, accountID string, on date.Date) (float64, error) {
	s, err := r.Snapshot(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return s.ValueAt(ctx, on)
}

// Snapshot reads an account's holdings and full ledger once.
func (r *Reconstructor) Snapshot(ctx context.Context, accountID string) (*Snapshot, error) {
	holdings, err := r.src.Holdings(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("could not read holdings of account %q: %w", accountID, err)
	}
	entries, err := r.src.AccountEntries(ctx, accountID, date.Until(date.Never))
	if err != nil {
		return nil, fmt.Errorf("could not read ledger of account %q: %w", accountID, err)
	}
	analytics.SortEntries(entries)

	s := &Snapshot{
		prices:   r.src,
		logger:   r.logger.With(zap.String("account", accountID)),
		ledgers:  make(map[string][]analytics.Entry),
		excluded: make(map[string]bool),
	}
	known := make(map[string]bool, len(holdings))
	for _, h := range holdings {
		known[h.ID] = true
	}
	for _, e := range entries {
		if e.HoldingID != "" && !known[e.HoldingID] {
			s.logger.Warn("ledger entry for unknown holding", zap.String("holding", e.HoldingID), zap.String("entry", e.ID))
			continue
		}
		if e.HoldingID == "" {
			s.cash = append(s.cash, e)
			continue
		}
		s.ledgers[e.HoldingID] = append(s.ledgers[e.HoldingID], e)
	}
	for _, h := range holdings {
		if !Complete(h, s.ledgers[h.ID], r.tolerance()) {
			s.logger.Warn("incomplete ledger, holding excluded from valuation",
				zap.String("holding", h.ID),
				zap.String("symbol", h.Symbol),
				zap.Stringer("quantity", h.Quantity))
			s.excluded[h.ID] = true
			continue
		}
		s.holdings = append(s.holdings, h)
	}
	return s, nil
}

// Series returns the valuation series of an account over rng.
func (r *Reconstructor) Series(ctx context.Context, accountID string, rng date.Range) (Series, error) {
	if err := rng.Validate(); err != nil {
		return nil, fmt.Errorf("could not reconstruct account %q: %w: %w", accountID, analytics.ErrInvalidInput, err)
	}
	s, err := r.Snapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.Series(ctx, r.Dates(rng))
}

// Prices returns the price reader of the reconstructor.
func (r *Reconstructor) Prices() analytics.PriceReader { return r.src }

// Dates returns the sampled dates of rng, always including rng.To.
func (r *Reconstructor) Dates(rng date.Range) []date.Date { return rng.Sample(r.step()) }

// PriceSeries reads the close price of symbol on each date.
func PriceSeries(ctx context.Context, prices analytics.PriceReader, symbol string, dates []date.Date) (Series, error) {
	var series Series
	for _, d := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, ok, err := prices.PriceAtOrBefore(ctx, symbol, d)
		if err != nil {
			return nil, fmt.Errorf("could not read price of %q on %s: %w", symbol, d, err)
		}
		if !ok {
			continue
		}
		series = append(series, Point{Date: d, Value: p.Close})
	}
	return series, nil
}
