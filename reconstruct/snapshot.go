package reconstruct

import (
	"context"
	"fmt"
	"slices"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
	"go.uber.org/zap"
)

// Snapshot is the materialized state of one account: its trusted holdings
// and their ledgers. It answers any number of dates without reading the
// ledger again.
type Snapshot struct {
	prices   analytics.PriceReader
	logger   *zap.Logger
	holdings []analytics.Holding
	ledgers  map[string][]analytics.Entry
	cash     []analytics.Entry // account level entries (deposits, withdrawals)
	excluded map[string]bool
}

// Holdings returns the trusted holdings.
func (s *Snapshot) Holdings() []analytics.Holding { return slices.Clone(s.holdings) }

// Excluded reports whether a holding was excluded for an incomplete ledger.
func (s *Snapshot) Excluded(holdingID string) bool { return s.excluded[holdingID] }

// QuantityAt returns the clamped quantity of a holding on a date.
func (s *Snapshot) QuantityAt(holdingID string, on date.Date) analytics.Quantity {
	q, ok := clamp(Fold(s.ledgers[holdingID], on))
	if !ok {
		s.logger.Warn("negative reconstructed quantity", zap.String("holding", holdingID), zap.Stringer("on", on))
	}
	return q
}

// ValueAt returns the total value of the trusted holdings on a date. A
// holding without a price on or before the date is valued at its current price.
func (s *Snapshot) ValueAt(ctx context.Context, on date.Date) (float64, error) {
	var total float64
	for _, h := range s.holdings {
		q := s.QuantityAt(h.ID, on)
		if q.IsZero() {
			continue
		}
		price, err := s.priceAt(ctx, h, on)
		if err != nil {
			return 0, err
		}
		total += q.Float() * price
	}
	return total, nil
}

func (s *Snapshot) priceAt(ctx context.Context, h analytics.Holding, on date.Date) (float64, error) {
	p, ok, err := s.prices.PriceAtOrBefore(ctx, h.Symbol, on)
	if err != nil {
		return 0, fmt.Errorf("could not read price of %q on %s: %w", h.Symbol, on, err)
	}
	if !ok {
		s.logger.Debug("no historical price, using current price", zap.String("symbol", h.Symbol), zap.Stringer("on", on))
		return h.CurrentPrice.Float(), nil
	}
	return p.Close, nil
}

// CashFlow returns the external cash flow of the account within (from, to].
// Entries of excluded holdings are ignored.
func (s *Snapshot) CashFlow(from, to date.Date) float64 {
	var total float64
	add := func(entries []analytics.Entry) {
		for _, e := range entries {
			if e.Date.After(from) && !e.Date.After(to) {
				total += analytics.CashFlowAmount(e)
			}
		}
	}
	add(s.cash)
	for _, h := range s.holdings {
		add(s.ledgers[h.ID])
	}
	return total
}

// Entries returns every trusted entry dated within (from, to], in order.
func (s *Snapshot) Entries(from, to date.Date) []analytics.Entry {
	var res []analytics.Entry
	keep := func(entries []analytics.Entry) {
		for _, e := range entries {
			if e.Date.After(from) && !e.Date.After(to) {
				res = append(res, e)
			}
		}
	}
	keep(s.cash)
	for _, h := range s.holdings {
		keep(s.ledgers[h.ID])
	}
	analytics.SortEntries(res)
	return res
}

// Series values the account on each date. The first point carries no cash
// flow, every other point carries the flow since the previous date.
// Cancellation is checked before each date.
func (s *Snapshot) Series(ctx context.Context, dates []date.Date) (Series, error) {
	series := make(Series, 0, len(dates))
	for i, d := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := s.ValueAt(ctx, d)
		if err != nil {
			return nil, err
		}
		p := Point{Date: d, Value: v}
		if i > 0 {
			p.CashFlow = s.CashFlow(dates[i-1], d)
		}
		series = append(series, p)
	}
	return series, nil
}
