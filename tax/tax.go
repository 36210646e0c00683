// Package tax analyzes the unrealized gains of an account's tax lots:
// holding-period classification, loss-harvesting opportunities and the
// estimated tax liability of selling everything.
package tax

import (
	"context"
	"fmt"
	"math"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
	"go.uber.org/zap"
)

// Options holds the flat rates and the harvesting threshold.
type Options struct {
	ShortTermRate    float64 `yaml:"short_term_rate" json:"short_term_rate" env:"SHORT_TERM_RATE"`
	LongTermRate     float64 `yaml:"long_term_rate" json:"long_term_rate" env:"LONG_TERM_RATE"`
	HarvestThreshold float64 `yaml:"harvest_threshold" json:"harvest_threshold" env:"HARVEST_THRESHOLD"`
}

// DefaultOptions are US flat rates and a $500 materiality threshold.
func DefaultOptions() Options {
	return Options{ShortTermRate: 0.24, LongTermRate: 0.15, HarvestThreshold: 500}
}

func (o Options) rate(t Term) float64 {
	if t == LongTerm {
		return o.LongTermRate
	}
	return o.ShortTermRate
}

// Lot is the tax view of one holding.
type Lot struct {
	HoldingID    string    `json:"holding"`
	Symbol       string    `json:"symbol"`
	PurchaseDate date.Date `json:"purchase_date"`
	HoldingDays  int       `json:"holding_days"`
	Term         Term      `json:"term"`
	CostBasis    float64   `json:"cost_basis"`
	CurrentValue float64   `json:"current_value"`
	Gain         float64   `json:"gain"`
}

// Opportunity is a loss worth harvesting.
type Opportunity struct {
	HoldingID   string  `json:"holding"`
	Symbol      string  `json:"symbol"`
	Loss        float64 `json:"loss"`
	Term        Term    `json:"term"`
	TaxSavings  float64 `json:"tax_savings"`
	Replacement string  `json:"replacement"`
}

// Gains sums unrealized gains by term.
type Gains struct {
	ShortTerm float64 `json:"short_term"`
	LongTerm  float64 `json:"long_term"`
	Total     float64 `json:"total"`
}

// Liability is the tax due on the positive gains of each term.
type Liability struct {
	ShortTermTax  float64           `json:"short_term_tax"`
	LongTermTax   float64           `json:"long_term_tax"`
	Total         float64           `json:"total"`
	TaxableGains  float64           `json:"taxable_gains"`
	EffectiveRate analytics.Percent `json:"effective_rate"`
}

// Insights is the tax analysis of an account.
type Insights struct {
	Account                 string        `json:"account,omitempty"`
	AsOf                    date.Date     `json:"as_of"`
	UnrealizedGains         Gains         `json:"unrealized_gains"`
	Holdings                []Lot         `json:"holdings"`
	HarvestingOpportunities []Opportunity `json:"harvesting_opportunities"`
	EstimatedTaxLiability   Liability     `json:"estimated_tax_liability"`
}

// Analyze computes the insights of holdings on asOf. entries are the
// ledger entries of those holdings, used to resolve purchase dates.
func Analyze(holdings []analytics.Holding, entries []analytics.Entry, asOf date.Date, opts Options) *Insights {
	ledgers := make(map[string][]analytics.Entry)
	for _, e := range entries {
		ledgers[e.HoldingID] = append(ledgers[e.HoldingID], e)
	}

	res := &Insights{AsOf: asOf}
	for _, h := range holdings {
		purchase := PurchaseDate(h, ledgers[h.ID])
		if purchase.IsZero() {
			purchase = asOf
		}
		lot := Lot{
			HoldingID:    h.ID,
			Symbol:       h.Symbol,
			PurchaseDate: purchase,
			HoldingDays:  asOf.Sub(purchase),
			Term:         Classify(purchase, asOf),
			CostBasis:    h.CostBasis().Float(),
			CurrentValue: h.CurrentValue().Float(),
		}
		lot.Gain = lot.CurrentValue - lot.CostBasis
		res.Holdings = append(res.Holdings, lot)

		if lot.Term == LongTerm {
			res.UnrealizedGains.LongTerm += lot.Gain
		} else {
			res.UnrealizedGains.ShortTerm += lot.Gain
		}
		if lot.Gain < -opts.HarvestThreshold {
			res.HarvestingOpportunities = append(res.HarvestingOpportunities, Opportunity{
				HoldingID:   h.ID,
				Symbol:      h.Symbol,
				Loss:        lot.Gain,
				Term:        lot.Term,
				TaxSavings:  math.Abs(lot.Gain) * opts.rate(lot.Term),
				Replacement: Replacement(h.Symbol),
			})
		}
	}
	g := &res.UnrealizedGains
	g.Total = g.ShortTerm + g.LongTerm

	l := &res.EstimatedTaxLiability
	short, long := math.Max(g.ShortTerm, 0), math.Max(g.LongTerm, 0)
	l.ShortTermTax = short * opts.ShortTermRate
	l.LongTermTax = long * opts.LongTermRate
	l.Total = l.ShortTermTax + l.LongTermTax
	l.TaxableGains = short + long
	if l.TaxableGains > 0 {
		l.EffectiveRate = analytics.Percent(l.Total / l.TaxableGains * 100)
	}
	return res
}

// Reader is the data access needed by an Analyzer.
type Reader interface {
	analytics.HoldingReader
	analytics.LedgerReader
}

// Analyzer reads an account and analyzes it.
type Analyzer struct {
	src    Reader
	logger *zap.Logger
	Options
}

func NewAnalyzer(src Reader, opts Options, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{src: src, logger: logger, Options: opts}
}

// Analyze reads the holdings and ledger of accountID and analyzes them on asOf.
func (a *Analyzer) Analyze(ctx context.Context, accountID string, asOf date.Date) (*Insights, error) {
	holdings, err := a.src.Holdings(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("could not read holdings of account %q: %w", accountID, err)
	}
	entries, err := a.src.AccountEntries(ctx, accountID, date.Until(asOf))
	if err != nil {
		return nil, fmt.Errorf("could not read ledger of account %q: %w", accountID, err)
	}
	for _, h := range holdings {
		if h.PurchaseDate.IsZero() && h.CreatedAt.IsZero() && !hasPurchase(h.ID, entries) {
			a.logger.Warn("unknown purchase date, classified short-term",
				zap.String("account", accountID),
				zap.String("holding", h.ID))
		}
	}
	res := Analyze(holdings, entries, asOf, a.Options)
	res.Account = accountID
	return res, nil
}

func hasPurchase(holdingID string, entries []analytics.Entry) bool {
	for _, e := range entries {
		if e.HoldingID == holdingID && (e.Type == analytics.Buy || e.Type == analytics.InitialBalance) {
			return true
		}
	}
	return false
}
