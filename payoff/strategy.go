package payoff

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/etnz/analytics"
)

// Strategy decides the order in which debts receive the extra payment.
type Strategy int

const (
	// Avalanche pays the highest interest rate first.
	Avalanche Strategy = iota
	// Snowball pays the lowest balance first.
	Snowball
	// MinimumOnly keeps the original order and pays no extra.
	MinimumOnly
)

// Strategies lists every strategy, in comparison order.
var Strategies = []Strategy{Avalanche, Snowball, MinimumOnly}

func (s Strategy) String() string {
	switch s {
	case Avalanche:
		return "avalanche"
	case Snowball:
		return "snowball"
	case MinimumOnly:
		return "minimum"
	default:
		return "unknown"
	}
}

func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Strategy) UnmarshalText(text []byte) (err error) {
	*s, err = ParseStrategy(string(text))
	return err
}

// ParseStrategy parses a string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "avalanche":
		return Avalanche, nil
	case "snowball":
		return Snowball, nil
	case "minimum":
		return MinimumOnly, nil
	default:
		return 0, fmt.Errorf("unknown payoff strategy: %q", s)
	}
}

// Order returns a copy of debts in the strategy's payment order. Ties keep
// the original order.
func (s Strategy) Order(debts []analytics.Debt) []analytics.Debt {
	ordered := slices.Clone(debts)
	switch s {
	case Avalanche:
		slices.SortStableFunc(ordered, func(a, b analytics.Debt) int { return cmp.Compare(b.AnnualRatePercent, a.AnnualRatePercent) })
	case Snowball:
		slices.SortStableFunc(ordered, func(a, b analytics.Debt) int { return cmp.Compare(a.Balance, b.Balance) })
	}
	return ordered
}
