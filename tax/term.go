package tax

import (
	"fmt"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
)

// LongTermDays is the holding period from which a gain is long-term.
const LongTermDays = 365

// Term is the tax holding-period class of a position.
type Term int

const (
	ShortTerm Term = iota
	LongTerm
)

func (t Term) String() string {
	if t == LongTerm {
		return "long-term"
	}
	return "short-term"
}

func (t Term) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Term) UnmarshalText(text []byte) error {
	switch string(text) {
	case "long-term":
		*t = LongTerm
	case "short-term":
		*t = ShortTerm
	default:
		return fmt.Errorf("%w: unknown term %q", analytics.ErrInvalidInput, text)
	}
	return nil
}

// Classify returns LongTerm when the position was held at least LongTermDays on asOf.
func Classify(purchase, asOf date.Date) Term {
	if asOf.Sub(purchase) >= LongTermDays {
		return LongTerm
	}
	return ShortTerm
}

// PurchaseDate resolves when a holding was bought: its explicit purchase
// date, else its earliest Buy or InitialBalance entry, else its creation date.
func PurchaseDate(h analytics.Holding, entries []analytics.Entry) date.Date {
	if !h.PurchaseDate.IsZero() {
		return h.PurchaseDate
	}
	var earliest date.Date
	for _, e := range entries {
		if e.Type != analytics.Buy && e.Type != analytics.InitialBalance {
			continue
		}
		if earliest.IsZero() || e.Date.Before(earliest) {
			earliest = e.Date
		}
	}
	if !earliest.IsZero() {
		return earliest
	}
	return h.CreatedAt
}
