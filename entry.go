package analytics

import (
	"fmt"
	"slices"

	"github.com/etnz/analytics/date"
)

// EntryType is the kind of a ledger entry.
type EntryType int

const (
	Buy EntryType = iota + 1
	Sell
	InitialBalance
	Dividend
	Split
	Spinoff
	TransferIn
	TransferOut
	Deposit
	Withdrawal
	Fee
	Interest
)

var entryTypeNames = map[EntryType]string{
	Buy:            "buy",
	Sell:           "sell",
	InitialBalance: "initial-balance",
	Dividend:       "dividend",
	Split:          "split",
	Spinoff:        "spinoff",
	TransferIn:     "transfer-in",
	TransferOut:    "transfer-out",
	Deposit:        "deposit",
	Withdrawal:     "withdrawal",
	Fee:            "fee",
	Interest:       "interest",
}

func (t EntryType) String() string {
	if s, ok := entryTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseEntryType parses a string into an EntryType.
func ParseEntryType(s string) (EntryType, error) {
	for t, name := range entryTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown entry type: %q", s)
}

func (t EntryType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *EntryType) UnmarshalText(text []byte) error {
	v, err := ParseEntryType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Entry is one immutable ledger record.
//
// Quantity is a number of shares (Sell quantities may be recorded negative),
// Price a unit price and Amount the cash value of the entry. Ratio is only
// meaningful for Split entries (2 for a 2-for-1 split).
type Entry struct {
	ID         string    `json:"id,omitempty"`
	HoldingID  string    `json:"holding,omitempty"`
	AccountID  string    `json:"account,omitempty"`
	Type       EntryType `json:"type"`
	Date       date.Date `json:"date"`
	Quantity   Quantity  `json:"quantity,omitzero"`
	Price      Money     `json:"price,omitzero"`
	Amount     Money     `json:"amount,omitzero"`
	Reinvested bool      `json:"reinvested,omitempty"`
	Ratio      Quantity  `json:"ratio,omitzero"`
	Memo       string    `json:"memo,omitempty"`
}

// Value returns the absolute cash value of the entry: its amount, or
// |quantity × price| when no amount was recorded.
func (e Entry) Value() float64 {
	if !e.Amount.IsZero() {
		return e.Amount.Abs().Float()
	}
	return e.Price.Mul(e.Quantity).Abs().Float()
}

// CashFlowAmount returns the signed external cash flow of an entry from the
// portfolio point of view: money entering the portfolio is positive
// (Buy, InitialBalance, Deposit) and money leaving it is negative (Sell,
// Dividend, Withdrawal). Other entries are not external flows.
func CashFlowAmount(e Entry) float64 {
	switch e.Type {
	case Buy, InitialBalance, Deposit:
		return e.Value()
	case Sell, Dividend, Withdrawal:
		return -e.Value()
	default:
		return 0
	}
}

// SortEntries orders entries by date, keeping insertion order among entries of the same day.
func SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int { return a.Date.Compare(b.Date) })
}
