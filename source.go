package analytics

import (
	"context"

	"github.com/etnz/analytics/date"
)

// LedgerReader reads ledger entries, ordered by date then insertion order.
type LedgerReader interface {
	// HoldingEntries returns the entries of one holding within r.
	// A zero r.From means "since the beginning".
	HoldingEntries(ctx context.Context, holdingID string, r date.Range) ([]Entry, error)
	// AccountEntries returns the entries of every holding of an account within r.
	AccountEntries(ctx context.Context, accountID string, r date.Range) ([]Entry, error)
}

// HoldingReader reads the current holdings of an account.
type HoldingReader interface {
	Holdings(ctx context.Context, accountID string) ([]Holding, error)
}

// PriceReader reads historical prices.
type PriceReader interface {
	// PriceAtOrBefore returns the latest price point of symbol on or before on.
	// ok is false when there is none.
	PriceAtOrBefore(ctx context.Context, symbol string, on date.Date) (p PricePoint, ok bool, err error)
}

// DebtReader reads the debts of a user.
type DebtReader interface {
	Debts(ctx context.Context, userID string) ([]Debt, error)
}

// Source is the complete read-only data access the engines need.
// Unknown identifiers are reported with errors wrapping ErrNotFound.
type Source interface {
	LedgerReader
	HoldingReader
	PriceReader
	DebtReader
}
