package analytics

import "github.com/etnz/analytics/date"

// Holding is the current aggregate state of a position in an account.
//
// It is derived from the ledger and cached by the storage layer. Historical
// computations never trust it beyond its current quantity and price.
type Holding struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account"`
	Symbol       string    `json:"symbol"`
	Quantity     Quantity  `json:"quantity"`
	AverageCost  Money     `json:"average_cost"`
	CurrentPrice Money     `json:"current_price"`
	PurchaseDate date.Date `json:"purchase_date,omitzero"`
	CreatedAt    date.Date `json:"created_at,omitzero"`
}

// CostBasis is the total cost of the position.
func (h Holding) CostBasis() Money { return h.AverageCost.Mul(h.Quantity) }

// CurrentValue is the market value of the position at its current price.
func (h Holding) CurrentValue() Money { return h.CurrentPrice.Mul(h.Quantity) }

// UnrealizedGain is CurrentValue minus CostBasis.
func (h Holding) UnrealizedGain() Money { return h.CurrentValue().Sub(h.CostBasis()) }
