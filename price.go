package analytics

import "github.com/etnz/analytics/date"

// PricePoint is one trading day of a symbol.
type PricePoint struct {
	Symbol string    `json:"symbol"`
	Date   date.Date `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}
