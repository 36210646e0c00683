package tax

// replacements maps a symbol to a correlated but distinct instrument, to
// keep market exposure after harvesting a loss.
//
// It is a static approximation: it does not check the 30-day window nor the
// substantially identical security test of wash-sale rules.
var replacements = map[string]string{
	// US large cap
	"SPY": "VOO",
	"VOO": "IVV",
	"IVV": "SPY",
	// US total market
	"VTI":  "ITOT",
	"ITOT": "VTI",
	"SCHB": "VTI",
	// US technology
	"QQQ":   "VGT",
	"VGT":   "QQQ",
	"XLK":   "VGT",
	"AAPL":  "XLK",
	"MSFT":  "XLK",
	"NVDA":  "SMH",
	"GOOGL": "XLC",
	"GOOG":  "XLC",
	"META":  "XLC",
	"AMZN":  "XLY",
	"TSLA":  "XLY",
	// international
	"VXUS": "IXUS",
	"IXUS": "VXUS",
	"VEA":  "IEFA",
	"IEFA": "VEA",
	"VWO":  "IEMG",
	"IEMG": "VWO",
	// bonds
	"BND": "AGG",
	"AGG": "BND",
	"TLT": "VGLT",
	// crypto
	"BTC": "ETH",
	"ETH": "BTC",
}

// Replacement returns the suggested replacement of symbol, a total market
// fund for unknown symbols.
func Replacement(symbol string) string {
	if r, ok := replacements[symbol]; ok {
		return r
	}
	return "VTI"
}
