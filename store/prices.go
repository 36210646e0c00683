package store

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
)

// PriceFormat locates daily price rows in a provider's JSON document.
// Rows is a JSONPath selecting the rows, each field a JSONPath relative to
// a row ("$.close" or simply "close").
type PriceFormat struct {
	Rows   string `yaml:"rows" json:"rows"`
	Date   string `yaml:"date" json:"date"`
	Open   string `yaml:"open" json:"open"`
	High   string `yaml:"high" json:"high"`
	Low    string `yaml:"low" json:"low"`
	Close  string `yaml:"close" json:"close"`
	Volume string `yaml:"volume" json:"volume"`
}

// EODHD is the format of the end-of-day endpoint of eodhd.com.
var EODHD = PriceFormat{
	Rows:   "$[*]",
	Date:   "date",
	Open:   "open",
	High:   "high",
	Low:    "low",
	Close:  "adjusted_close",
	Volume: "volume",
}

// ImportPrices reads the daily prices of symbol from a JSON document.
func ImportPrices(r io.Reader, symbol string, format PriceFormat) ([]analytics.PricePoint, error) {
	if format.Close == "" || format.Date == "" {
		return nil, fmt.Errorf("price format of %q needs a date and a close: %w", symbol, analytics.ErrInvalidInput)
	}
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("could not decode prices of %q: %w", symbol, err)
	}
	jrows, err := jsonpath.Get(format.Rows, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %q %w", symbol, format.Rows, err)
	}
	rows, ok := jrows.([]any)
	if !ok {
		rows = []any{jrows}
	}

	points := make([]analytics.PricePoint, 0, len(rows))
	for i, row := range rows {
		p := analytics.PricePoint{Symbol: symbol}
		day, err := field(row, format.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d of %q: %w", i, symbol, err)
		}
		if p.Date, err = parseDay(day); err != nil {
			return nil, fmt.Errorf("row %d of %q: %w", i, symbol, err)
		}
		for _, f := range []struct {
			path string
			dst  *float64
		}{{format.Open, &p.Open}, {format.High, &p.High}, {format.Low, &p.Low}, {format.Close, &p.Close}} {
			if f.path == "" {
				continue
			}
			if *f.dst, err = number(row, f.path); err != nil {
				return nil, fmt.Errorf("row %d of %q: %w", i, symbol, err)
			}
		}
		if format.Volume != "" {
			v, err := number(row, format.Volume)
			if err != nil {
				return nil, fmt.Errorf("row %d of %q: %w", i, symbol, err)
			}
			p.Volume = int64(v)
		}
		points = append(points, p)
	}
	return points, nil
}

func field(row any, path string) (any, error) {
	if !strings.HasPrefix(path, "$") {
		path = "$." + path
	}
	v, err := jsonpath.Get(path, row)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	// jsonpath may return a list of one answer
	if list, ok := v.([]any); ok && len(list) > 0 {
		v = list[0]
	}
	return v, nil
}

func number(row any, path string) (float64, error) {
	v, err := field(row, path)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(x, 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("%q: not a number %v", path, v)
	}
}

func parseDay(v any) (date.Date, error) {
	s, ok := v.(string)
	if !ok {
		return date.Date{}, fmt.Errorf("date is not a string: %v", v)
	}
	// keep the day of timestamps
	if len(s) > 10 && (s[10] == 'T' || s[10] == ' ') {
		s = s[:10]
	}
	return date.Parse(s)
}
