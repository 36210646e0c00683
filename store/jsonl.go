package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/etnz/analytics"
)

// Record kinds of a JSONL dataset.
const (
	KindHolding = "holding"
	KindEntry   = "entry"
	KindPrice   = "price"
	KindDebt    = "debt"
)

// DecodeDataset reads a JSONL dataset: one record per line, identified by
// its "kind" field. Holdings must appear before their entries for the
// entries to inherit the holding's account.
func DecodeDataset(r io.Reader) (*Memory, error) {
	m := NewMemory()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue
		}

		var identifier struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify record in line %d: %w", line, err)
		}

		var err error
		switch identifier.Kind {
		case KindHolding:
			var h analytics.Holding
			if err = json.Unmarshal(lineBytes, &h); err == nil {
				m.AddHolding(h)
			}
		case KindEntry:
			var e analytics.Entry
			if err = json.Unmarshal(lineBytes, &e); err == nil {
				m.AddEntries(e)
			}
		case KindPrice:
			var p analytics.PricePoint
			if err = json.Unmarshal(lineBytes, &p); err == nil {
				m.AddPrices(p)
			}
		case KindDebt:
			var temp struct {
				User string `json:"user"`
				analytics.Debt
			}
			if err = json.Unmarshal(lineBytes, &temp); err == nil {
				m.AddDebts(temp.User, temp.Debt)
			}
		default:
			err = fmt.Errorf("unknown record kind: %q", identifier.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("could not decode line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return m, nil
}

// EncodeDataset writes every record of m as JSONL: holdings, entries in
// insertion order, prices by symbol and date, then debts by user.
func EncodeDataset(w io.Writer, m *Memory) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	enc := json.NewEncoder(w)
	for _, h := range m.holdings {
		if err := enc.Encode(struct {
			Kind string `json:"kind"`
			analytics.Holding
		}{KindHolding, h}); err != nil {
			return fmt.Errorf("failed to write holding %q: %w", h.ID, err)
		}
	}
	for _, e := range m.entries {
		if err := enc.Encode(struct {
			Kind string `json:"kind"`
			analytics.Entry
		}{KindEntry, e}); err != nil {
			return fmt.Errorf("failed to write entry %q: %w", e.ID, err)
		}
	}
	for _, symbol := range m.symbols() {
		for _, p := range m.prices[symbol].Values() {
			if err := enc.Encode(struct {
				Kind string `json:"kind"`
				analytics.PricePoint
			}{KindPrice, p}); err != nil {
				return fmt.Errorf("failed to write price of %q: %w", symbol, err)
			}
		}
	}
	for _, user := range m.users {
		for _, d := range m.debts[user] {
			if err := enc.Encode(struct {
				Kind string `json:"kind"`
				User string `json:"user"`
				analytics.Debt
			}{KindDebt, user, d}); err != nil {
				return fmt.Errorf("failed to write debt %q: %w", d.ID, err)
			}
		}
	}
	return nil
}
