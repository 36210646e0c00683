// Package store implements the read-only data access of the engines on top
// of an in-memory dataset or a SQLite database, and reads and writes
// datasets as JSONL.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
)

// Memory is an in-memory analytics.Source. It is safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	holdings []analytics.Holding
	entries  []analytics.Entry // insertion order
	prices   map[string]*date.History[analytics.PricePoint]
	debts    map[string][]analytics.Debt
	users    []string
}

var _ analytics.Source = (*Memory)(nil)

// NewMemory returns an empty dataset.
func NewMemory() *Memory {
	return &Memory{
		prices: make(map[string]*date.History[analytics.PricePoint]),
		debts:  make(map[string][]analytics.Debt),
	}
}

// AddHolding adds or replaces a holding.
func (m *Memory) AddHolding(h analytics.Holding) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := slices.IndexFunc(m.holdings, func(x analytics.Holding) bool { return x.ID == h.ID }); i >= 0 {
		m.holdings[i] = h
		return
	}
	m.holdings = append(m.holdings, h)
}

// AddEntries appends ledger entries. Entries without an id get one, entries
// of a known holding without an account inherit the holding's account.
func (m *Memory) AddEntries(entries ...analytics.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if e.ID == "" {
			e.ID = NewID()
		}
		if e.AccountID == "" {
			if h, ok := m.holding(e.HoldingID); ok {
				e.AccountID = h.AccountID
			}
		}
		m.entries = append(m.entries, e)
	}
}

// AddPrices records price points, the last one wins for a given symbol and day.
func (m *Memory) AddPrices(points ...analytics.PricePoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range points {
		h, ok := m.prices[p.Symbol]
		if !ok {
			h = new(date.History[analytics.PricePoint])
			m.prices[p.Symbol] = h
		}
		h.Append(p.Date, p)
	}
}

// AddDebts records debts for a user.
func (m *Memory) AddDebts(userID string, debts ...analytics.Debt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.debts[userID]; !ok {
		m.users = append(m.users, userID)
	}
	m.debts[userID] = append(m.debts[userID], debts...)
}

func (m *Memory) holding(id string) (analytics.Holding, bool) {
	i := slices.IndexFunc(m.holdings, func(x analytics.Holding) bool { return x.ID == id })
	if i < 0 {
		return analytics.Holding{}, false
	}
	return m.holdings[i], true
}

func (m *Memory) knownAccount(id string) bool {
	return slices.ContainsFunc(m.holdings, func(h analytics.Holding) bool { return h.AccountID == id }) ||
		slices.ContainsFunc(m.entries, func(e analytics.Entry) bool { return e.AccountID == id })
}

// Accounts returns the known account ids, in order of appearance.
func (m *Memory) Accounts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for _, h := range m.holdings {
		if !slices.Contains(ids, h.AccountID) {
			ids = append(ids, h.AccountID)
		}
	}
	for _, e := range m.entries {
		if e.AccountID != "" && !slices.Contains(ids, e.AccountID) {
			ids = append(ids, e.AccountID)
		}
	}
	return ids
}

// Symbols returns the symbols with at least one price, sorted.
func (m *Memory) Symbols() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.symbols()
}

func (m *Memory) symbols() []string {
	var res []string
	for s := range m.prices {
		res = append(res, s)
	}
	slices.Sort(res)
	return res
}

func (m *Memory) HoldingEntries(ctx context.Context, holdingID string, r date.Range) ([]analytics.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.holding(holdingID); !ok {
		return nil, fmt.Errorf("holding %q: %w", holdingID, analytics.ErrNotFound)
	}
	return m.filter(r, func(e analytics.Entry) bool { return e.HoldingID == holdingID }), nil
}

func (m *Memory) AccountEntries(ctx context.Context, accountID string, r date.Range) ([]analytics.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.knownAccount(accountID) {
		return nil, fmt.Errorf("account %q: %w", accountID, analytics.ErrNotFound)
	}
	return m.filter(r, func(e analytics.Entry) bool { return e.AccountID == accountID }), nil
}

func (m *Memory) filter(r date.Range, keep func(analytics.Entry) bool) []analytics.Entry {
	var res []analytics.Entry
	for _, e := range m.entries {
		if keep(e) && r.Contains(e.Date) {
			res = append(res, e)
		}
	}
	analytics.SortEntries(res)
	return res
}

func (m *Memory) Holdings(ctx context.Context, accountID string) ([]analytics.Holding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.knownAccount(accountID) {
		return nil, fmt.Errorf("account %q: %w", accountID, analytics.ErrNotFound)
	}
	var res []analytics.Holding
	for _, h := range m.holdings {
		if h.AccountID == accountID {
			res = append(res, h)
		}
	}
	return res, nil
}

func (m *Memory) PriceAtOrBefore(ctx context.Context, symbol string, on date.Date) (analytics.PricePoint, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.prices[symbol]
	if !ok {
		return analytics.PricePoint{}, false, nil
	}
	p, ok := h.ValueAsOf(on)
	return p, ok, nil
}

func (m *Memory) Debts(ctx context.Context, userID string) ([]analytics.Debt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	debts, ok := m.debts[userID]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", userID, analytics.ErrNotFound)
	}
	return slices.Clone(debts), nil
}
