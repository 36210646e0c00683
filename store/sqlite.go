package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// SQLite is an analytics.Source backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

var _ analytics.Source = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database at path and ensures the schema exists.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", path, err)
	}
	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not create schema in %q: %w", path, err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func formatDate(d date.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func parseDate(s string) (date.Date, error) {
	if s == "" {
		return date.Date{}, nil
	}
	return date.Parse(s)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// InsertHolding inserts or replaces a holding.
func (s *SQLite) InsertHolding(ctx context.Context, h analytics.Holding) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO holdings
		(id, account_id, symbol, quantity, average_cost, current_price, currency, purchase_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.AccountID, h.Symbol, h.Quantity.String(),
		h.AverageCost.Decimal().String(), h.CurrentPrice.Decimal().String(), currencyOf(h.CurrentPrice, h.AverageCost),
		formatDate(h.PurchaseDate), formatDate(h.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("could not insert holding %q: %w", h.ID, err)
	}
	return nil
}

// InsertEntries appends entries in one transaction. Entries without an id get one.
func (s *SQLite) InsertEntries(ctx context.Context, entries ...analytics.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		if e.ID == "" {
			e.ID = NewID()
		}
		if e.AccountID == "" {
			if err := tx.QueryRowContext(ctx, `SELECT account_id FROM holdings WHERE id = ?`, e.HoldingID).Scan(&e.AccountID); err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("could not resolve account of entry %q: %w", e.ID, err)
			}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entries
			(id, holding_id, account_id, type, date, quantity, price, amount, currency, reinvested, ratio, memo)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.HoldingID, e.AccountID, e.Type.String(), formatDate(e.Date),
			e.Quantity.String(), e.Price.Decimal().String(), e.Amount.Decimal().String(), currencyOf(e.Amount, e.Price),
			e.Reinvested, e.Ratio.String(), e.Memo,
		)
		if err != nil {
			return fmt.Errorf("could not insert entry %q: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// InsertPrices inserts or replaces price points.
func (s *SQLite) InsertPrices(ctx context.Context, points ...analytics.PricePoint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range points {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO prices (symbol, date, open, high, low, close, volume)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.Symbol, formatDate(p.Date), p.Open, p.High, p.Low, p.Close, p.Volume,
		)
		if err != nil {
			return fmt.Errorf("could not insert price of %q on %s: %w", p.Symbol, p.Date, err)
		}
	}
	return tx.Commit()
}

// InsertDebts inserts or replaces debts of a user.
func (s *SQLite) InsertDebts(ctx context.Context, userID string, debts ...analytics.Debt) error {
	for _, d := range debts {
		if d.ID == "" {
			d.ID = NewID()
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO debts
			(id, user_id, name, balance, annual_rate, minimum_payment, original_amount, term_months, start_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, userID, d.Name, d.Balance, d.AnnualRatePercent, d.MinimumPayment,
			d.OriginalAmount, d.TermMonths, formatDate(d.StartDate),
		)
		if err != nil {
			return fmt.Errorf("could not insert debt %q: %w", d.ID, err)
		}
	}
	return nil
}

// Import copies a whole in-memory dataset into the database.
func (s *SQLite) Import(ctx context.Context, m *Memory) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, h := range m.holdings {
		if err := s.InsertHolding(ctx, h); err != nil {
			return err
		}
	}
	if err := s.InsertEntries(ctx, m.entries...); err != nil {
		return err
	}
	for _, symbol := range m.symbols() {
		var points []analytics.PricePoint
		for _, p := range m.prices[symbol].Values() {
			points = append(points, p)
		}
		if err := s.InsertPrices(ctx, points...); err != nil {
			return err
		}
	}
	for _, user := range m.users {
		if err := s.InsertDebts(ctx, user, m.debts[user]...); err != nil {
			return err
		}
	}
	return nil
}

func currencyOf(candidates ...analytics.Money) string {
	for _, m := range candidates {
		if m.Currency() != "" {
			return m.Currency()
		}
	}
	return ""
}

func (s *SQLite) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (s *SQLite) HoldingEntries(ctx context.Context, holdingID string, r date.Range) ([]analytics.Entry, error) {
	ok, err := s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM holdings WHERE id = ?)`, holdingID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("holding %q: %w", holdingID, analytics.ErrNotFound)
	}
	return s.queryEntries(ctx, `holding_id = ?`, holdingID, r)
}

func (s *SQLite) AccountEntries(ctx context.Context, accountID string, r date.Range) ([]analytics.Entry, error) {
	if err := s.checkAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.queryEntries(ctx, `account_id = ?`, accountID, r)
}

func (s *SQLite) checkAccount(ctx context.Context, accountID string) error {
	ok, err := s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM holdings WHERE account_id = ?) OR EXISTS(SELECT 1 FROM entries WHERE account_id = ?)`, accountID, accountID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("account %q: %w", accountID, analytics.ErrNotFound)
	}
	return nil
}

func (s *SQLite) queryEntries(ctx context.Context, where string, id string, r date.Range) ([]analytics.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, holding_id, account_id, type, date, quantity, price, amount, currency, reinvested, ratio, memo
		FROM entries
		WHERE `+where+` AND date >= ? AND date <= ?
		ORDER BY date ASC, seq ASC`, id, formatDate(r.From), formatDate(r.To))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analytics.Entry
	for rows.Next() {
		var (
			e                                      analytics.Entry
			typ, day, qty, price, amount, cur, rat string
		)
		if err := rows.Scan(&e.ID, &e.HoldingID, &e.AccountID, &typ, &day, &qty, &price, &amount, &cur, &e.Reinvested, &rat, &e.Memo); err != nil {
			return nil, err
		}
		if e.Type, err = analytics.ParseEntryType(typ); err != nil {
			return nil, fmt.Errorf("entry %q: %w", e.ID, err)
		}
		if e.Date, err = parseDate(day); err != nil {
			return nil, fmt.Errorf("entry %q: %w", e.ID, err)
		}
		var q, p, a, ratio decimal.Decimal
		for _, f := range []struct {
			dst *decimal.Decimal
			src string
		}{{&q, qty}, {&p, price}, {&a, amount}, {&ratio, rat}} {
			if *f.dst, err = parseDecimal(f.src); err != nil {
				return nil, fmt.Errorf("entry %q: %w", e.ID, err)
			}
		}
		e.Quantity, e.Price, e.Amount, e.Ratio = analytics.Q(q), analytics.M(p, cur), analytics.M(a, cur), analytics.Q(ratio)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLite) Holdings(ctx context.Context, accountID string) ([]analytics.Holding, error) {
	if err := s.checkAccount(ctx, accountID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, symbol, quantity, average_cost, current_price, currency, purchase_date, created_at
		FROM holdings
		WHERE account_id = ?
		ORDER BY rowid ASC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analytics.Holding
	for rows.Next() {
		var (
			h                                       analytics.Holding
			qty, avg, current, cur, bought, created string
		)
		if err := rows.Scan(&h.ID, &h.AccountID, &h.Symbol, &qty, &avg, &current, &cur, &bought, &created); err != nil {
			return nil, err
		}
		q, err := parseDecimal(qty)
		if err != nil {
			return nil, fmt.Errorf("holding %q: %w", h.ID, err)
		}
		a, err := parseDecimal(avg)
		if err != nil {
			return nil, fmt.Errorf("holding %q: %w", h.ID, err)
		}
		c, err := parseDecimal(current)
		if err != nil {
			return nil, fmt.Errorf("holding %q: %w", h.ID, err)
		}
		h.Quantity, h.AverageCost, h.CurrentPrice = analytics.Q(q), analytics.M(a, cur), analytics.M(c, cur)
		if h.PurchaseDate, err = parseDate(bought); err != nil {
			return nil, fmt.Errorf("holding %q: %w", h.ID, err)
		}
		if h.CreatedAt, err = parseDate(created); err != nil {
			return nil, fmt.Errorf("holding %q: %w", h.ID, err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLite) PriceAtOrBefore(ctx context.Context, symbol string, on date.Date) (analytics.PricePoint, bool, error) {
	p := analytics.PricePoint{Symbol: symbol}
	var day string
	err := s.db.QueryRowContext(ctx, `
		SELECT date, open, high, low, close, volume
		FROM prices
		WHERE symbol = ? AND date <= ?
		ORDER BY date DESC
		LIMIT 1`, symbol, formatDate(on)).Scan(&day, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume)
	if errors.Is(err, sql.ErrNoRows) {
		return analytics.PricePoint{}, false, nil
	}
	if err != nil {
		return analytics.PricePoint{}, false, err
	}
	if p.Date, err = parseDate(day); err != nil {
		return analytics.PricePoint{}, false, err
	}
	return p, true, nil
}

func (s *SQLite) Debts(ctx context.Context, userID string) ([]analytics.Debt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, balance, annual_rate, minimum_payment, original_amount, term_months, start_date
		FROM debts
		WHERE user_id = ?
		ORDER BY rowid ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analytics.Debt
	for rows.Next() {
		var (
			d     analytics.Debt
			start string
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.Balance, &d.AnnualRatePercent, &d.MinimumPayment, &d.OriginalAmount, &d.TermMonths, &start); err != nil {
			return nil, err
		}
		if d.StartDate, err = parseDate(start); err != nil {
			return nil, fmt.Errorf("debt %q: %w", d.ID, err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("user %q: %w", userID, analytics.ErrNotFound)
	}
	return out, nil
}
