package store

// Schema creates the SQLite tables. Decimal quantities and amounts are
// stored as TEXT to stay exact, dates as ISO "YYYY-MM-DD" TEXT so they sort.
const Schema = `
CREATE TABLE IF NOT EXISTS holdings (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	quantity TEXT NOT NULL,
	average_cost TEXT NOT NULL,
	current_price TEXT NOT NULL,
	currency TEXT NOT NULL,
	purchase_date TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	holding_id TEXT NOT NULL,
	account_id TEXT NOT NULL,
	type TEXT NOT NULL,
	date TEXT NOT NULL,
	quantity TEXT NOT NULL,
	price TEXT NOT NULL,
	amount TEXT NOT NULL,
	currency TEXT NOT NULL,
	reinvested INTEGER NOT NULL,
	ratio TEXT NOT NULL,
	memo TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS prices (
	symbol TEXT NOT NULL,
	date TEXT NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	volume INTEGER NOT NULL,
	PRIMARY KEY (symbol, date)
);

CREATE TABLE IF NOT EXISTS debts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	balance REAL NOT NULL,
	annual_rate REAL NOT NULL,
	minimum_payment REAL NOT NULL,
	original_amount REAL NOT NULL,
	term_months INTEGER NOT NULL,
	start_date TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_holding ON entries(holding_id, date);
CREATE INDEX IF NOT EXISTS idx_entries_account ON entries(account_id, date);
CREATE INDEX IF NOT EXISTS idx_debts_user ON debts(user_id);
`
