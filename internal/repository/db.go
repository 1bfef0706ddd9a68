package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS locations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			zip TEXT NOT NULL,
			rent_model TEXT NOT NULL,
			base_rent REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_locations_state ON locations(state)`,

		`CREATE TABLE IF NOT EXISTS terminals (
			sn TEXT PRIMARY KEY,
			atm_id TEXT NOT NULL,
			location_id TEXT NOT NULL,
			cash_on_hand REAL NOT NULL,
			last_online DATETIME NOT NULL,
			status TEXT NOT NULL,
			FOREIGN KEY (location_id) REFERENCES locations(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_terminals_location ON terminals(location_id)`,
		`CREATE INDEX IF NOT EXISTS idx_terminals_status ON terminals(status)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			terminal_sn TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			type TEXT NOT NULL,
			amount_cash REAL NOT NULL,
			amount_crypto REAL NOT NULL,
			exchange_price REAL NOT NULL,
			markup_percent REAL NOT NULL,
			fixed_fee REAL NOT NULL,
			status TEXT NOT NULL,
			gross_profit REAL NOT NULL,
			source TEXT NOT NULL,
			period TEXT NOT NULL,
			metadata TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_terminal ON transactions(terminal_sn)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_period ON transactions(period)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_timestamp ON transactions(timestamp)`,

		`CREATE TABLE IF NOT EXISTS imports (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			period TEXT NOT NULL,
			file_hash TEXT UNIQUE NOT NULL,
			preset TEXT,
			rows_accepted INTEGER NOT NULL,
			rows_skipped INTEGER NOT NULL,
			imported_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_imports_period ON imports(period)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:60], err)
		}
	}

	return nil
}
