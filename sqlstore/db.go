// Package sqlstore persists the ledger in a single SQLite file.
//
// It implements the ledger.Store contract. Amounts are stored as decimal
// strings, dates as ISO "2006-01-02" text, and the sale, transfer-link and
// schedule markers are folded into the notes column token format.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS postings (
	id           TEXT PRIMARY KEY,
	from_type    TEXT,
	from_id      TEXT,
	to_type      TEXT,
	to_id        TEXT,
	amount       TEXT NOT NULL,
	currency     TEXT NOT NULL,
	date         TEXT NOT NULL,
	status       TEXT NOT NULL,
	category     TEXT NOT NULL,
	category_id  TEXT,
	tag_ids      TEXT,
	description  TEXT,
	notes        TEXT,
	payment_type TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_postings_date ON postings(date);
CREATE INDEX IF NOT EXISTS idx_postings_from ON postings(from_id);
CREATE INDEX IF NOT EXISTS idx_postings_to   ON postings(to_id);

CREATE TABLE IF NOT EXISTS definitions (
	id          TEXT PRIMARY KEY,
	description TEXT,
	amount      TEXT NOT NULL,
	currency    TEXT NOT NULL,
	category    TEXT NOT NULL,
	category_id TEXT,
	tag_ids     TEXT,
	from_type   TEXT,
	from_id     TEXT,
	to_type     TEXT,
	to_id       TEXT,
	frequency   TEXT NOT NULL,
	start_date  TEXT NOT NULL,
	end_date    TEXT,
	occurrences INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS occurrences (
	id             TEXT PRIMARY KEY,
	definition_id  TEXT NOT NULL REFERENCES definitions(id) ON DELETE CASCADE,
	scheduled_date TEXT NOT NULL,
	amount         TEXT NOT NULL,
	currency       TEXT NOT NULL,
	status         TEXT NOT NULL,
	notes          TEXT
);
CREATE INDEX IF NOT EXISTS idx_occurrences_definition ON occurrences(definition_id);

CREATE TABLE IF NOT EXISTS holdings (
	id            TEXT PRIMARY KEY,
	account_id    TEXT NOT NULL,
	symbol        TEXT NOT NULL,
	asset_type    TEXT NOT NULL,
	quantity      TEXT NOT NULL,
	average_cost  TEXT NOT NULL,
	current_price TEXT NOT NULL,
	currency      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_holdings_account ON holdings(account_id);

CREATE TABLE IF NOT EXISTS value_snapshots (
	account_id TEXT NOT NULL,
	date       TEXT NOT NULL,
	value      TEXT NOT NULL,
	currency   TEXT NOT NULL,
	PRIMARY KEY (account_id, date)
);
`

// Store is the SQLite-backed implementation of the ledger persistence
// contract.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path with sensible defaults and
// bootstraps the schema.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrapping schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// WithTx runs fn in a transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
