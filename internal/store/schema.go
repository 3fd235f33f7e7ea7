package store

import (
	"context"
	"fmt"
	"os"
)

// schemaDDL creates every table the lab uses. All statements are
// IF NOT EXISTS so EnsureSchema is idempotent.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS users (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	username          TEXT NOT NULL UNIQUE,
	email             TEXT NOT NULL UNIQUE,
	password_hash     TEXT NOT NULL,
	first_name        TEXT,
	last_name         TEXT,
	phone             TEXT,
	address           TEXT,
	ssn               TEXT,
	credit_card_last4 TEXT,
	is_admin          INTEGER NOT NULL DEFAULT 0,
	is_premium        INTEGER NOT NULL DEFAULT 0,
	account_balance   REAL NOT NULL DEFAULT 0,
	salary            REAL NOT NULL DEFAULT 0,
	credit_score      INTEGER NOT NULL DEFAULT 0,
	internal_notes    TEXT,
	created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS products (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price       REAL NOT NULL,
	stock       INTEGER NOT NULL DEFAULT 0,
	category    TEXT NOT NULL DEFAULT '',
	image_url   TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS orders (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id          INTEGER NOT NULL REFERENCES users(id),
	product_id       INTEGER NOT NULL REFERENCES products(id),
	quantity         INTEGER NOT NULL CHECK (quantity > 0),
	total_amount     REAL NOT NULL,
	status           TEXT NOT NULL DEFAULT 'pending',
	shipping_address TEXT NOT NULL DEFAULT '',
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS events (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	name              TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	date              TEXT NOT NULL,
	total_tickets     INTEGER NOT NULL CHECK (total_tickets >= 0),
	available_tickets INTEGER NOT NULL CHECK (available_tickets >= 0),
	price             REAL NOT NULL,
	max_per_user      INTEGER NOT NULL DEFAULT 0,
	created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tickets (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id   INTEGER NOT NULL REFERENCES events(id),
	user_id    INTEGER NOT NULL REFERENCES users(id),
	quantity   INTEGER NOT NULL CHECK (quantity > 0),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS coupons (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	code             TEXT NOT NULL UNIQUE,
	discount_percent INTEGER NOT NULL CHECK (discount_percent BETWEEN 0 AND 100),
	max_uses         INTEGER NOT NULL,
	times_used       INTEGER NOT NULL DEFAULT 0,
	expires_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS coupon_usage (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	coupon_id INTEGER NOT NULL REFERENCES coupons(id),
	user_id   INTEGER NOT NULL REFERENCES users(id),
	order_id  INTEGER,
	used_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS password_reset_tokens (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL REFERENCES users(id),
	token      TEXT NOT NULL,
	expires_at TEXT NOT NULL,
	used       INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS challenges (
	id          TEXT PRIMARY KEY,
	category    TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL,
	difficulty  TEXT NOT NULL,
	flag        TEXT NOT NULL UNIQUE,
	points      INTEGER NOT NULL,
	endpoint    TEXT NOT NULL,
	hint_1      TEXT NOT NULL,
	hint_2      TEXT NOT NULL,
	hint_3      TEXT NOT NULL,
	solution    TEXT NOT NULL
);
`

// EnsureSchema creates every table that doesn't exist yet. Safe to call on
// every boot.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("store: creating schema: %w", err)
	}
	return nil
}

// FirstRun reports whether the users table is absent — the boot sequence uses
// this to decide whether to create the schema and seed.
func (s *Store) FirstRun(ctx context.Context) (bool, error) {
	row, err := s.FetchOne(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'users'`)
	if err != nil {
		return false, err
	}
	return row == nil, nil
}

// RemoveFile deletes the store file at path. Used by the reset entry point;
// a missing file is not an error.
func RemoveFile(path string) error {
	if path == ":memory:" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: removing %s: %w", path, err)
	}
	return nil
}
