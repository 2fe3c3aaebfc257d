package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// The items table is the canonical item store: rows are never deleted and ids
// are never reused, so ascending id order is exactly append order. The
// accounts and account_items tables form the ownership index: accounts is the
// append-only roster of every account that has ever held an item, and
// account_items holds each account's current item ids in acquisition order.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    account       TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_account_active
    ON users(account) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL,
    image       TEXT NOT NULL,
    owner       TEXT NOT NULL,
    price       TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL CHECK (status IN ('CREATED', 'FORSALE', 'SOLD', 'DELETED')),
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
    pos     INTEGER PRIMARY KEY AUTOINCREMENT,
    account TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS account_items (
    pos     INTEGER PRIMARY KEY AUTOINCREMENT,
    account TEXT NOT NULL REFERENCES accounts(account),
    item_id INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_account_items_account ON account_items(account);

CREATE TABLE IF NOT EXISTS balances (
    account TEXT PRIMARY KEY,
    amount  TEXT NOT NULL DEFAULT '0'
);

CREATE TABLE IF NOT EXISTS purchases (
    id         INTEGER PRIMARY KEY,
    item_id    INTEGER NOT NULL REFERENCES items(id),
    seller     TEXT NOT NULL,
    buyer      TEXT NOT NULL,
    price      TEXT NOT NULL,
    amount     TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
