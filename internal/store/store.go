// Package store holds the canonical item records, the ownership index, and
// the supporting tables behind them. It performs no validation of its own;
// the marketplace engine is the single writer and enforces every precondition
// before touching the store.
package store

import (
	"context"
	"database/sql"
)

// DB is the subset of database/sql methods the store needs. Both *sql.DB and
// *sql.Tx satisfy it, so every store function can run inside the engine's
// per-operation transaction.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
