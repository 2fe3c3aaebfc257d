package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"
)

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	// Try to generate and insert first (safe against races).
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('jwt_secret', ?)`,
		candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	// Always read back (either our insert or the existing value).
	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'jwt_secret'`,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}

	return secret, nil
}

// NextItemID allocates the next sequential item id, starting at 0. Ids are
// never reused, even when items are deleted. Callers must hold the
// operation's transaction so two allocations cannot collide.
func NextItemID(ctx context.Context, db DB) (int64, error) {
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('next_item_id', '0')`,
	); err != nil {
		return 0, fmt.Errorf("initializing item sequence: %w", err)
	}

	var value string
	if err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'next_item_id'`,
	).Scan(&value); err != nil {
		return 0, fmt.Errorf("querying item sequence: %w", err)
	}

	next, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing item sequence %q: %w", value, err)
	}

	if _, err := db.ExecContext(ctx,
		`UPDATE settings SET value = ? WHERE key = 'next_item_id'`,
		strconv.FormatInt(next+1, 10),
	); err != nil {
		return 0, fmt.Errorf("advancing item sequence: %w", err)
	}

	return next, nil
}
