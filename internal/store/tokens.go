package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RevokeToken adds a token's JTI to the revocation list. Expired entries are
// swept on the way through; revocation only needs to outlive the token.
func RevokeToken(ctx context.Context, db DB, jti string, expiresAt time.Time) error {
	if _, err := db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, time.Now(),
	); err != nil {
		return fmt.Errorf("sweeping expired revocations: %w", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		jti, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether a token's JTI is on the revocation list.
func IsTokenRevoked(ctx context.Context, db DB, jti string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx,
		`SELECT 1 FROM revoked_tokens WHERE jti = ?`, jti,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return true, nil
}
