package model

import (
	"fmt"
	"time"
)

// User is an authentication record for a marketplace account. The account
// name doubles as the caller identity the engine sees.
type User struct {
	ID           int64      `json:"id"`
	Account      string     `json:"account"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ValidatePassword checks that a password meets the minimum requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
