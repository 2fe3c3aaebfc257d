// Package wallet is the host-side payment ledger: per-account balances in
// smallest currency units (yocto), stored as decimal strings so amounts are
// arbitrary precision end to end. The marketplace engine never touches it
// directly; it sees only the Treasury view bound to the contract account.
package wallet

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
)

// Wallet manages account balances.
type Wallet struct {
	db *sql.DB
}

// New creates a Wallet backed by the given database.
func New(db *sql.DB) *Wallet {
	return &Wallet{db: db}
}

// Balance returns an account's balance in yocto units. Unknown accounts have
// a zero balance.
func (w *Wallet) Balance(ctx context.Context, account string) (*big.Int, error) {
	return balance(ctx, w.db, account)
}

// Deposit mints the given amount into an account's balance.
func (w *Wallet) Deposit(ctx context.Context, account string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("deposit amount %s is negative", amount)
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := credit(ctx, tx, account, amount); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing deposit: %w", err)
	}
	return nil
}

// Move transfers amount from one account to another in a single transaction.
// Fails without effect if the source balance is insufficient.
func (w *Wallet) Move(ctx context.Context, from, to string, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("transfer amount %s is not positive", amount)
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	have, err := balance(ctx, tx, from)
	if err != nil {
		return err
	}
	if have.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient funds: %s has %s, need %s", from, have, amount)
	}

	if err := setBalance(ctx, tx, from, new(big.Int).Sub(have, amount)); err != nil {
		return err
	}
	if err := credit(ctx, tx, to, amount); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transfer: %w", err)
	}
	return nil
}

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func balance(ctx context.Context, db dbtx, account string) (*big.Int, error) {
	var amount string
	err := db.QueryRowContext(ctx,
		`SELECT amount FROM balances WHERE account = ?`, account,
	).Scan(&amount)
	if err == sql.ErrNoRows {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading balance: %w", err)
	}

	n, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt balance %q for account %s", amount, account)
	}
	return n, nil
}

func credit(ctx context.Context, db dbtx, account string, amount *big.Int) error {
	have, err := balance(ctx, db, account)
	if err != nil {
		return err
	}
	return setBalance(ctx, db, account, new(big.Int).Add(have, amount))
}

func setBalance(ctx context.Context, db dbtx, account string, amount *big.Int) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO balances (account, amount) VALUES (?, ?)
		 ON CONFLICT (account) DO UPDATE SET amount = excluded.amount`,
		account, amount.String(),
	)
	if err != nil {
		return fmt.Errorf("writing balance: %w", err)
	}
	return nil
}

// Treasury is the engine-facing view of a Wallet, bound to the contract's
// own account.
type Treasury struct {
	wallet  *Wallet
	account string
}

// NewTreasury binds a wallet to the contract account.
func NewTreasury(w *Wallet, account string) *Treasury {
	return &Treasury{wallet: w, account: account}
}

// Balance returns the contract's currently available balance.
func (t *Treasury) Balance(ctx context.Context) (*big.Int, error) {
	return t.wallet.Balance(ctx, t.account)
}

// Transfer moves amount from the contract to the destination account.
func (t *Treasury) Transfer(ctx context.Context, to string, amount *big.Int) error {
	return t.wallet.Move(ctx, t.account, to, amount)
}
