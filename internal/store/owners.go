package store

import (
	"context"
	"fmt"
	"strconv"
)

// AddOwned appends an item id to an account's owned-id list. An account seen
// for the first time is added to the global roster before its list is
// created; existing list order is preserved and new ids go to the end.
func AddOwned(ctx context.Context, db DB, account, itemID string) error {
	id, err := strconv.ParseInt(itemID, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing item id %q: %w", itemID, err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO accounts (account) VALUES (?)`, account,
	); err != nil {
		return fmt.Errorf("registering account: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO account_items (account, item_id) VALUES (?, ?)`, account, id,
	); err != nil {
		return fmt.Errorf("adding owned item: %w", err)
	}
	return nil
}

// RemoveOwned removes an item id from an account's owned-id list. The
// account's roster entry stays in place even if its list becomes empty.
func RemoveOwned(ctx context.Context, db DB, account, itemID string) error {
	id, err := strconv.ParseInt(itemID, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing item id %q: %w", itemID, err)
	}

	if _, err := db.ExecContext(ctx,
		`DELETE FROM account_items WHERE account = ? AND item_id = ?`, account, id,
	); err != nil {
		return fmt.Errorf("removing owned item: %w", err)
	}
	return nil
}

// OwnedItems returns the item ids an account currently holds, in the order
// they were acquired.
func OwnedItems(ctx context.Context, db DB, account string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT item_id FROM account_items WHERE account = ? ORDER BY pos`, account,
	)
	if err != nil {
		return nil, fmt.Errorf("listing owned items: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning owned item: %w", err)
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	return ids, rows.Err()
}

// Accounts returns the roster of every account that has ever held an item,
// in first-seen order. The roster is append-only and never pruned.
func Accounts(ctx context.Context, db DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT account FROM accounts ORDER BY pos`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
