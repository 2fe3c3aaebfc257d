package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/idea404/bos-commerce/internal/model"
)

// RecordPurchase appends an immutable settlement record for a completed sale.
func RecordPurchase(ctx context.Context, db DB, itemID, seller, buyer, price, amount string) error {
	id, err := strconv.ParseInt(itemID, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing item id %q: %w", itemID, err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO purchases (item_id, seller, buyer, price, amount)
		 VALUES (?, ?, ?, ?, ?)`,
		id, seller, buyer, price, amount,
	)
	if err != nil {
		return fmt.Errorf("recording purchase: %w", err)
	}
	return nil
}

// ItemHistory returns all settlement records for one item, newest first.
func ItemHistory(ctx context.Context, db DB, itemID string) ([]model.Purchase, error) {
	id, err := strconv.ParseInt(itemID, 10, 64)
	if err != nil {
		return nil, nil
	}

	rows, err := db.QueryContext(ctx,
		`SELECT p.id, p.item_id, p.seller, p.buyer, p.price, p.amount, p.created_at,
		        i.name AS item_name
		 FROM purchases p
		 JOIN items i ON i.id = p.item_id
		 WHERE p.item_id = ?
		 ORDER BY p.created_at DESC, p.id DESC`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("getting item history: %w", err)
	}
	defer rows.Close()

	return scanPurchases(rows)
}

// ListPurchases returns every settlement record, newest first.
func ListPurchases(ctx context.Context, db DB) ([]model.Purchase, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT p.id, p.item_id, p.seller, p.buyer, p.price, p.amount, p.created_at,
		        i.name AS item_name
		 FROM purchases p
		 JOIN items i ON i.id = p.item_id
		 ORDER BY p.created_at DESC, p.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	defer rows.Close()

	return scanPurchases(rows)
}

func scanPurchases(rows *sql.Rows) ([]model.Purchase, error) {
	var purchases []model.Purchase
	for rows.Next() {
		var p model.Purchase
		var itemID int64
		if err := rows.Scan(&p.ID, &itemID, &p.Seller, &p.Buyer, &p.Price, &p.Amount,
			&p.CreatedAt, &p.ItemName); err != nil {
			return nil, fmt.Errorf("scanning purchase: %w", err)
		}
		p.ItemID = strconv.FormatInt(itemID, 10)
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}
