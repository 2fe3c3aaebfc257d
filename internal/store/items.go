package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/idea404/bos-commerce/internal/model"
)

// PutItem inserts or overwrites the item record at its id. Logical deletion
// is a status change written through here; rows are never removed.
func PutItem(ctx context.Context, db DB, item *model.Item) error {
	id, err := strconv.ParseInt(item.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing item id %q: %w", item.ID, err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO items (id, name, description, image, owner, price, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		     name = excluded.name, description = excluded.description,
		     image = excluded.image, owner = excluded.owner,
		     price = excluded.price, status = excluded.status,
		     created_at = excluded.created_at, updated_at = excluded.updated_at`,
		id, item.Name, item.Description, item.Image, item.Owner,
		item.Price, item.Status, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("putting item: %w", err)
	}
	return nil
}

// GetItem returns the item at the given id, or nil if no record exists. Ids
// are compared as text; a non-numeric id simply matches nothing.
func GetItem(ctx context.Context, db DB, id string) (*model.Item, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, nil
	}

	item := &model.Item{}
	var numID int64
	err = db.QueryRowContext(ctx,
		`SELECT id, name, description, image, owner, price, status, created_at, updated_at
		 FROM items WHERE id = ?`, n,
	).Scan(&numID, &item.Name, &item.Description, &item.Image, &item.Owner,
		&item.Price, &item.Status, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item.ID = strconv.FormatInt(numID, 10)
	return item, nil
}

// AllItems returns every item record in ascending id order, which is exactly
// the order ids were appended to the global id list.
func AllItems(ctx context.Context, db DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description, image, owner, price, status, created_at, updated_at
		 FROM items ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var numID int64
		if err := rows.Scan(&numID, &item.Name, &item.Description, &item.Image, &item.Owner,
			&item.Price, &item.Status, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.ID = strconv.FormatInt(numID, 10)
		items = append(items, item)
	}
	return items, rows.Err()
}
