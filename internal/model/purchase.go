package model

import "time"

// Purchase is an immutable settlement record for a completed sale. Amount is
// the settled payment in smallest currency units (yocto), as a decimal
// string; Price is the listing price the item sold at.
type Purchase struct {
	ID        int64     `json:"id"`
	ItemID    string    `json:"item_id"`
	Seller    string    `json:"seller"`
	Buyer     string    `json:"buyer"`
	Price     string    `json:"price"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
}

// AccountItems is the ownership index projection for one account: the item
// ids it currently holds, in the order they were acquired.
type AccountItems struct {
	Account string   `json:"account"`
	ItemIDs []string `json:"item_ids"`
}
