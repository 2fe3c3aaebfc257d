package model

// Item is a single marketplace record. Every field is text on the wire: the
// id is the string form of a sequentially assigned non-negative integer, the
// timestamps are decimal-string milliseconds, and the price is a decimal
// token amount that is empty unless the item is listed for sale.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Owner       string `json:"owner"`
	Price       string `json:"price"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Item statuses. DELETED is absorbing; records are never physically removed.
const (
	StatusCreated = "CREATED"
	StatusForSale = "FORSALE"
	StatusSold    = "SOLD"
	StatusDeleted = "DELETED"
)

// Outcome is the structured result of a marketplace operation. Msg carries
// the first failing guard's message on failure; ItemID is set only by a
// successful create.
type Outcome struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	ItemID  string `json:"item_id,omitempty"`
}
