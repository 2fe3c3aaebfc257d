// Package market implements the marketplace state machine: item lifecycle
// transitions, the guards in front of them, and payment settlement on
// purchase. It is the single writer for the item store and the ownership
// index; every mutating operation runs as one SQLite transaction, so a
// failed guard or a fatal settlement check leaves no partial state behind.
package market

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/idea404/bos-commerce/internal/model"
	"github.com/idea404/bos-commerce/internal/store"
)

// Guard messages are the external contract: the first failing guard's
// message is returned verbatim and callers match on it. Do not reword.
const (
	MsgNameRequired        = "Item name is required"
	MsgDescriptionRequired = "Item description is required"
	MsgImageRequired       = "Item image is required"
	MsgMinimumDeposit      = "Minimum deposit is 0.1 NEAR"
	MsgItemIDRequired      = "Item ID is required"
	MsgItemNotFound        = "Item does not exist"
	MsgNotOwner            = "You are not the owner of this item"
	MsgDeleteListed        = "Cannot delete an item that is listed for sale"
	MsgAlreadyListed       = "Item is already listed for sale"
	MsgPriceRequired       = "Price is required"
	MsgPricePositive       = "Price must be greater than zero"
	MsgNotListed           = "Item is not listed for sale"
	MsgNotForSale          = "Item is not for sale"
	MsgOwnPurchase         = "You cannot purchase your own item"
	MsgDepositTooLow       = "Attached deposit is less than the item price"
)

// Treasury is the host capability for contract funds: the contract's current
// balance and one-way outgoing transfers. Transfer outcomes are not observed
// by marketplace operations.
type Treasury interface {
	Balance(ctx context.Context) (*big.Int, error)
	Transfer(ctx context.Context, to string, amount *big.Int) error
}

// Call carries the per-operation host context: the account that initiated
// the operation and the payment attached to it, in yocto units. A nil
// Deposit means nothing was attached.
type Call struct {
	Caller  string
	Deposit *big.Int
}

// Engine drives the item lifecycle. Dependencies are constructor-injected;
// there is no ambient state.
type Engine struct {
	db       *sql.DB
	account  string // the contract's own account; settlement must never target it
	treasury Treasury
	now      func() time.Time
}

// New creates an Engine. account is the marketplace's own treasury account
// and now supplies timestamps (pass time.Now outside of tests).
func New(db *sql.DB, account string, treasury Treasury, now func() time.Time) *Engine {
	return &Engine{db: db, account: account, treasury: treasury, now: now}
}

// asText returns the value as a non-empty string. Operation inputs cross an
// untyped boundary, so the runtime type is checked before use; anything that
// is not a non-empty string fails the guard.
func asText(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func fail(msg string) model.Outcome {
	return model.Outcome{Success: false, Msg: msg}
}

func (e *Engine) millis() string {
	return strconv.FormatInt(e.now().UnixMilli(), 10)
}

func (e *Engine) begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return tx, nil
}

func commit(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// CreateItem allocates the next sequential id and stores a new CREATED item
// owned by the caller. Requires the flat minimum deposit.
func (e *Engine) CreateItem(ctx context.Context, call Call, name, description, image any) (model.Outcome, error) {
	n, ok := asText(name)
	if !ok {
		return fail(MsgNameRequired), nil
	}
	d, ok := asText(description)
	if !ok {
		return fail(MsgDescriptionRequired), nil
	}
	img, ok := asText(image)
	if !ok {
		return fail(MsgImageRequired), nil
	}
	if call.Deposit == nil || call.Deposit.Cmp(MinCreateDeposit) < 0 {
		return fail(MsgMinimumDeposit), nil
	}

	tx, err := e.begin(ctx)
	if err != nil {
		return model.Outcome{}, err
	}
	defer tx.Rollback()

	id, err := store.NextItemID(ctx, tx)
	if err != nil {
		return model.Outcome{}, err
	}

	now := e.millis()
	item := &model.Item{
		ID:          strconv.FormatInt(id, 10),
		Name:        n,
		Description: d,
		Image:       img,
		Owner:       call.Caller,
		Price:       "",
		Status:      model.StatusCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.PutItem(ctx, tx, item); err != nil {
		return model.Outcome{}, err
	}
	if err := store.AddOwned(ctx, tx, call.Caller, item.ID); err != nil {
		return model.Outcome{}, err
	}
	if err := commit(tx); err != nil {
		return model.Outcome{}, err
	}

	slog.Info("item created", "id", item.ID, "owner", call.Caller)
	return model.Outcome{Success: true, Msg: "Item created", ItemID: item.ID}, nil
}

// DeleteItem marks a caller-owned item DELETED. The record is retained and
// the ownership index is untouched; all read access filters the status out.
// A listed item must be delisted first.
func (e *Engine) DeleteItem(ctx context.Context, call Call, itemID any) (model.Outcome, error) {
	id, ok := asText(itemID)
	if !ok {
		return fail(MsgItemIDRequired), nil
	}

	tx, err := e.begin(ctx)
	if err != nil {
		return model.Outcome{}, err
	}
	defer tx.Rollback()

	item, err := store.GetItem(ctx, tx, id)
	if err != nil {
		return model.Outcome{}, err
	}
	if item == nil {
		return fail(MsgItemNotFound), nil
	}
	if item.Owner != call.Caller {
		return fail(MsgNotOwner), nil
	}
	if item.Status == model.StatusForSale {
		return fail(MsgDeleteListed), nil
	}

	item.Status = model.StatusDeleted
	if err := store.PutItem(ctx, tx, item); err != nil {
		return model.Outcome{}, err
	}
	if err := commit(tx); err != nil {
		return model.Outcome{}, err
	}

	slog.Info("item deleted", "id", id, "owner", call.Caller)
	return model.Outcome{Success: true, Msg: "Item deleted"}, nil
}

// ListItem puts a caller-owned item up for sale at the given price. The
// price is normalized to its canonical decimal string form.
func (e *Engine) ListItem(ctx context.Context, call Call, itemID, price any) (model.Outcome, error) {
	id, ok := asText(itemID)
	if !ok {
		return fail(MsgItemIDRequired), nil
	}

	tx, err := e.begin(ctx)
	if err != nil {
		return model.Outcome{}, err
	}
	defer tx.Rollback()

	item, err := store.GetItem(ctx, tx, id)
	if err != nil {
		return model.Outcome{}, err
	}
	if item == nil {
		return fail(MsgItemNotFound), nil
	}
	if item.Status == model.StatusForSale {
		return fail(MsgAlreadyListed), nil
	}
	if item.Owner != call.Caller {
		return fail(MsgNotOwner), nil
	}
	p, ok := asText(price)
	if !ok {
		return fail(MsgPriceRequired), nil
	}
	dec, err := decimal.NewFromString(p)
	if err != nil || dec.Sign() <= 0 {
		return fail(MsgPricePositive), nil
	}

	item.Price = dec.String()
	item.Status = model.StatusForSale
	if err := store.PutItem(ctx, tx, item); err != nil {
		return model.Outcome{}, err
	}
	if err := commit(tx); err != nil {
		return model.Outcome{}, err
	}

	slog.Info("item listed", "id", id, "owner", call.Caller, "price", item.Price)
	return model.Outcome{Success: true, Msg: "Item listed for sale"}, nil
}

// DelistItem takes a caller-owned item off sale, returning it to CREATED and
// clearing the price.
func (e *Engine) DelistItem(ctx context.Context, call Call, itemID any) (model.Outcome, error) {
	id, ok := asText(itemID)
	if !ok {
		return fail(MsgItemIDRequired), nil
	}

	tx, err := e.begin(ctx)
	if err != nil {
		return model.Outcome{}, err
	}
	defer tx.Rollback()

	item, err := store.GetItem(ctx, tx, id)
	if err != nil {
		return model.Outcome{}, err
	}
	if item == nil {
		return fail(MsgItemNotFound), nil
	}
	if item.Owner != call.Caller {
		return fail(MsgNotOwner), nil
	}
	if item.Status != model.StatusForSale {
		return fail(MsgNotListed), nil
	}

	item.Price = ""
	item.Status = model.StatusCreated
	if err := store.PutItem(ctx, tx, item); err != nil {
		return model.Outcome{}, err
	}
	if err := commit(tx); err != nil {
		return model.Outcome{}, err
	}

	slog.Info("item delisted", "id", id, "owner", call.Caller)
	return model.Outcome{Success: true, Msg: "Item delisted"}, nil
}

// PurchaseItem moves ownership and funds together: the item leaves the
// seller's index list and joins the buyer's, the record flips to SOLD with
// the price cleared, and the price amount is transferred to the seller.
// The attached deposit must cover the price in yocto units; any overpayment
// is retained by the contract.
//
// The settlement preconditions are contract invariants, not caller input
// validation: violating one returns an error, the transaction rolls back,
// and no transfer is attempted.
func (e *Engine) PurchaseItem(ctx context.Context, call Call, itemID any) (model.Outcome, error) {
	id, ok := asText(itemID)
	if !ok {
		return fail(MsgItemIDRequired), nil
	}

	tx, err := e.begin(ctx)
	if err != nil {
		return model.Outcome{}, err
	}
	defer tx.Rollback()

	item, err := store.GetItem(ctx, tx, id)
	if err != nil {
		return model.Outcome{}, err
	}
	if item == nil {
		return fail(MsgItemNotFound), nil
	}
	if item.Status != model.StatusForSale {
		return fail(MsgNotForSale), nil
	}
	if call.Caller == item.Owner {
		return fail(MsgOwnPurchase), nil
	}

	amount, err := MinimumDeposit(item.Price)
	if err != nil {
		// A FORSALE item always carries a parseable price; reaching this
		// means the store is corrupt.
		return model.Outcome{}, fmt.Errorf("stored price for item %s: %w", id, err)
	}
	if call.Deposit == nil || call.Deposit.Cmp(amount) < 0 {
		return fail(MsgDepositTooLow), nil
	}

	seller := item.Owner
	price := item.Price

	// Remove from the old owner first, then add to the new one, so the id is
	// never present in two lists.
	if err := store.RemoveOwned(ctx, tx, seller, id); err != nil {
		return model.Outcome{}, err
	}
	if err := store.AddOwned(ctx, tx, call.Caller, id); err != nil {
		return model.Outcome{}, err
	}

	item.Owner = call.Caller
	item.Price = ""
	item.Status = model.StatusSold
	if err := store.PutItem(ctx, tx, item); err != nil {
		return model.Outcome{}, err
	}
	if err := store.RecordPurchase(ctx, tx, id, seller, call.Caller, price, amount.String()); err != nil {
		return model.Outcome{}, err
	}

	// Settlement preconditions, checked before commit so a violation
	// discards the staged ownership change.
	if amount.Sign() <= 0 {
		return model.Outcome{}, fmt.Errorf("settlement amount %s is not positive", amount)
	}
	if seller == e.account {
		return model.Outcome{}, fmt.Errorf("settlement would pay the contract's own account %q", e.account)
	}
	balance, err := e.treasury.Balance(ctx)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("reading contract balance: %w", err)
	}
	if amount.Cmp(balance) >= 0 {
		return model.Outcome{}, fmt.Errorf("settlement amount %s is not below contract balance %s", amount, balance)
	}

	if err := commit(tx); err != nil {
		return model.Outcome{}, err
	}

	// One-way instruction; the transfer's outcome is the host's concern.
	if err := e.treasury.Transfer(ctx, seller, amount); err != nil {
		slog.Error("settlement transfer failed", "item", id, "seller", seller, "amount", amount.String(), "error", err)
	}

	slog.Info("item purchased", "id", id, "seller", seller, "buyer", call.Caller, "amount", amount.String())
	return model.Outcome{Success: true, Msg: "Item purchased"}, nil
}

// GetItems returns every item whose status is not DELETED, in ascending id
// order. Read-only; never consults the ownership index.
func (e *Engine) GetItems(ctx context.Context) ([]model.Item, error) {
	all, err := store.AllItems(ctx, e.db)
	if err != nil {
		return nil, err
	}

	items := make([]model.Item, 0, len(all))
	for _, item := range all {
		if item.Status == model.StatusDeleted {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
