package market

import (
	"context"
	"database/sql"
	"math/big"
	"testing"
	"time"

	"github.com/idea404/bos-commerce/internal/db"
	"github.com/idea404/bos-commerce/internal/model"
	"github.com/idea404/bos-commerce/internal/store"
)

const contractAccount = "marketplace"

type transferCall struct {
	to     string
	amount *big.Int
}

// fakeTreasury stands in for the host payment capability.
type fakeTreasury struct {
	balance   *big.Int
	transfers []transferCall
}

func (f *fakeTreasury) Balance(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(f.balance), nil
}

func (f *fakeTreasury) Transfer(ctx context.Context, to string, amount *big.Int) error {
	f.transfers = append(f.transfers, transferCall{to: to, amount: new(big.Int).Set(amount)})
	return nil
}

func yocto(t *testing.T, amount string) *big.Int {
	t.Helper()
	n, err := ToYocto(amount)
	if err != nil {
		t.Fatalf("ToYocto(%q): %v", amount, err)
	}
	return n
}

func newTestEngine(t *testing.T) (*Engine, *sql.DB, *fakeTreasury) {
	t.Helper()
	database := db.NewTestDB(t)
	treasury := &fakeTreasury{balance: mustBig("100000000000000000000000000")} // 100 NEAR
	e := New(database, contractAccount, treasury, func() time.Time {
		return time.UnixMilli(1700000000000)
	})
	return e, database, treasury
}

func mustBig(s string) *big.Int {
	n, _ := new(big.Int).SetString(s, 10)
	return n
}

// mustCreate creates a valid item owned by the given account and returns its id.
func mustCreate(t *testing.T, e *Engine, owner string) string {
	t.Helper()
	call := Call{Caller: owner, Deposit: new(big.Int).Set(MinCreateDeposit)}
	outcome, err := e.CreateItem(context.Background(), call, "Sunglasses", "Aviator style", "https://example.com/s.png")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("CreateItem rejected: %s", outcome.Msg)
	}
	return outcome.ItemID
}

// checkInvariants asserts the cross-structure properties that must hold
// after every operation: price is non-empty iff the item is for sale, the
// query surface never returns deleted items, and the ownership index mirrors
// each item's owner field regardless of deletion status, with every id in
// exactly one account's list.
func checkInvariants(t *testing.T, e *Engine, database *sql.DB) {
	t.Helper()
	ctx := context.Background()

	all, err := store.AllItems(ctx, database)
	if err != nil {
		t.Fatalf("AllItems: %v", err)
	}

	for _, item := range all {
		forSale := item.Status == model.StatusForSale
		if forSale != (item.Price != "") {
			t.Errorf("item %s: status %s with price %q violates price/status invariant", item.ID, item.Status, item.Price)
		}
	}

	visible, err := e.GetItems(ctx)
	if err != nil {
		t.Fatalf("GetItems: %v", err)
	}
	for _, item := range visible {
		if item.Status == model.StatusDeleted {
			t.Errorf("GetItems returned deleted item %s", item.ID)
		}
	}

	accounts, err := store.Accounts(ctx, database)
	if err != nil {
		t.Fatalf("Accounts: %v", err)
	}
	holders := make(map[string]string) // item id -> account
	for _, account := range accounts {
		ids, err := store.OwnedItems(ctx, database, account)
		if err != nil {
			t.Fatalf("OwnedItems(%s): %v", account, err)
		}
		for _, id := range ids {
			if prev, dup := holders[id]; dup {
				t.Errorf("item %s appears in both %s's and %s's lists", id, prev, account)
			}
			holders[id] = account
		}
	}
	for _, item := range all {
		if holders[item.ID] != item.Owner {
			t.Errorf("item %s: owner field %q but index holder %q", item.ID, item.Owner, holders[item.ID])
		}
	}
}

func TestCreateItem(t *testing.T) {
	e, database, _ := newTestEngine(t)
	ctx := context.Background()

	call := Call{Caller: "alice", Deposit: new(big.Int).Set(MinCreateDeposit)}
	outcome, err := e.CreateItem(ctx, call, "Sunglasses", "Aviator style", "https://example.com/s.png")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("expected success, got %q", outcome.Msg)
	}
	if outcome.ItemID != "0" {
		t.Errorf("expected first item id '0', got %q", outcome.ItemID)
	}

	items, err := e.GetItems(ctx)
	if err != nil {
		t.Fatalf("GetItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.Name != "Sunglasses" || item.Description != "Aviator style" || item.Image != "https://example.com/s.png" {
		t.Errorf("item fields don't round-trip: %+v", item)
	}
	if item.Owner != "alice" {
		t.Errorf("expected owner 'alice', got %q", item.Owner)
	}
	if item.Status != model.StatusCreated {
		t.Errorf("expected status CREATED, got %q", item.Status)
	}
	if item.Price != "" {
		t.Errorf("expected empty price, got %q", item.Price)
	}
	if item.CreatedAt != "1700000000000" || item.UpdatedAt != "1700000000000" {
		t.Errorf("expected millis timestamps from the clock, got %q / %q", item.CreatedAt, item.UpdatedAt)
	}

	checkInvariants(t, e, database)
}

func TestCreateItemSequentialIDs(t *testing.T) {
	e, _, _ := newTestEngine(t)

	if id := mustCreate(t, e, "alice"); id != "0" {
		t.Errorf("expected id '0', got %q", id)
	}
	if id := mustCreate(t, e, "bob"); id != "1" {
		t.Errorf("expected id '1', got %q", id)
	}
	if id := mustCreate(t, e, "alice"); id != "2" {
		t.Errorf("expected id '2', got %q", id)
	}
}

func TestCreateItemGuardOrder(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	deposit := Call{Caller: "alice", Deposit: new(big.Int).Set(MinCreateDeposit)}

	tests := []struct {
		name string
		call Call
		args [3]any
		want string
	}{
		{"missing name", deposit, [3]any{nil, "d", "i"}, MsgNameRequired},
		{"empty name", deposit, [3]any{"", "d", "i"}, MsgNameRequired},
		{"numeric name", deposit, [3]any{float64(42), "d", "i"}, MsgNameRequired},
		{"missing description", deposit, [3]any{"n", nil, "i"}, MsgDescriptionRequired},
		{"missing image", deposit, [3]any{"n", "d", ""}, MsgImageRequired},
		{"no deposit", Call{Caller: "alice"}, [3]any{"n", "d", "i"}, MsgMinimumDeposit},
		{"low deposit", Call{Caller: "alice", Deposit: big.NewInt(1)}, [3]any{"n", "d", "i"}, MsgMinimumDeposit},
	}

	for _, tt := range tests {
		outcome, err := e.CreateItem(ctx, tt.call, tt.args[0], tt.args[1], tt.args[2])
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if outcome.Success {
			t.Errorf("%s: expected rejection", tt.name)
		}
		if outcome.Msg != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, outcome.Msg)
		}
	}

	// No guard failure left anything behind.
	items, _ := e.GetItems(ctx)
	if len(items) != 0 {
		t.Errorf("expected no items after rejected creates, got %d", len(items))
	}
}

func TestListItem(t *testing.T) {
	e, database, _ := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, "alice")

	outcome, err := e.ListItem(ctx, Call{Caller: "alice"}, id, "0.1")
	if err != nil {
		t.Fatalf("ListItem: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("expected success, got %q", outcome.Msg)
	}

	item, _ := store.GetItem(ctx, database, id)
	if item.Status != model.StatusForSale {
		t.Errorf("expected FORSALE, got %q", item.Status)
	}
	if item.Price != "0.1" {
		t.Errorf("expected price '0.1', got %q", item.Price)
	}

	checkInvariants(t, e, database)
}

func TestListItemGuardOrder(t *testing.T) {
	e, database, _ := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, "alice")

	tests := []struct {
		name   string
		caller string
		itemID any
		price  any
		want   string
	}{
		{"missing id", "alice", nil, "0.1", MsgItemIDRequired},
		{"empty id", "alice", "", "0.1", MsgItemIDRequired},
		{"unknown id", "alice", "42", "0.1", MsgItemNotFound},
		{"not the owner", "bob", id, "0.1", MsgNotOwner},
		{"missing price", "alice", id, nil, MsgPriceRequired},
		{"non-numeric price", "alice", id, "abc", MsgPricePositive},
		{"zero price", "alice", id, "0", MsgPricePositive},
		{"negative price", "alice", id, "-1", MsgPricePositive},
	}

	for _, tt := range tests {
		outcome, err := e.ListItem(ctx, Call{Caller: tt.caller}, tt.itemID, tt.price)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if outcome.Success {
			t.Errorf("%s: expected rejection", tt.name)
		}
		if outcome.Msg != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, outcome.Msg)
		}
	}

	// Still unlisted after all the rejections.
	item, _ := store.GetItem(ctx, database, id)
	if item.Status != model.StatusCreated || item.Price != "" {
		t.Errorf("expected untouched CREATED item, got status %q price %q", item.Status, item.Price)
	}
}

func TestListItemAlreadyListed(t *testing.T) {
	e, database, _ := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, "alice")
	e.ListItem(ctx, Call{Caller: "alice"}, id, "0.1")

	// Relisting fails on the status guard, which is checked before
	// ownership, so the owner and a stranger get the same message.
	for _, caller := range []string{"alice", "bob"} {
		outcome, err := e.ListItem(ctx, Call{Caller: caller}, id, "5")
		if err != nil {
			t.Fatalf("ListItem: %v", err)
		}
		if outcome.Success || outcome.Msg != MsgAlreadyListed {
			t.Errorf("caller %s: expected %q, got success=%v msg=%q", caller, MsgAlreadyListed, outcome.Success, outcome.Msg)
		}
	}

	item, _ := store.GetItem(ctx, database, id)
	if item.Price != "0.1" {
		t.Errorf("expected price unchanged at '0.1', got %q", item.Price)
	}
}

func TestListItemNormalizesPrice(t *testing.T) {
	e, database, _ := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, "alice")
	e.ListItem(ctx, Call{Caller: "alice"}, id, "0.10")

	item, _ := store.GetItem(ctx, database, id)
	if item.Price != "0.1" {
		t.Errorf("expected canonical price '0.1', got %q", item.Price)
	}
}

func TestDelistItem(t *testing.T) {
	e, database, _ := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, "alice")
	e.ListItem(ctx, Call{Caller: "alice"}, id, "0.1")

	outcome, err := e.DelistItem(ctx, Call{Caller: "alice"}, id)
	if err != nil {
		t.Fatalf("DelistItem: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("expected success, got %q", outcome.Msg)
	}

	item, _ := store.GetItem(ctx, database, id)
	if item.Status != model.StatusCreated {
		t.Errorf("expected CREATED after delist, got %q", item.Status)
	}
	if item.Price != "" {
		t.Errorf("expected empty price after delist, got %q", item.Price)
	}

	checkInvariants(t, e, database)
}

func TestDelistItemGuards(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, "alice")

	// Not listed yet.
	outcome, _ := e.DelistItem(ctx, Call{Caller: "alice"}, id)
	if outcome.Msg != MsgNotListed {
		t.Errorf("expected %q, got %q", MsgNotListed, outcome.Msg)
	}

	// Ownership is checked before the status, so a stranger is turned away
	// even on an unlisted item.
	outcome, _ = e.DelistItem(ctx, Call{Caller: "bob"}, id)
	if outcome.Msg != MsgNotOwner {
		t.Errorf("expected %q, got %q", MsgNotOwner, outcome.Msg)
	}
}

func TestDeleteItem(t *testing.T) {
	e, database, _ := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, "alice")

	outcome, err := e.DeleteItem(ctx, Call{Caller: "alice"}, id)
	if err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("expected success, got %q", outcome.Msg)
	}

	// Gone from the query surface but retained in storage.
	items, _ := e.GetItems(ctx)
	if len(items) != 0 {
		t.Errorf("expected no visible items, got %d", len(items))
	}
	item, _ := store.GetItem(ctx, database, id)
	if item == nil || item.Status != model.StatusDeleted {
		t.Fatalf("expected retained DELETED record, got %+v", item)
	}

	// Deletion never touches the ownership index.
	ids, _ := store.OwnedItems(ctx, database, "alice")
	if len(ids) != 1 || ids[0] != id {
		t.Errorf("expected alice's list untouched, got %v", ids)
	}

	checkInvariants(t, e, database)
}

func TestDeleteItemGuards(t *testing.T) {
	e, database, _ := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, "alice")
	e.ListItem(ctx, Call{Caller: "alice"}, id, "0.1")

	// A listed item cannot be deleted.
	outcome, _ := e.DeleteItem(ctx, Call{Caller: "alice"}, id)
	if outcome.Msg != MsgDeleteListed {
		t.Errorf("expected %q, got %q", MsgDeleteListed, outcome.Msg)
	}
	item, _ := store.GetItem(ctx, database, id)
	if item.Status != model.StatusForSale {
		t.Errorf("expected item still FORSALE, got %q", item.Status)
	}

	outcome, _ = e.DeleteItem(ctx, Call{Caller: "alice"}, "42")
	if outcome.Msg != MsgItemNotFound {
		t.Errorf("expected %q, got %q", MsgItemNotFound, outcome.Msg)
	}
	outcome, _ = e.DeleteItem(ctx, Call{Caller: "alice"}, nil)
	if outcome.Msg != MsgItemIDRequired {
		t.Errorf("expected %q, got %q", MsgItemIDRequired, outcome.Msg)
	}
}

func TestPurchaseItem(t *testing.T) {
	e, database, treasury := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, "alice")
	e.ListItem(ctx, Call{Caller: "alice"}, id, "0.1")

	outcome, err := e.PurchaseItem(ctx, Call{Caller: "bob", Deposit: yocto(t, "0.1")}, id)
	if err != nil {
		t.Fatalf("PurchaseItem: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("expected success, got %q", outcome.Msg)
	}

	item, _ := store.GetItem(ctx, database, id)
	if item.Owner != "bob" {
		t.Errorf("expected owner 'bob', got %q", item.Owner)
	}
	if item.Status != model.StatusSold {
		t.Errorf("expected SOLD, got %q", item.Status)
	}
	if item.Price != "" {
		t.Errorf("expected empty price after sale, got %q", item.Price)
	}

	// Ownership moved from seller to buyer; the seller stays on the roster.
	aliceIDs, _ := store.OwnedItems(ctx, database, "alice")
	if len(aliceIDs) != 0 {
		t.Errorf("expected alice to own nothing, got %v", aliceIDs)
	}
	bobIDs, _ := store.OwnedItems(ctx, database, "bob")
	if len(bobIDs) != 1 || bobIDs[0] != id {
		t.Errorf("expected bob to own [%s], got %v", id, bobIDs)
	}
	accounts, _ := store.Accounts(ctx, database)
	if len(accounts) != 2 {
		t.Errorf("expected both accounts on the roster, got %v", accounts)
	}

	// The seller was paid exactly the price, not the attached deposit.
	if len(treasury.transfers) != 1 {
		t.Fatalf("expected 1 settlement transfer, got %d", len(treasury.transfers))
	}
	tr := treasury.transfers[0]
	if tr.to != "alice" {
		t.Errorf("expected transfer to 'alice', got %q", tr.to)
	}
	if tr.amount.Cmp(yocto(t, "0.1")) != 0 {
		t.Errorf("expected transfer of 0.1 NEAR in yocto, got %s", tr.amount)
	}

	// A settlement record was written.
	history, _ := store.ItemHistory(ctx, database, id)
	if len(history) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(history))
	}
	if history[0].Seller != "alice" || history[0].Buyer != "bob" || history[0].Price != "0.1" {
		t.Errorf("unexpected history record: %+v", history[0])
	}

	checkInvariants(t, e, database)
}

func TestPurchaseOwnItem(t *testing.T) {
	e, database, _ := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, "alice")
	e.ListItem(ctx, Call{Caller: "alice"}, id, "0.1")

	outcome, err := e.PurchaseItem(ctx, Call{Caller: "alice", Deposit: yocto(t, "1")}, id)
	if err != nil {
		t.Fatalf("PurchaseItem: %v", err)
	}
	if outcome.Success || outcome.Msg != MsgOwnPurchase {
		t.Errorf("expected %q, got success=%v msg=%q", MsgOwnPurchase, outcome.Success, outcome.Msg)
	}

	item, _ := store.GetItem(ctx, database, id)
	if item.Owner != "alice" || item.Status != model.StatusForSale {
		t.Errorf("expected unchanged listing, got owner %q status %q", item.Owner, item.Status)
	}
}

func TestPurchaseItemGuardOrder(t *testing.T) {
	e, database, treasury := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, "alice")

	// Not for sale yet.
	outcome, _ := e.PurchaseItem(ctx, Call{Caller: "bob", Deposit: yocto(t, "1")}, id)
	if outcome.Msg != MsgNotForSale {
		t.Errorf("expected %q, got %q", MsgNotForSale, outcome.Msg)
	}

	e.ListItem(ctx, Call{Caller: "alice"}, id, "0.5")

	// Underpayment.
	outcome, _ = e.PurchaseItem(ctx, Call{Caller: "bob", Deposit: yocto(t, "0.4")}, id)
	if outcome.Msg != MsgDepositTooLow {
		t.Errorf("expected %q, got %q", MsgDepositTooLow, outcome.Msg)
	}

	// Nothing changed and nothing was paid out.
	item, _ := store.GetItem(ctx, database, id)
	if item.Owner != "alice" || item.Status != model.StatusForSale || item.Price != "0.5" {
		t.Errorf("expected unchanged listing, got %+v", item)
	}
	if len(treasury.transfers) != 0 {
		t.Errorf("expected no transfers, got %d", len(treasury.transfers))
	}

	outcome, _ = e.PurchaseItem(ctx, Call{Caller: "bob", Deposit: yocto(t, "1")}, "42")
	if outcome.Msg != MsgItemNotFound {
		t.Errorf("expected %q, got %q", MsgItemNotFound, outcome.Msg)
	}
	outcome, _ = e.PurchaseItem(ctx, Call{Caller: "bob", Deposit: yocto(t, "1")}, "")
	if outcome.Msg != MsgItemIDRequired {
		t.Errorf("expected %q, got %q", MsgItemIDRequired, outcome.Msg)
	}
}

func TestPurchaseOverpaymentRetained(t *testing.T) {
	e, _, treasury := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, "alice")
	e.ListItem(ctx, Call{Caller: "alice"}, id, "0.1")

	// Bob overpays; the seller still receives exactly the price.
	outcome, err := e.PurchaseItem(ctx, Call{Caller: "bob", Deposit: yocto(t, "3")}, id)
	if err != nil || !outcome.Success {
		t.Fatalf("PurchaseItem: err=%v msg=%q", err, outcome.Msg)
	}
	if treasury.transfers[0].amount.Cmp(yocto(t, "0.1")) != 0 {
		t.Errorf("expected settlement of the price only, got %s", treasury.transfers[0].amount)
	}
}

func TestPurchaseSettlementBalanceInvariant(t *testing.T) {
	e, database, treasury := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, "alice")
	e.ListItem(ctx, Call{Caller: "alice"}, id, "0.1")

	// The settlement amount must be strictly below the contract balance;
	// equality is a fatal invariant violation, not a caller error.
	treasury.balance = yocto(t, "0.1")

	_, err := e.PurchaseItem(ctx, Call{Caller: "bob", Deposit: yocto(t, "0.1")}, id)
	if err == nil {
		t.Fatal("expected fatal error when settlement would drain the balance")
	}

	// The whole operation rolled back: listing, index and history untouched.
	item, _ := store.GetItem(ctx, database, id)
	if item.Owner != "alice" || item.Status != model.StatusForSale || item.Price != "0.1" {
		t.Errorf("expected listing unchanged after rollback, got %+v", item)
	}
	bobIDs, _ := store.OwnedItems(ctx, database, "bob")
	if len(bobIDs) != 0 {
		t.Errorf("expected bob to own nothing after rollback, got %v", bobIDs)
	}
	history, _ := store.ItemHistory(ctx, database, id)
	if len(history) != 0 {
		t.Errorf("expected no history after rollback, got %d records", len(history))
	}
	if len(treasury.transfers) != 0 {
		t.Errorf("expected no transfer attempt, got %d", len(treasury.transfers))
	}

	checkInvariants(t, e, database)
}

func TestNonOwnerMutationsRejected(t *testing.T) {
	e, database, _ := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, "alice")
	bob := Call{Caller: "bob"}

	if outcome, _ := e.DeleteItem(ctx, bob, id); outcome.Msg != MsgNotOwner {
		t.Errorf("delete: expected %q, got %q", MsgNotOwner, outcome.Msg)
	}
	if outcome, _ := e.ListItem(ctx, bob, id, "1"); outcome.Msg != MsgNotOwner {
		t.Errorf("list: expected %q, got %q", MsgNotOwner, outcome.Msg)
	}
	if outcome, _ := e.DelistItem(ctx, bob, id); outcome.Msg != MsgNotOwner {
		t.Errorf("delist: expected %q, got %q", MsgNotOwner, outcome.Msg)
	}

	item, _ := store.GetItem(ctx, database, id)
	if item.Owner != "alice" || item.Status != model.StatusCreated {
		t.Errorf("expected item unchanged, got %+v", item)
	}
}

func TestListDelistCycle(t *testing.T) {
	e, database, _ := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, "alice")

	// An item can bounce between CREATED and FORSALE any number of times.
	for i := 0; i < 3; i++ {
		if outcome, _ := e.ListItem(ctx, Call{Caller: "alice"}, id, "1.5"); !outcome.Success {
			t.Fatalf("cycle %d list: %s", i, outcome.Msg)
		}
		if outcome, _ := e.DelistItem(ctx, Call{Caller: "alice"}, id); !outcome.Success {
			t.Fatalf("cycle %d delist: %s", i, outcome.Msg)
		}
		checkInvariants(t, e, database)
	}
}

func TestUpdatedAtNotRefreshed(t *testing.T) {
	e, database, _ := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, e, "alice")

	// Advance the clock; subsequent status changes must not restamp the
	// record. Both timestamps stay at creation time.
	e.now = func() time.Time { return time.UnixMilli(1800000000000) }
	e.ListItem(ctx, Call{Caller: "alice"}, id, "0.1")
	e.DelistItem(ctx, Call{Caller: "alice"}, id)

	item, _ := store.GetItem(ctx, database, id)
	if item.CreatedAt != "1700000000000" {
		t.Errorf("created_at changed: %q", item.CreatedAt)
	}
	if item.UpdatedAt != "1700000000000" {
		t.Errorf("updated_at was refreshed: %q", item.UpdatedAt)
	}
}

func TestGetItemsFiltersDeleted(t *testing.T) {
	e, database, _ := newTestEngine(t)
	ctx := context.Background()

	mustCreate(t, e, "alice") // id 0
	id1 := mustCreate(t, e, "alice")
	mustCreate(t, e, "bob") // id 2

	e.DeleteItem(ctx, Call{Caller: "alice"}, id1)

	items, _ := e.GetItems(ctx)
	if len(items) != 2 {
		t.Fatalf("expected 2 visible items, got %d", len(items))
	}
	if items[0].ID != "0" || items[1].ID != "2" {
		t.Errorf("expected ids [0 2] in order, got [%s %s]", items[0].ID, items[1].ID)
	}

	// Ids of deleted items are never reused.
	if id := mustCreate(t, e, "alice"); id != "3" {
		t.Errorf("expected next id '3', got %q", id)
	}

	checkInvariants(t, e, database)
}
