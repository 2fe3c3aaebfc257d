package store

import (
	"context"
	"testing"

	"github.com/idea404/bos-commerce/internal/db"
)

func TestRecordAndListPurchases(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	PutItem(ctx, database, testItem("0"))

	err := RecordPurchase(ctx, database, "0", "alice", "bob", "0.1", "100000000000000000000000")
	if err != nil {
		t.Fatalf("RecordPurchase: %v", err)
	}

	purchases, err := ListPurchases(ctx, database)
	if err != nil {
		t.Fatalf("ListPurchases: %v", err)
	}
	if len(purchases) != 1 {
		t.Fatalf("expected 1 purchase, got %d", len(purchases))
	}

	p := purchases[0]
	if p.ItemID != "0" || p.Seller != "alice" || p.Buyer != "bob" {
		t.Errorf("unexpected purchase record: %+v", p)
	}
	if p.Amount != "100000000000000000000000" {
		t.Errorf("expected yocto amount, got %q", p.Amount)
	}
	if p.ItemName != "Widget" {
		t.Errorf("expected joined item name 'Widget', got %q", p.ItemName)
	}
}

func TestItemHistoryFiltered(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	PutItem(ctx, database, testItem("0"))
	PutItem(ctx, database, testItem("1"))

	RecordPurchase(ctx, database, "0", "alice", "bob", "1", "1000000000000000000000000")
	RecordPurchase(ctx, database, "1", "alice", "carol", "2", "2000000000000000000000000")
	RecordPurchase(ctx, database, "0", "bob", "carol", "3", "3000000000000000000000000")

	history, err := ItemHistory(ctx, database, "0")
	if err != nil {
		t.Fatalf("ItemHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 records for item 0, got %d", len(history))
	}
	// Newest first.
	if history[0].Buyer != "carol" || history[1].Buyer != "bob" {
		t.Errorf("expected newest-first order, got %+v", history)
	}
}
