package store

import (
	"context"
	"testing"

	"github.com/idea404/bos-commerce/internal/db"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "alice", "hash123")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Account != "alice" {
		t.Errorf("expected account 'alice', got %q", user.Account)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Account != "alice" {
		t.Errorf("expected account 'alice', got %q", got.Account)
	}
}

func TestGetUserByAccount(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "alice", "hash")

	user, err := GetUserByAccount(ctx, database, "alice")
	if err != nil {
		t.Fatalf("GetUserByAccount: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}

	missing, err := GetUserByAccount(ctx, database, "bob")
	if err != nil {
		t.Fatalf("GetUserByAccount: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "alice", "oldhash")
	UpdateUserPassword(ctx, database, user.ID, "newhash")

	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}
}
