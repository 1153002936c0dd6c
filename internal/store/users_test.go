package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "moderator1", "hash123", model.RoleModerator)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Role != model.RoleModerator {
		t.Errorf("expected role 'moderator', got %q", user.Role)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "moderator1" {
		t.Errorf("expected username 'moderator1', got %q", got.Username)
	}
}

func TestGetActiveUserByUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	alice, _ := CreateUser(ctx, database, "alice", "hash", model.RoleAdmin)

	user, err := GetActiveUserByUsername(ctx, database, "alice")
	if err != nil {
		t.Fatalf("GetActiveUserByUsername: %v", err)
	}
	if user == nil || user.ID != alice.ID {
		t.Fatalf("expected alice, got %+v", user)
	}

	DeleteUser(ctx, database, alice.ID)
	user, err = GetActiveUserByUsername(ctx, database, "alice")
	if err != nil {
		t.Fatalf("GetActiveUserByUsername: %v", err)
	}
	if user != nil {
		t.Error("expected deleted user to be hidden")
	}
}

func TestDeletedUsernameCanBeReused(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, _ := CreateUser(ctx, database, "reuse", "hash", model.RoleModerator)
	if _, err := CreateUser(ctx, database, "reuse", "hash", model.RoleModerator); err == nil {
		t.Fatal("expected duplicate active username to fail")
	}

	DeleteUser(ctx, database, first.ID)
	if _, err := CreateUser(ctx, database, "reuse", "hash", model.RoleModerator); err != nil {
		t.Fatalf("expected username reuse after delete, got %v", err)
	}

	n, _ := CountUsers(ctx, database)
	if n != 1 {
		t.Errorf("expected 1 active user, got %d", n)
	}
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "pwuser", "oldhash", model.RoleModerator)
	if err := UpdateUserPassword(ctx, database, user.ID, "newhash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}

	if err := UpdateUserPassword(ctx, database, 999, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "deleteme", "hash", model.RoleModerator)
	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	users, _ := ListUsers(ctx, database)
	if len(users) != 0 {
		t.Errorf("expected 0 users after delete, got %d", len(users))
	}
	if err := DeleteUser(ctx, database, user.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}
