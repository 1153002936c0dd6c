package store

import (
	"context"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
)

func TestPutAndGetPhoto(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := PutPhoto(ctx, database, "abc.jpg", []byte("jpeg bytes"), "image/jpeg"); err != nil {
		t.Fatalf("PutPhoto: %v", err)
	}

	data, mime, err := GetPhoto(ctx, database, "abc.jpg")
	if err != nil {
		t.Fatalf("GetPhoto: %v", err)
	}
	if string(data) != "jpeg bytes" {
		t.Errorf("expected photo data, got %q", string(data))
	}
	if mime != "image/jpeg" {
		t.Errorf("expected mime 'image/jpeg', got %q", mime)
	}

	data, _, err = GetPhoto(ctx, database, "missing.jpg")
	if err != nil || data != nil {
		t.Errorf("expected nil data and no error for missing photo, got %v, %v", data, err)
	}
}
