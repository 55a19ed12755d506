package memory

import (
	"context"
	"testing"
	"time"

	"github.com/eyewearvn/storefront/pkg/errors"
)

func TestSessionStoreExpiry(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	store := NewSessionStore(time.Minute)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Save(ctx, "s1", []byte("x")); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}
	data, err := store.Load(ctx, "s1")
	if err != nil || string(data) != "x" {
		t.Fatalf("Expected x, got %q (%v)", data, err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Load(ctx, "s1"); err == nil {
		t.Error("Expected expired session to be missing")
	} else if _, ok := err.(*errors.ErrNotFound); !ok {
		t.Errorf("Expected ErrNotFound, got %T", err)
	}
}

func TestSessionStoreDelete(t *testing.T) {
	store := NewSessionStore(0)
	ctx := context.Background()
	_ = store.Save(ctx, "s1", []byte("x"))
	_ = store.Delete(ctx, "s1")
	if _, err := store.Load(ctx, "s1"); err == nil {
		t.Error("Expected deleted session to be missing")
	}
}

func TestSessionStorePurgeExpired(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	store := NewSessionStore(time.Minute)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_ = store.Save(ctx, "old", []byte("x"))
	now = now.Add(45 * time.Second)
	_ = store.Save(ctx, "new", []byte("y"))
	now = now.Add(30 * time.Second)

	n, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("Expected purge to succeed, got %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 purged entry, got %d", n)
	}
	if len(store.entries) != 1 {
		t.Errorf("Expected 1 remaining entry, got %d", len(store.entries))
	}
	if _, err := store.Load(ctx, "new"); err != nil {
		t.Errorf("Expected live entry kept, got %v", err)
	}
}
