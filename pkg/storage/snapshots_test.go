package storage

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sunshinecoast4wd/booking-engine/pkg/db/models"
)

func TestMemorySnapshotsRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemorySnapshots()

	if _, found, err := store.Load(ctx, SlotCart, "sess-1"); err != nil || found {
		t.Fatalf("expected empty slot, found=%v err=%v", found, err)
	}

	if err := store.Save(ctx, SlotCart, "sess-1", `{"participants":2}`); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	payload, found, err := store.Load(ctx, SlotCart, "sess-1")
	if err != nil || !found {
		t.Fatalf("load failed: found=%v err=%v", found, err)
	}
	if payload != `{"participants":2}` {
		t.Fatalf("unexpected payload %q", payload)
	}

	if _, found, _ := store.Load(ctx, SlotFlow, "sess-1"); found {
		t.Fatalf("slots must be isolated by name")
	}
	if _, found, _ := store.Load(ctx, SlotCart, "sess-2"); found {
		t.Fatalf("slots must be isolated by session")
	}

	if err := store.Delete(ctx, SlotCart, "sess-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found, _ := store.Load(ctx, SlotCart, "sess-1"); found {
		t.Fatalf("expected slot cleared after delete")
	}
}

func newSnapshotDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.SnapshotSlot{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestGormSnapshotsUpsertAndExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, err := NewGormSnapshots(newSnapshotDB(t), time.Hour)
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	if err := store.Save(ctx, SlotFlow, "sess-1", `{"current_step":1}`); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Save(ctx, SlotFlow, "sess-1", `{"current_step":2}`); err != nil {
		t.Fatalf("second save should upsert: %v", err)
	}

	payload, found, err := store.Load(ctx, SlotFlow, "sess-1")
	if err != nil || !found {
		t.Fatalf("load failed: found=%v err=%v", found, err)
	}
	if payload != `{"current_step":2}` {
		t.Fatalf("expected latest payload, got %q", payload)
	}

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, found, err := store.Load(ctx, SlotFlow, "sess-1"); err != nil || found {
		t.Fatalf("expired slot should read as absent, found=%v err=%v", found, err)
	}
}

func TestGormSnapshotsRequiresDB(t *testing.T) {
	t.Parallel()
	if _, err := NewGormSnapshots(nil, time.Hour); err == nil {
		t.Fatal("expected error for nil db")
	}
}
