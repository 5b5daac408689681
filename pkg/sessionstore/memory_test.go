package sessionstore

import (
	"context"
	"testing"
)

func TestMemoryBackend_ProjectionIsACopy(t *testing.T) {
	backend := NewMemoryBackend(0)
	ctx := context.Background()

	if err := backend.SetField(ctx, "id1", "a", "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, _, err := backend.FindProjected(ctx, "id1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record["a"] = "mutated"
	record["b"] = "injected"

	fresh, _, err := backend.FindProjected(ctx, "id1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fresh["a"] != "v1" {
		t.Errorf("stored value changed through the returned map: %v", fresh["a"])
	}
	if _, ok := fresh["b"]; ok {
		t.Error("field injected through the returned map")
	}
}

func TestMemoryBackend_Projection(t *testing.T) {
	backend := NewMemoryBackend(0)
	ctx := context.Background()

	if err := backend.SetField(ctx, "id1", "a", "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := backend.SetField(ctx, "id1", "b", "v2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, found, err := backend.FindProjected(ctx, "id1", "a", ExpiresField)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("record missing")
	}
	if len(record) != 1 || record["a"] != "v1" {
		t.Errorf("projection = %v, want only field a", record)
	}
}

func TestMemoryBackend_UnsetLastFieldDropsRecord(t *testing.T) {
	backend := NewMemoryBackend(0)
	ctx := context.Background()

	if err := backend.SetField(ctx, "id1", "a", "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := backend.UnsetField(ctx, "id1", "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, found, err := backend.FindProjected(ctx, "id1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("empty record should not exist")
	}
}

func TestMemoryBackend_CapacityEviction(t *testing.T) {
	backend := NewMemoryBackend(2)
	ctx := context.Background()

	for _, id := range []string{"id1", "id2", "id3"} {
		if err := backend.SetField(ctx, id, "a", "v"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	_, found, err := backend.FindProjected(ctx, "id1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("oldest session should have been evicted at capacity")
	}
	for _, id := range []string{"id2", "id3"} {
		_, found, err := backend.FindProjected(ctx, id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !found {
			t.Errorf("session %q should have survived", id)
		}
	}
}

func TestMemoryBackend_DeleteIsIdempotent(t *testing.T) {
	backend := NewMemoryBackend(0)
	ctx := context.Background()

	if err := backend.SetField(ctx, "id1", "a", "v"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := backend.DeleteRecord(ctx, "id1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// the double-delete two racing expiry readers produce must be a no-op
	if err := backend.DeleteRecord(ctx, "id1"); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}
