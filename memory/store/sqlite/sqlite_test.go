package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tripwise/tripwise-go-sdk/memory"
)

func pad(v []float32) []float32 {
	out := make([]float32, memory.Dimensions)
	copy(out, v)
	return out
}

func insert(t *testing.T, store *Store, id string, vec []float32) {
	t.Helper()
	now := time.Now().UTC()
	err := store.Insert(context.Background(), &memory.Record{
		ID:        id,
		Content:   "content " + id,
		Embedding: memory.Normalize(pad(vec)),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("insert %s: %v", id, err)
	}
}

func TestRoundTripSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memories.db")

	store, err := New(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	insert(t, store, "a", []float32{1})
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	records, err := reopened.Search(context.Background(), memory.Normalize(pad([]float32{1})), 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(records) != 1 || records[0].ID != "a" {
		t.Fatalf("expected record a after reopen, got %v", records)
	}
	if records[0].Content != "content a" {
		t.Fatalf("content not round-tripped: %q", records[0].Content)
	}
}

func TestSearchOrdersAndLimits(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "memories.db"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer store.Close()

	insert(t, store, "far", []float32{0, 1})
	insert(t, store, "close", []float32{1, 0.1})
	insert(t, store, "closer", []float32{1, 0.01})

	records, err := store.Search(context.Background(), memory.Normalize(pad([]float32{1})), 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "closer" || records[1].ID != "close" {
		t.Fatalf("wrong order: %s, %s", records[0].ID, records[1].ID)
	}
}

func TestSearchEmptyDatabase(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "memories.db"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer store.Close()

	records, err := store.Search(context.Background(), memory.Normalize(pad([]float32{1})), 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty result, got %d", len(records))
	}
}
