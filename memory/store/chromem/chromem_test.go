package chromem_test

import (
	"testing"

	"github.com/mirubot/chatmem-go/memory"
	"github.com/mirubot/chatmem-go/memory/store/chromem"
)

func newTestStore(t *testing.T) *chromem.Store {
	t.Helper()
	store, err := chromem.New(3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStoreContainerOps(t *testing.T) {
	store := newTestStore(t)

	entries := []memory.Entry{
		{ID: "b", Text: "second", Embedding: []float32{0, 1, 0}, Timestamp: 2, Importance: 1},
		{ID: "a", Text: "first", Embedding: []float32{1, 0, 0}, Timestamp: 1, Importance: 1},
	}
	for _, e := range entries {
		if err := store.Upsert(e); err != nil {
			t.Fatalf("Upsert %s: %v", e.ID, err)
		}
	}

	if store.Len() != 2 {
		t.Errorf("Len = %d, want 2", store.Len())
	}
	ids := store.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("IDs = %v, want [a b]", ids)
	}

	if !store.Delete("a") {
		t.Error("Delete existing = false, want true")
	}
	if store.Delete("a") {
		t.Error("Delete repeated = true, want false")
	}

	store.Clear()
	if store.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", store.Len())
	}
}

func TestStoreUpsertReplaces(t *testing.T) {
	store := newTestStore(t)

	if err := store.Upsert(memory.Entry{ID: "x", Text: "old", Embedding: []float32{1, 0, 0}, Timestamp: 1, Importance: 1}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := store.Upsert(memory.Entry{ID: "x", Text: "new", Embedding: []float32{0, 1, 0}, Timestamp: 2, Importance: 1}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("Len = %d, want 1", store.Len())
	}
	if got := store.Entries()[0].Text; got != "new" {
		t.Errorf("entry text = %q, want the replacement", got)
	}
}

// The native backend must be interchangeable with the fallback: an Index
// over the chromem store answers the same query the same way.
func TestIndexOverChromemBackend(t *testing.T) {
	store := newTestStore(t)
	idx, err := memory.NewIndex(3, memory.WithBackend(store), memory.WithThreshold(0.5))
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	entries := []memory.Entry{
		{ID: "exact", Text: "exact match", Embedding: []float32{1, 0, 0}},
		{ID: "orthogonal", Text: "unrelated", Embedding: []float32{0, 1, 0}},
		{ID: "close", Text: "near match", Embedding: []float32{0.9, 0.1, 0}},
	}
	if _, err := idx.AddBatch(entries); err != nil {
		t.Fatalf("AddBatch: %v", err)
	}

	results, err := idx.Search([]float32{1, 0, 0}, 2, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v, want 2", results)
	}
	if results[0].ID != "exact" || results[1].ID != "close" {
		t.Errorf("result order = [%s %s], want [exact close]", results[0].ID, results[1].ID)
	}
}

func TestSelectFallsBackGracefully(t *testing.T) {
	// Selection should always produce a usable backend.
	b := chromem.Select(4)
	if b == nil {
		t.Fatal("Select returned nil backend")
	}
	if err := b.Upsert(memory.Entry{ID: "x", Embedding: []float32{1, 0, 0, 0}, Timestamp: 1, Importance: 1}); err != nil {
		t.Fatalf("Upsert via selected backend: %v", err)
	}
}
