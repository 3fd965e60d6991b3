// Package chromem provides the native Backend variant for memory.Index,
// backed by chromem-go, a pure Go embedded vector database.
package chromem

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/mirubot/chatmem-go/memory"
)

// collectionName is the single chromem collection backing a Store.
const collectionName = "memories"

// Store implements memory.Backend on top of a chromem collection.
//
// chromem cannot enumerate its documents, so the store mirrors every entry
// in a bookkeeping map; the collection only serves the similarity scan.
// Unlike the fallback backend, the store is safe for concurrent use.
type Store struct {
	col *chromem.Collection

	mu      sync.RWMutex
	entries map[string]memory.Entry
}

// New creates a chromem-backed store for embeddings of the given
// dimension. The dimension is recorded as collection metadata; chromem
// itself does not enforce it, the owning Index does.
func New(dimension int) (*Store, error) {
	db := chromem.NewDB()
	col, err := db.CreateCollection(
		collectionName,
		map[string]string{"dimension": strconv.Itoa(dimension)},
		nil, // embeddings are always provided by the caller
	)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Store{
		col:     col,
		entries: make(map[string]memory.Entry),
	}, nil
}

// Select does construction-time feature detection: it returns the chromem
// native backend when one can be initialized and falls back to the
// linear-scan backend otherwise, logging the degradation.
func Select(dimension int) memory.Backend {
	store, err := New(dimension)
	if err != nil {
		log.Printf("[CHROMEM] native store unavailable, using linear fallback: %v", err)
		return memory.NewFallback()
	}
	return store
}

func (s *Store) Name() string { return "chromem" }

// Upsert stores an entry, replacing any document with the same ID.
func (s *Store) Upsert(e memory.Entry) error {
	ctx := context.Background()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[e.ID]; exists {
		if err := s.col.Delete(ctx, nil, nil, e.ID); err != nil {
			return fmt.Errorf("replace document %s: %w", e.ID, err)
		}
	}

	doc := chromem.Document{
		ID:        e.ID,
		Content:   e.Text,
		Embedding: e.Embedding,
	}
	if err := s.col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document %s: %w", e.ID, err)
	}

	s.entries[e.ID] = e
	return nil
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; !exists {
		return false
	}
	if err := s.col.Delete(context.Background(), nil, nil, id); err != nil {
		log.Printf("[CHROMEM] delete %s from collection: %v", id, err)
	}
	delete(s.entries, id)
	return true
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	if len(ids) > 0 {
		if err := s.col.Delete(context.Background(), nil, nil, ids...); err != nil {
			log.Printf("[CHROMEM] clear collection: %v", err)
		}
	}
	s.entries = make(map[string]memory.Entry)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) Entries() []memory.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]memory.Entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, s.entries[id])
	}
	return entries
}

// Similarities queries the collection for every stored document's cosine
// similarity to query. chromem requires nResults <= document count, so the
// request is clamped to the collection size.
func (s *Store) Similarities(query []float32) ([]memory.Scored, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.col.Count()
	if n == 0 {
		return nil, nil
	}

	results, err := s.col.QueryEmbedding(context.Background(), query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	scored := make([]memory.Scored, 0, len(results))
	for _, r := range results {
		entry, ok := s.entries[r.ID]
		if !ok {
			// Collection and bookkeeping map drifted; skip rather than
			// return a hit the index can't resolve.
			log.Printf("[CHROMEM] skipping untracked document %s", r.ID)
			continue
		}
		scored = append(scored, memory.Scored{
			Entry:      entry,
			Similarity: float64(r.Similarity),
		})
	}
	return scored, nil
}
