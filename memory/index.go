package memory

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultSimilarityThreshold is the minimum final score a search hit must
// reach to be returned.
const DefaultSimilarityThreshold = 0.7

// DefaultTopK is the result cap used when Search is called with topK <= 0.
const DefaultTopK = 5

// Option configures an Index.
type Option func(*Index)

// WithThreshold overrides the similarity threshold.
func WithThreshold(threshold float64) Option {
	return func(idx *Index) {
		idx.threshold = threshold
	}
}

// WithBackend selects the similarity-scan variant. The default is the
// linear-scan FallbackBackend; store/chromem provides the native variant.
func WithBackend(b Backend) Option {
	return func(idx *Index) {
		idx.backend = b
	}
}

// WithClock overrides the wall clock, for deterministic tests of timestamp
// defaulting and time decay.
func WithClock(now func() time.Time) Option {
	return func(idx *Index) {
		idx.now = now
	}
}

// Index is a mutable keyed collection of memories answering top-k
// similarity queries. It validates embedding dimensions eagerly on both
// insert and query, so the backend only ever sees well-shaped vectors.
type Index struct {
	dimension int
	threshold float64
	backend   Backend
	now       func() time.Time
}

// NewIndex creates an index for embeddings of the given dimension.
func NewIndex(dimension int, opts ...Option) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("memory: dimension must be > 0, got %d", dimension)
	}
	idx := &Index{
		dimension: dimension,
		threshold: DefaultSimilarityThreshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(idx)
	}
	if idx.backend == nil {
		idx.backend = NewFallback()
	}
	return idx, nil
}

// Dimension returns the configured embedding dimension.
func (idx *Index) Dimension() int { return idx.dimension }

// Threshold returns the configured similarity threshold.
func (idx *Index) Threshold() float64 { return idx.threshold }

// BackendName identifies the active scan variant.
func (idx *Index) BackendName() string { return idx.backend.Name() }

// Add inserts an entry, overwriting any existing entry with the same ID.
// A zero Timestamp defaults to the current wall clock, a zero Importance
// to 1.0. The embedding length must match the index dimension.
func (idx *Index) Add(e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("memory: entry ID is required")
	}
	if len(e.Embedding) != idx.dimension {
		return fmt.Errorf("%w: entry %q has %d dims, index wants %d",
			ErrDimensionMismatch, e.ID, len(e.Embedding), idx.dimension)
	}
	if e.Timestamp == 0 {
		e.Timestamp = float64(idx.now().UnixNano()) / float64(time.Second)
	}
	if e.Importance == 0 {
		e.Importance = 1.0
	}
	return idx.backend.Upsert(e)
}

// AddBatch inserts entries in order, assigning a fresh UUID to any entry
// without an ID. It returns the number of entries processed; on the first
// invalid entry it stops and returns the count so far with the error.
func (idx *Index) AddBatch(entries []Entry) (int, error) {
	count := 0
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if err := idx.Add(e); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Remove deletes an entry by ID, reporting whether it existed. Idempotent.
func (idx *Index) Remove(id string) bool {
	return idx.backend.Delete(id)
}

// Len returns the number of stored entries.
func (idx *Index) Len() int { return idx.backend.Len() }

// Clear removes all entries.
func (idx *Index) Clear() { idx.backend.Clear() }

// IDs returns all stored entry IDs in sorted order.
func (idx *Index) IDs() []string { return idx.backend.IDs() }

// Search returns up to topK entries most relevant to query, ordered by
// descending final score. The final score is cosine similarity times the
// entry's importance; when timeDecay > 0 it is additionally multiplied by
// exp(-timeDecay * ageHours). Note a timeDecay of zero means no decay term
// at all, not a degenerate exponential. Entries scoring below the index
// threshold are dropped. An empty index yields an empty result.
func (idx *Index) Search(query []float32, topK int, timeDecay float64) ([]Result, error) {
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("%w: query has %d dims, index wants %d",
			ErrDimensionMismatch, len(query), idx.dimension)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if idx.backend.Len() == 0 {
		return nil, nil
	}

	scored, err := idx.backend.Similarities(query)
	if err != nil {
		return nil, err
	}

	nowSec := float64(idx.now().UnixNano()) / float64(time.Second)
	results := make([]Result, 0, len(scored))
	for _, s := range scored {
		score := s.Similarity
		if timeDecay > 0 {
			ageHours := (nowSec - s.Entry.Timestamp) / 3600
			score *= math.Exp(-timeDecay * ageHours)
		}
		score *= s.Entry.Importance
		if score < idx.threshold {
			continue
		}
		results = append(results, Result{
			ID:        s.Entry.ID,
			Text:      s.Entry.Text,
			Score:     score,
			Timestamp: s.Entry.Timestamp,
		})
	}

	// Ties broken by ID so results don't depend on map iteration order.
	sort.Slice(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].ID < results[b].ID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
