package memory

import (
	"context"
	"errors"
)

// ErrDimensionMismatch is returned when an embedding's length does not
// match the index's configured dimension, or when two vectors of different
// lengths are compared. Truncating or padding would silently corrupt
// similarity math, so this always surfaces as an error.
var ErrDimensionMismatch = errors.New("memory: embedding dimension mismatch")

// Entry is one stored memory: a text payload with its embedding and
// retrieval metadata. Entries are keyed by ID with overwrite semantics.
type Entry struct {
	ID   string `json:"id"`
	Text string `json:"text"`

	// Embedding must match the owning index's dimension.
	Embedding []float32 `json:"embedding"`

	// Timestamp is epoch seconds. Zero means "now" at insertion time.
	Timestamp float64 `json:"timestamp"`

	// Importance is a caller-supplied score multiplier. Zero means 1.0 at
	// insertion time; it is never recomputed here.
	Importance float64 `json:"importance"`
}

// Result is one search hit, already decayed, weighted, and thresholded.
type Result struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
	Timestamp float64 `json:"timestamp"`
}

// Scored pairs an entry with its raw cosine similarity to a query, before
// decay, importance weighting, and thresholding are applied by the Index.
type Scored struct {
	Entry      Entry
	Similarity float64
}

// Backend is the similarity-scan capability behind an Index. Two variants
// ship with the SDK: the pure linear-scan FallbackBackend, and the
// chromem-backed native store (store/chromem). The Index depends only on
// this interface; which variant is active is decided once at construction.
//
// Backends assume externally-synchronized access unless documented
// otherwise.
type Backend interface {
	// Name identifies the variant for logging.
	Name() string

	// Upsert stores an entry, replacing any entry with the same ID.
	Upsert(e Entry) error

	// Delete removes an entry, reporting whether it existed.
	Delete(id string) bool

	// Clear removes all entries.
	Clear()

	// Len returns the number of stored entries.
	Len() int

	// IDs returns all stored IDs in sorted order.
	IDs() []string

	// Entries returns a snapshot of all stored entries, sorted by ID.
	Entries() []Entry

	// Similarities returns the raw cosine similarity of every stored entry
	// against query. Order is unspecified; the Index sorts after weighting.
	Similarities(query []float32) ([]Scored, error)
}

// Embedder converts text to embedding vectors. Embedding computation is a
// collaborator concern: the SDK ships a deterministic mock (embedder/mock)
// and a Gemini REST adapter (embedder/gemini); production deployments can
// plug in anything that satisfies this interface.
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}
