package memory

import (
	"math"
	"sort"
)

// normEpsilon: norms below this are treated as zero vectors, making the
// similarity exactly 0.0 instead of dividing by a near-zero norm.
const normEpsilon = 1e-10

// Cosine computes the cosine similarity dot(a,b)/(|a||b|) of two
// equal-length vectors, in [-1, 1]. Comparing a zero (or near-zero) vector
// yields exactly 0.0. Mismatched lengths return ErrDimensionMismatch.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, sumA, sumB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		sumA += float64(a[i]) * float64(a[i])
		sumB += float64(b[i]) * float64(b[i])
	}

	normA := math.Sqrt(sumA)
	normB := math.Sqrt(sumB)
	if normA < normEpsilon || normB < normEpsilon {
		return 0, nil
	}
	return dot / (normA * normB), nil
}

// FallbackBackend is the pure, dependency-light Backend variant: a plain
// map plus a brute-force cosine scan. It is the default when no native
// store is configured.
type FallbackBackend struct {
	entries map[string]Entry
}

// NewFallback creates an empty linear-scan backend.
func NewFallback() *FallbackBackend {
	return &FallbackBackend{entries: make(map[string]Entry)}
}

func (b *FallbackBackend) Name() string { return "fallback" }

func (b *FallbackBackend) Upsert(e Entry) error {
	b.entries[e.ID] = e
	return nil
}

func (b *FallbackBackend) Delete(id string) bool {
	if _, ok := b.entries[id]; !ok {
		return false
	}
	delete(b.entries, id)
	return true
}

func (b *FallbackBackend) Clear() {
	b.entries = make(map[string]Entry)
}

func (b *FallbackBackend) Len() int {
	return len(b.entries)
}

func (b *FallbackBackend) IDs() []string {
	ids := make([]string, 0, len(b.entries))
	for id := range b.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (b *FallbackBackend) Entries() []Entry {
	entries := make([]Entry, 0, len(b.entries))
	for _, id := range b.IDs() {
		entries = append(entries, b.entries[id])
	}
	return entries
}

// Similarities brute-force scans every entry. O(n*d).
func (b *FallbackBackend) Similarities(query []float32) ([]Scored, error) {
	scored := make([]Scored, 0, len(b.entries))
	for _, e := range b.entries {
		sim, err := Cosine(query, e.Embedding)
		if err != nil {
			return nil, err
		}
		scored = append(scored, Scored{Entry: e, Similarity: sim})
	}
	return scored, nil
}
