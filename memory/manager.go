package memory

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Config holds Manager configuration.
type Config struct {
	// Enabled toggles recall on/off. When off, Retrieve returns nothing
	// and Record is a no-op.
	Enabled bool

	// TopK is the number of memories retrieved per query. Default 5.
	TopK int

	// TimeDecay is the exponential decay factor applied per hour of entry
	// age during retrieval. Zero disables decay entirely.
	TimeDecay float64
}

// DefaultConfig returns sensible defaults for local use.
var DefaultConfig = &Config{
	Enabled: true,
	TopK:    DefaultTopK,
}

// Manager glues an Embedder to an Index for the chat orchestrator's two
// memory phases: retrieve relevant memories before building a prompt, and
// record selected facts after a turn completes.
type Manager struct {
	index    *Index
	embedder Embedder
	config   *Config
}

// NewManager creates a Manager. A nil config takes DefaultConfig.
func NewManager(index *Index, embedder Embedder, config *Config) *Manager {
	if config == nil {
		config = DefaultConfig
	}
	return &Manager{
		index:    index,
		embedder: embedder,
		config:   config,
	}
}

// Index exposes the underlying index, e.g. for snapshot persistence.
func (m *Manager) Index() *Index { return m.index }

// Record embeds text and stores it under id. A zero importance defaults
// to 1.0; recording the same id again overwrites the previous memory.
func (m *Manager) Record(ctx context.Context, id, text string, importance float64) error {
	if !m.config.Enabled {
		return nil
	}

	embedding, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed memory: %w", err)
	}

	if err := m.index.Add(Entry{
		ID:         id,
		Text:       text,
		Embedding:  embedding,
		Importance: importance,
	}); err != nil {
		return fmt.Errorf("store memory: %w", err)
	}

	log.Printf("[MEMORY] Recorded memory id=%s (%d chars)", id, len(text))
	return nil
}

// Retrieve embeds the query, searches the index, and formats the hits as
// a block ready for prompt injection. No hits (or disabled recall) yields
// an empty string.
func (m *Manager) Retrieve(ctx context.Context, query string) (string, error) {
	if !m.config.Enabled {
		return "", nil
	}

	embedding, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	results, err := m.index.Search(embedding, m.config.TopK, m.config.TimeDecay)
	if err != nil {
		return "", fmt.Errorf("search index: %w", err)
	}

	log.Printf("[MEMORY] Retrieved %d memories for query: %q", len(results), truncateLog(query, 50))
	if len(results) == 0 {
		return "", nil
	}

	return formatResults(results), nil
}

// formatResults renders search hits as a numbered prompt-injection block.
func formatResults(results []Result) string {
	var sb strings.Builder
	sb.WriteString("=== RELEVANT MEMORIES ===\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r.Text)
	}
	return sb.String()
}

// truncateLog truncates text for logging.
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
