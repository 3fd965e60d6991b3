package memory_test

import (
	"context"
	"strings"
	"testing"

	"github.com/mirubot/chatmem-go/memory"
	"github.com/mirubot/chatmem-go/memory/embedder/mock"
)

func newTestSetup(t *testing.T, cfg *memory.Config) *memory.Manager {
	t.Helper()
	idx, err := memory.NewIndex(64, memory.WithThreshold(0.9))
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return memory.NewManager(idx, mock.New(64), cfg)
}

func TestManagerRecordAndRetrieve(t *testing.T) {
	ctx := context.Background()
	m := newTestSetup(t, &memory.Config{Enabled: true, TopK: 5})

	facts := map[string]string{
		"fact-1": "the user's cat is named Mochi",
		"fact-2": "the user dislikes mornings",
	}
	for id, text := range facts {
		if err := m.Record(ctx, id, text, 1.0); err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
	}

	// The mock embedder is deterministic, so querying with a recorded
	// text embeds identically and scores 1.0 against itself.
	formatted, err := m.Retrieve(ctx, facts["fact-1"])
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if !strings.Contains(formatted, "RELEVANT MEMORIES") {
		t.Errorf("formatted output missing header: %q", formatted)
	}
	if !strings.Contains(formatted, facts["fact-1"]) {
		t.Errorf("formatted output missing recorded fact: %q", formatted)
	}
}

func TestManagerRecordOverwrites(t *testing.T) {
	ctx := context.Background()
	m := newTestSetup(t, &memory.Config{Enabled: true, TopK: 5})

	if err := m.Record(ctx, "fact", "first version", 1.0); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := m.Record(ctx, "fact", "second version", 1.0); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if m.Index().Len() != 1 {
		t.Errorf("Len = %d, want 1 after overwrite", m.Index().Len())
	}
}

func TestManagerDisabled(t *testing.T) {
	ctx := context.Background()
	m := newTestSetup(t, &memory.Config{Enabled: false})

	if err := m.Record(ctx, "fact", "ignored", 1.0); err != nil {
		t.Fatalf("Record when disabled: %v", err)
	}
	if m.Index().Len() != 0 {
		t.Errorf("disabled Record stored an entry")
	}

	formatted, err := m.Retrieve(ctx, "anything")
	if err != nil {
		t.Fatalf("Retrieve when disabled: %v", err)
	}
	if formatted != "" {
		t.Errorf("disabled Retrieve = %q, want empty", formatted)
	}
}

func TestManagerRetrieveNoHits(t *testing.T) {
	ctx := context.Background()
	m := newTestSetup(t, &memory.Config{Enabled: true, TopK: 5})

	formatted, err := m.Retrieve(ctx, "query against an empty index")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if formatted != "" {
		t.Errorf("Retrieve on empty index = %q, want empty", formatted)
	}
}
