package memory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// snapshotVersion is the current on-disk snapshot format version.
const snapshotVersion = 1

// snapshot is the versioned JSON envelope written by Save. Earlier
// deployments wrote a bare entry array; Load still accepts that form.
type snapshot struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// Save writes the whole index to path as a JSON snapshot. Entries are
// sorted by ID for stable output. I/O errors propagate unchanged.
func (idx *Index) Save(path string) error {
	snap := snapshot{
		Version: snapshotVersion,
		Entries: idx.backend.Entries(),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("memory: marshal snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a JSON snapshot from path and merges it into the index:
// loaded entries overwrite stored entries with the same ID, entries the
// snapshot doesn't mention are left untouched. It returns the number of
// entries merged. Malformed JSON and dimension mismatches are errors.
func (idx *Index) Load(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	entries, err := decodeSnapshot(data)
	if err != nil {
		return 0, fmt.Errorf("memory: parse snapshot %s: %w", path, err)
	}

	count := 0
	for _, e := range entries {
		if err := idx.Add(e); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func decodeSnapshot(data []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		// Legacy unversioned form: a bare entry array.
		var entries []Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var snap snapshot
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return nil, err
	}
	if snap.Version > snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	return snap.Entries, nil
}
