// Package memory provides a keyed vector memory index for conversational
// recall: text entries with embeddings, top-k cosine similarity search with
// optional time decay, and whole-index JSON snapshots.
//
// Architecture:
//   - Index: the keyed collection and query surface (add, remove, search,
//     snapshot persistence)
//   - Backend: the similarity-scan variant behind an Index. FallbackBackend
//     is the dependency-light linear scan; store/chromem wraps the embedded
//     chromem-go vector database. Selection happens once at construction.
//   - Embedder: text-to-vector conversion (embedder/mock for tests,
//     embedder/gemini for the Generative Language API)
//   - Manager: glues an Embedder to an Index for the chat orchestrator's
//     retrieve-before-prompt and record-after-turn phases
//
// The linear fallback is O(n*d) per query. That is the accepted cost for
// in-memory working sets of hundreds to low thousands of entries; it is not
// an approximate-nearest-neighbor engine.
//
// All types assume single-writer, externally-synchronized access per index
// unless documented otherwise.
package memory
