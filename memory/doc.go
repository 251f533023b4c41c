// Package memory provides the durable, semantically-searchable memory of
// facts learned about the user across sessions.
//
// The write path embeds a free-text fact and inserts a new record; records
// are never merged or deleted here. The read path embeds a query and returns
// the most similar stored facts above a similarity threshold.
//
// Architecture:
//   - Store: vector storage backend (chromem-go in-memory, sqlite for
//     durability across processes)
//   - Embedder: text-to-vector conversion (OpenAI-compatible HTTP API,
//     optional local ONNX model, deterministic mock for tests)
//   - Manager: orchestrates embedding, unit scaling, threshold filtering,
//     and result ordering
//
// Embeddings are unit-scaled 256-dimensional vectors, so the inner product
// of two embeddings is their cosine similarity. The store only needs to
// answer nearest-neighbor queries over inner-product distance.
//
// Concurrency: inserts are append-only and atomic; a query observes some
// consistent prefix of committed inserts. A reader racing a writer may or
// may not see the in-flight record, which is acceptable for advisory recall.
package memory
