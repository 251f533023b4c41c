package memory

import (
	"context"
	"time"
)

// Dimensions is the embedding vector size used throughout the memory system.
const Dimensions = 256

// Record is one stored fact. Append-mostly: created on save, UpdatedAt
// changes only if a record is revised, and records are never deleted here.
type Record struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Similarity is the cosine similarity to the query vector. Transient;
	// populated on query results only.
	Similarity float64 `json:"similarity,omitempty"`
}

// Store is the vector storage backend. Implementations must support
// concurrent writers and readers: each insert is atomic and each search
// observes some consistent prefix of committed inserts.
type Store interface {
	// Insert persists a new record with its embedding.
	Insert(ctx context.Context, rec *Record) error

	// Search returns up to limit records ordered by descending similarity
	// to the given unit-scaled embedding, with Similarity populated.
	Search(ctx context.Context, embedding []float32, limit int) ([]*Record, error)

	// Close releases resources.
	Close() error
}

// Embedder converts an ordered batch of texts to one fixed-length vector
// per input, in the same order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}
