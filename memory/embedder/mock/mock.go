// Package mock provides a deterministic embedder for tests: identical text
// always maps to the identical unit vector, and unrelated texts land nearly
// orthogonal in 256 dimensions.
package mock

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/tripwise/tripwise-go-sdk/memory"
)

// Embedder generates hash-seeded embeddings.
type Embedder struct {
	dimensions int
}

// New creates a mock embedder with the standard dimensions.
func New() *Embedder {
	return &Embedder{dimensions: memory.Dimensions}
}

// Embed returns one deterministic unit vector per input, in order.
func (m *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.embedOne(text)
	}
	return vectors, nil
}

// Dimensions returns the embedding size.
func (m *Embedder) Dimensions() int {
	return m.dimensions
}

func (m *Embedder) embedOne(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	embedding := make([]float32, m.dimensions)
	for i := 0; i < m.dimensions; i++ {
		// LCG stream seeded by the text hash, mapped to [-1, 1].
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}
	return memory.Normalize(embedding)
}
