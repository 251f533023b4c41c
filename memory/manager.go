package memory

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
)

// Config holds Manager settings.
type Config struct {
	// TopK caps how many records a query returns.
	TopK int

	// MinSimilarity is the threshold a record must strictly exceed to be
	// considered relevant to a query.
	MinSimilarity float64
}

// DefaultConfig matches the save/get memory tools' documented behavior.
var DefaultConfig = &Config{
	TopK:          5,
	MinSimilarity: 0.7,
}

// Manager owns the memory read and write paths over a Store and an Embedder.
type Manager struct {
	store    Store
	embedder Embedder
	config   *Config
}

// NewManager creates a manager. A nil config uses DefaultConfig.
func NewManager(store Store, embedder Embedder, config *Config) *Manager {
	if config == nil {
		config = DefaultConfig
	}
	return &Manager{
		store:    store,
		embedder: embedder,
		config:   config,
	}
}

// Save embeds text and inserts a new record. It never overwrites or merges
// with existing records; resolving duplicate or conflicting facts is the
// caller's concern, per the save tool's read-before-write precondition.
func (m *Manager) Save(ctx context.Context, text string) (*Record, error) {
	if text == "" {
		return nil, fmt.Errorf("memory content is empty")
	}

	embedding, err := m.embedOne(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed memory: %w", err)
	}

	now := time.Now().UTC()
	rec := &Record{
		ID:        uuid.New().String(),
		Content:   text,
		Embedding: embedding,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert memory: %w", err)
	}

	log.Printf("[MEMORY] saved record %s (%d chars)", rec.ID, len(text))
	return rec, nil
}

// Query embeds the query text and returns the most relevant records:
// similarity strictly above the threshold, descending similarity, at most
// TopK. An empty result is a valid outcome meaning no sufficiently relevant
// memory exists, not a fault.
func (m *Manager) Query(ctx context.Context, query string) ([]*Record, error) {
	if query == "" {
		return nil, fmt.Errorf("memory query is empty")
	}

	embedding, err := m.embedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := m.store.Search(ctx, embedding, m.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("search memories: %w", err)
	}

	results := make([]*Record, 0, len(candidates))
	for _, rec := range candidates {
		if rec.Similarity > m.config.MinSimilarity {
			results = append(results, rec)
		}
	}

	log.Printf("[MEMORY] query matched %d of %d candidates", len(results), len(candidates))
	return results, nil
}

// embedOne embeds a single text and unit-scales the vector so inner product
// equals cosine similarity.
func (m *Manager) embedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for 1 input", len(vectors))
	}
	if want := m.embedder.Dimensions(); len(vectors[0]) != want {
		return nil, fmt.Errorf("embedder returned %d dimensions, want %d", len(vectors[0]), want)
	}
	return Normalize(vectors[0]), nil
}

// Normalize scales a vector to unit length. A zero vector is returned as is.
func Normalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v * scale
	}
	return normalized
}

// Dot returns the inner product of two vectors. Over unit-scaled vectors
// this is their cosine similarity.
func Dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
