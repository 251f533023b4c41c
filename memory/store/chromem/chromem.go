// Package chromem backs the memory store with chromem-go, a pure Go
// embedded vector database.
package chromem

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/tripwise/tripwise-go-sdk/memory"
)

const collectionName = "memories"

// Store keeps records in an in-memory chromem collection. Suitable for
// single-process runs and tests; use the sqlite store when memories must
// survive restarts.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// New creates an empty store.
func New() (*Store, error) {
	db := chromem.NewDB()
	// We provide embeddings ourselves and use the default cosine distance.
	col, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Store{db: db, collection: col}, nil
}

// Insert adds a record. chromem document adds are atomic, so concurrent
// readers never observe a torn record.
func (s *Store) Insert(ctx context.Context, rec *memory.Record) error {
	doc := chromem.Document{
		ID:        rec.ID,
		Content:   rec.Content,
		Embedding: rec.Embedding,
		Metadata: map[string]string{
			"created_at": rec.CreatedAt.Format(time.RFC3339Nano),
			"updated_at": rec.UpdatedAt.Format(time.RFC3339Nano),
		},
	}
	if err := s.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Search returns up to limit records by descending similarity.
func (s *Store) Search(ctx context.Context, embedding []float32, limit int) ([]*memory.Record, error) {
	// chromem rejects nResults larger than the collection size, so step the
	// limit down until the query fits. An empty collection is a valid empty
	// result, never an error.
	var results []chromem.Result
	for n := limit; n >= 1; n-- {
		var err error
		results, err = s.collection.QueryEmbedding(ctx, embedding, n, nil, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if n == 1 {
				return nil, nil
			}
			continue
		}
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	records := make([]*memory.Record, 0, len(results))
	for _, result := range results {
		rec := &memory.Record{
			ID:         result.ID,
			Content:    result.Content,
			Embedding:  result.Embedding,
			Similarity: float64(result.Similarity),
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, result.Metadata["created_at"])
		rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, result.Metadata["updated_at"])
		records = append(records, rec)
	}
	log.Printf("[CHROMEM] search returned %d records", len(records))
	return records, nil
}

// Close is a no-op; chromem keeps everything in memory.
func (s *Store) Close() error {
	return nil
}

func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
