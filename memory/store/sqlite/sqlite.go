// Package sqlite backs the memory store with a local sqlite database so
// memories survive process restarts. Embeddings are stored as JSON blobs
// and searched with an exact inner-product scan; at this scale (facts about
// one user) a dedicated vector index is not worth the operational cost.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tripwise/tripwise-go-sdk/core"
	"github.com/tripwise/tripwise-go-sdk/memory"
)

const schema = `
CREATE TABLE IF NOT EXISTS memories (
	id         TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	embedding  BLOB NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// Store persists records in sqlite.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at path.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Insert saves a record in a single statement; sqlite makes the insert
// atomic with respect to concurrent readers.
func (s *Store) Insert(ctx context.Context, rec *memory.Record) error {
	embBytes, err := json.Marshal(rec.Embedding)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO memories (id, content, embedding, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Content, embBytes, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert memory: %w: %v", core.ErrResourceExhausted, err)
	}
	return nil
}

// Search scans all rows, scores them by inner product against the query
// embedding, and returns the top limit by descending similarity.
func (s *Store) Search(ctx context.Context, embedding []float32, limit int) ([]*memory.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, embedding, created_at, updated_at FROM memories`)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w: %v", core.ErrResourceExhausted, err)
	}
	defer rows.Close()

	var candidates []*memory.Record
	for rows.Next() {
		var rec memory.Record
		var embBytes []byte
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&rec.ID, &rec.Content, &embBytes, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		if err := json.Unmarshal(embBytes, &rec.Embedding); err != nil {
			continue
		}
		rec.CreatedAt = createdAt
		rec.UpdatedAt = updatedAt
		rec.Similarity = memory.Dot(embedding, rec.Embedding)
		candidates = append(candidates, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read memories: %w: %v", core.ErrResourceExhausted, err)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
