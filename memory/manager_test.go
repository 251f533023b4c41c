package memory

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"
)

// fakeEmbedder returns fixed vectors per text, padded to Dimensions.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		seed, ok := f.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", text)
		}
		vec := make([]float32, Dimensions)
		copy(vec, seed)
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return Dimensions }

// memStore is a minimal in-memory Store for manager tests.
type memStore struct {
	mu      sync.Mutex
	records []*Record
}

func (s *memStore) Insert(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.records = append(s.records, &cp)
	return nil
}

func (s *memStore) Search(ctx context.Context, embedding []float32, limit int) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Record, 0, len(s.records))
	for _, rec := range s.records {
		cp := *rec
		cp.Similarity = Dot(embedding, rec.Embedding)
		out = append(out, &cp)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Similarity > out[i].Similarity {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) Close() error { return nil }

func TestSaveNormalizesAndStamps(t *testing.T) {
	store := &memStore{}
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"likes aisle seats": {3, 4},
	}}
	mgr := NewManager(store, emb, nil)

	rec, err := mgr.Save(context.Background(), "likes aisle seats")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected generated id")
	}
	if rec.CreatedAt.IsZero() || !rec.CreatedAt.Equal(rec.UpdatedAt) {
		t.Fatalf("bad timestamps: %v %v", rec.CreatedAt, rec.UpdatedAt)
	}
	if time.Since(rec.CreatedAt) > time.Minute {
		t.Fatalf("created_at not current: %v", rec.CreatedAt)
	}

	var norm float64
	for _, v := range rec.Embedding {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Fatalf("embedding not unit length: %v", norm)
	}
}

func TestSaveNeverMerges(t *testing.T) {
	store := &memStore{}
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"likes aisle seats": {1, 0},
	}}
	mgr := NewManager(store, emb, nil)

	first, _ := mgr.Save(context.Background(), "likes aisle seats")
	second, err := mgr.Save(context.Background(), "likes aisle seats")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("identical saves must create distinct records")
	}
	if len(store.records) != 2 {
		t.Fatalf("expected 2 stored records, got %d", len(store.records))
	}
}

func TestQueryFiltersByThreshold(t *testing.T) {
	store := &memStore{}
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"window seat":   {1, 0},
		"aisle-ish":     {0.8, 0.6},
		"vegan meals":   {0, 1},
		"seating query": {1, 0},
	}}
	mgr := NewManager(store, emb, nil)

	ctx := context.Background()
	for _, text := range []string{"window seat", "aisle-ish", "vegan meals"} {
		if _, err := mgr.Save(ctx, text); err != nil {
			t.Fatalf("save %q: %v", text, err)
		}
	}

	records, err := mgr.Query(ctx, "seating query")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	// "window seat" scores 1.0, "aisle-ish" 0.8, "vegan meals" 0.0.
	if len(records) != 2 {
		t.Fatalf("expected 2 records above threshold, got %d", len(records))
	}
	if records[0].Content != "window seat" || records[1].Content != "aisle-ish" {
		t.Fatalf("wrong order: %q, %q", records[0].Content, records[1].Content)
	}
	for _, rec := range records {
		if rec.Similarity <= 0.7 {
			t.Errorf("record %q below threshold: %v", rec.Content, rec.Similarity)
		}
	}
}

// fixedStore reports preset similarities, independent of embeddings.
type fixedStore struct {
	memStore
	similarities []float64
}

func (s *fixedStore) Search(ctx context.Context, embedding []float32, limit int) ([]*Record, error) {
	out := make([]*Record, len(s.similarities))
	for i, sim := range s.similarities {
		out[i] = &Record{ID: fmt.Sprintf("r%d", i), Content: "fact", Similarity: sim}
	}
	return out, nil
}

func TestQueryExactThresholdExcluded(t *testing.T) {
	store := &fixedStore{similarities: []float64{0.9, 0.7, 0.69}}
	emb := &fakeEmbedder{vectors: map[string][]float32{"query": {1, 0}}}
	mgr := NewManager(store, emb, nil)

	records, err := mgr.Query(context.Background(), "query")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	// 0.7 sits exactly at the threshold and must be excluded.
	if len(records) != 1 || records[0].Similarity != 0.9 {
		t.Fatalf("expected only the 0.9 record, got %d records", len(records))
	}
}

func TestQueryEmptyStore(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{"anything": {1, 0}}}
	mgr := NewManager(&memStore{}, emb, nil)

	records, err := mgr.Query(context.Background(), "anything")
	if err != nil {
		t.Fatalf("empty store must not error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestQueryCapsAtTopK(t *testing.T) {
	store := &memStore{}
	vectors := map[string][]float32{"query": {1, 0}}
	texts := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		text := fmt.Sprintf("fact %d", i)
		texts = append(texts, text)
		vectors[text] = []float32{1, float32(i) * 0.01}
	}
	mgr := NewManager(store, &fakeEmbedder{vectors: vectors}, nil)

	ctx := context.Background()
	for _, text := range texts {
		if _, err := mgr.Save(ctx, text); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	records, err := mgr.Query(ctx, "query")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected top 5, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].Similarity > records[i-1].Similarity {
			t.Fatal("records not in descending similarity order")
		}
	}
}

func TestSaveRejectsWrongDimensions(t *testing.T) {
	emb := &shortEmbedder{}
	mgr := NewManager(&memStore{}, emb, nil)
	if _, err := mgr.Save(context.Background(), "text"); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

type shortEmbedder struct{}

func (s *shortEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, 7)
	}
	return out, nil
}

func (s *shortEmbedder) Dimensions() int { return Dimensions }

func TestNormalizeZeroVector(t *testing.T) {
	vec := make([]float32, 4)
	out := Normalize(vec)
	for _, v := range out {
		if v != 0 {
			t.Fatal("zero vector must normalize to itself")
		}
	}
}

func TestConcurrentSaveAndQuery(t *testing.T) {
	store := &memStore{}
	vectors := map[string][]float32{}
	for i := 0; i < 16; i++ {
		vectors[fmt.Sprintf("fact %d", i)] = []float32{1, float32(i)}
	}
	vectors["query"] = []float32{1, 0}
	mgr := NewManager(store, &fakeEmbedder{vectors: vectors}, nil)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := mgr.Save(ctx, fmt.Sprintf("fact %d", i)); err != nil {
				t.Errorf("save: %v", err)
			}
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := mgr.Query(ctx, "query"); err != nil {
				t.Errorf("query: %v", err)
			}
		}()
	}
	wg.Wait()
}
