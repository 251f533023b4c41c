package memory

import (
	"context"
	"sync/atomic"
	"testing"
)

// countingEmbedder counts how many texts reach the inner embedder.
type countingEmbedder struct {
	calls int64
}

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	atomic.AddInt64(&c.calls, int64(len(texts)))
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, Dimensions)
		for j := range text {
			vec[j%Dimensions] += float32(text[j])
		}
		out[i] = Normalize(vec)
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int { return Dimensions }

func TestCachedEmbedderPreservesOrder(t *testing.T) {
	inner := &countingEmbedder{}
	cached, err := NewCachedEmbedder(inner)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer cached.Close()

	texts := []string{"alpha", "beta", "gamma"}
	got, err := cached.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	want, _ := inner.Embed(context.Background(), texts)
	for i := range texts {
		for j := range got[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("vector %d differs at %d", i, j)
			}
		}
	}
}

func TestCachedEmbedderOnlyEmbedsMisses(t *testing.T) {
	inner := &countingEmbedder{}
	cached, err := NewCachedEmbedder(inner)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer cached.Close()

	ctx := context.Background()
	if _, err := cached.Embed(ctx, []string{"alpha", "beta"}); err != nil {
		t.Fatalf("embed: %v", err)
	}
	first := atomic.LoadInt64(&inner.calls)
	if first != 2 {
		t.Fatalf("expected 2 inner embeds, got %d", first)
	}

	// ristretto admits asynchronously; a repeat mix may or may not hit, but
	// must never exceed one inner embed per distinct text in the batch.
	if _, err := cached.Embed(ctx, []string{"alpha", "gamma"}); err != nil {
		t.Fatalf("embed: %v", err)
	}
	total := atomic.LoadInt64(&inner.calls)
	if total > 4 {
		t.Fatalf("inner embedder saw %d texts for 4 requests", total)
	}
}

func TestCachedEmbedderDimensions(t *testing.T) {
	cached, err := NewCachedEmbedder(&countingEmbedder{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer cached.Close()
	if cached.Dimensions() != Dimensions {
		t.Fatalf("got %d dimensions", cached.Dimensions())
	}
}
