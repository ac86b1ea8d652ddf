// Package vectorstore indexes chunked documents by embedding and answers
// top-k similarity queries.
package vectorstore

import (
	"context"
	"fmt"
	"math"

	"trip-assistant/internal/common/genai"
	"trip-assistant/internal/models"

	"golang.org/x/sync/errgroup"
)

// Store is implemented by every backend. Insert is additive and makes all
// chunks of a document visible together or not at all. Search returns at
// most k results ordered by descending score, ties in insertion order.
type Store interface {
	Insert(ctx context.Context, doc models.Document) error
	Search(ctx context.Context, query string, k int) ([]models.SearchResult, error)
	Count(ctx context.Context) (int, error)
}

// embedAll embeds every chunk with at most limit calls in flight. The first
// failure cancels the remaining calls.
func embedAll(ctx context.Context, embedder genai.Embedder, chunks []models.Chunk, limit int) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range chunks {
		i := i
		g.Go(func() error {
			v, err := embedder.Embed(gctx, chunks[i].Content)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", chunks[i].Index, err)
			}
			vectors[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine compares over the shorter length; zero vectors score 0.
func cosine(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aNorm * bNorm)
}
