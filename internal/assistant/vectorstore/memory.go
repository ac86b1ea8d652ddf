package vectorstore

import (
	"context"
	"sort"
	"sync"

	"trip-assistant/internal/assistant/ingest"
	apperrors "trip-assistant/internal/common/errors"
	"trip-assistant/internal/common/genai"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/common/metrics"
	"trip-assistant/internal/models"
)

type entry struct {
	chunk  models.Chunk
	vector []float32
	norm   float64
}

// MemoryStore is an append-only brute force cosine index.
type MemoryStore struct {
	mu          sync.RWMutex
	entries     []entry
	chunker     *ingest.Chunker
	embedder    genai.Embedder
	concurrency int
	logger      logger.Logger
}

func NewMemoryStore(chunker *ingest.Chunker, embedder genai.Embedder, concurrency int, log logger.Logger) *MemoryStore {
	return &MemoryStore{
		chunker:     chunker,
		embedder:    embedder,
		concurrency: concurrency,
		logger:      log.With(map[string]interface{}{"component": "vectorstore", "backend": "memory"}),
	}
}

// Insert embeds every chunk before taking the write lock, so readers see
// either none or all of the document.
func (s *MemoryStore) Insert(ctx context.Context, doc models.Document) error {
	chunks := s.chunker.Chunk(doc)
	if len(chunks) == 0 {
		s.logger.Debug("document has no content to index", map[string]interface{}{"documentId": doc.ID})
		return nil
	}

	vectors, err := embedAll(ctx, s.embedder, chunks, s.concurrency)
	if err != nil {
		return apperrors.NewVectorInsertFailedError(doc.ID, err)
	}

	batch := make([]entry, len(chunks))
	for i := range chunks {
		batch[i] = entry{chunk: chunks[i], vector: vectors[i], norm: norm(vectors[i])}
	}

	s.mu.Lock()
	s.entries = append(s.entries, batch...)
	total := len(s.entries)
	s.mu.Unlock()

	metrics.VectorStoreChunks.WithLabelValues("memory").Set(float64(total))
	s.logger.Debug("document indexed", map[string]interface{}{
		"documentId": doc.ID,
		"chunks":     len(chunks),
	})
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	if k <= 0 || s.len() == 0 {
		return []models.SearchResult{}, nil
	}

	qv, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, apperrors.NewVectorSearchFailedError(err)
	}
	qNorm := norm(qv)

	s.mu.RLock()
	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(s.entries))
	for i := range s.entries {
		scores[i] = scored{idx: i, score: cosine(s.entries[i].vector, s.entries[i].norm, qv, qNorm)}
	}
	// entries are in insertion order, so a stable sort keeps ties in that order
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if k > len(scores) {
		k = len(scores)
	}
	results := make([]models.SearchResult, 0, k)
	for _, sc := range scores[:k] {
		c := s.entries[sc.idx].chunk
		results = append(results, models.SearchResult{
			DocumentID: c.DocumentID,
			Content:    c.Content,
			Metadata:   models.CopyMetadata(c.Metadata),
			Score:      sc.score,
		})
	}
	s.mu.RUnlock()

	return results, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	return s.len(), nil
}

func (s *MemoryStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
