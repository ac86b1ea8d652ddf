package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"trip-assistant/internal/assistant/ingest"
	apperrors "trip-assistant/internal/common/errors"
	"trip-assistant/internal/common/genai"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/common/metrics"
	"trip-assistant/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

// ESConfig selects the index used by ElasticsearchStore.
type ESConfig struct {
	Index       string
	Dimensions  int
	Concurrency int
}

// esChunk is the indexed form of a chunk. Seq orders ties across writers,
// BatchID groups the chunks of one Insert call for cleanup.
type esChunk struct {
	ChunkID    string                 `json:"chunk_id"`
	DocumentID string                 `json:"document_id"`
	BatchID    string                 `json:"batch_id"`
	Seq        int64                  `json:"seq"`
	Content    string                 `json:"content"`
	Metadata   map[string]interface{} `json:"metadata"`
	Vector     []float32              `json:"vector,omitempty"`
}

// ElasticsearchStore keeps chunk vectors in a dense_vector index and
// answers searches with approximate kNN.
type ElasticsearchStore struct {
	client   *elasticsearch.Client
	cfg      ESConfig
	chunker  *ingest.Chunker
	embedder genai.Embedder
	logger   logger.Logger
	seq      atomic.Int64
}

func NewElasticsearchStore(client *elasticsearch.Client, cfg ESConfig, chunker *ingest.Chunker, embedder genai.Embedder, log logger.Logger) *ElasticsearchStore {
	s := &ElasticsearchStore{
		client:   client,
		cfg:      cfg,
		chunker:  chunker,
		embedder: embedder,
		logger:   log.With(map[string]interface{}{"component": "vectorstore", "backend": "elasticsearch", "index": cfg.Index}),
	}
	s.seq.Store(time.Now().UnixNano())
	return s
}

func (s *ElasticsearchStore) mapping() map[string]interface{} {
	return map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"chunk_id":    map[string]interface{}{"type": "keyword"},
				"document_id": map[string]interface{}{"type": "keyword"},
				"batch_id":    map[string]interface{}{"type": "keyword"},
				"seq":         map[string]interface{}{"type": "long"},
				"content":     map[string]interface{}{"type": "text"},
				"metadata":    map[string]interface{}{"type": "object", "enabled": false},
				"vector": map[string]interface{}{
					"type":       "dense_vector",
					"dims":       s.cfg.Dimensions,
					"index":      true,
					"similarity": "cosine",
				},
			},
		},
	}
}

// Init creates the index when it does not exist yet.
func (s *ElasticsearchStore) Init(ctx context.Context) error {
	exists := esapi.IndicesExistsRequest{Index: []string{s.cfg.Index}}
	res, err := exists.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("check index %s: %w", s.cfg.Index, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("check index %s: %s", s.cfg.Index, res.Status())
	}

	body, _ := json.Marshal(s.mapping())
	create := esapi.IndicesCreateRequest{
		Index: s.cfg.Index,
		Body:  bytes.NewReader(body),
	}
	res, err = create.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("create index %s: %w", s.cfg.Index, err)
	}
	defer res.Body.Close()
	// a concurrent creator wins the race with resource_already_exists_exception
	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", s.cfg.Index, res.String())
	}
	s.logger.Info("vector index created", map[string]interface{}{"dimensions": s.cfg.Dimensions})
	return nil
}

// Insert writes all chunks of doc in one bulk request that waits for a
// refresh. Visibility is best effort: a periodic refresh during the bulk may
// expose some chunks before the rest. If any item fails the chunks that did
// land are deleted again by batch id.
func (s *ElasticsearchStore) Insert(ctx context.Context, doc models.Document) error {
	chunks := s.chunker.Chunk(doc)
	if len(chunks) == 0 {
		return nil
	}

	vectors, err := embedAll(ctx, s.embedder, chunks, s.cfg.Concurrency)
	if err != nil {
		return apperrors.NewVectorInsertFailedError(doc.ID, err)
	}

	batchID := uuid.NewString()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, c := range chunks {
		action := map[string]interface{}{"index": map[string]interface{}{"_index": s.cfg.Index, "_id": c.ID}}
		if err := enc.Encode(action); err != nil {
			return apperrors.NewVectorInsertFailedError(doc.ID, err)
		}
		if err := enc.Encode(esChunk{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			BatchID:    batchID,
			Seq:        s.seq.Add(1),
			Content:    c.Content,
			Metadata:   c.Metadata,
			Vector:     vectors[i],
		}); err != nil {
			return apperrors.NewVectorInsertFailedError(doc.ID, err)
		}
	}

	req := esapi.BulkRequest{
		Body:    &buf,
		Refresh: "wait_for",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return apperrors.NewVectorInsertFailedError(doc.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return apperrors.NewVectorInsertFailedError(doc.ID, fmt.Errorf("bulk insert: %s", res.String()))
	}

	var bulk struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulk); err != nil {
		return apperrors.NewVectorInsertFailedError(doc.ID, fmt.Errorf("decode bulk response: %w", err))
	}
	if bulk.Errors {
		failed := 0
		reason := ""
		for _, item := range bulk.Items {
			for _, r := range item {
				if r.Error != nil {
					failed++
					reason = r.Error.Type + ": " + r.Error.Reason
				}
			}
		}
		s.rollback(ctx, batchID)
		return apperrors.NewVectorInsertFailedError(doc.ID, fmt.Errorf("%d of %d chunks rejected, last: %s", failed, len(chunks), reason))
	}

	s.logger.Debug("document indexed", map[string]interface{}{"documentId": doc.ID, "chunks": len(chunks)})
	if n, err := s.Count(ctx); err == nil {
		metrics.VectorStoreChunks.WithLabelValues("elasticsearch").Set(float64(n))
	}
	return nil
}

func (s *ElasticsearchStore) rollback(ctx context.Context, batchID string) {
	body, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{"term": map[string]interface{}{"batch_id": batchID}},
	})
	refresh := true
	req := esapi.DeleteByQueryRequest{
		Index:   []string{s.cfg.Index},
		Body:    bytes.NewReader(body),
		Refresh: &refresh,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		s.logger.Error("partial insert cleanup failed", map[string]interface{}{"batchId": batchID, "error": err})
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		s.logger.Error("partial insert cleanup failed", map[string]interface{}{"batchId": batchID, "response": res.String()})
	}
}

func (s *ElasticsearchStore) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	if k <= 0 {
		return []models.SearchResult{}, nil
	}
	n, err := s.Count(ctx)
	if err != nil {
		return nil, apperrors.NewVectorSearchFailedError(err)
	}
	if n == 0 {
		return []models.SearchResult{}, nil
	}

	qv, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, apperrors.NewVectorSearchFailedError(err)
	}

	candidates := k * 10
	if candidates < 50 {
		candidates = 50
	}
	queryBody := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "vector",
			"query_vector":   qv,
			"k":              k,
			"num_candidates": candidates,
		},
		"size":    k,
		"_source": map[string]interface{}{"excludes": []string{"vector"}},
	}
	body, _ := json.Marshal(queryBody)
	req := esapi.SearchRequest{
		Index: []string{s.cfg.Index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, apperrors.NewVectorSearchFailedError(err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return []models.SearchResult{}, nil
	}
	if res.IsError() {
		return nil, apperrors.NewVectorSearchFailedError(fmt.Errorf("search failed: %s", res.String()))
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Score  float64 `json:"_score"`
				Source esChunk `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, apperrors.NewVectorSearchFailedError(err)
	}

	hits := r.Hits.Hits
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Source.Seq < hits[j].Source.Seq
	})
	if len(hits) > k {
		hits = hits[:k]
	}

	results := make([]models.SearchResult, 0, len(hits))
	for _, h := range hits {
		meta := h.Source.Metadata
		if meta == nil {
			meta = map[string]interface{}{}
		}
		results = append(results, models.SearchResult{
			DocumentID: h.Source.DocumentID,
			Content:    h.Source.Content,
			Metadata:   meta,
			// cosine similarity is stored as (1 + cos) / 2
			Score: 2*h.Score - 1,
		})
	}
	return results, nil
}

// Count returns the number of indexed chunks; a missing index counts as empty.
func (s *ElasticsearchStore) Count(ctx context.Context) (int, error) {
	req := esapi.CountRequest{Index: []string{s.cfg.Index}}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return 0, nil
	}
	if res.IsError() {
		return 0, fmt.Errorf("count failed: %s", res.String())
	}
	var r struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, err
	}
	return r.Count, nil
}
