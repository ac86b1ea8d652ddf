package vectorstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"trip-assistant/internal/assistant/ingest"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeES answers the handful of endpoints the store uses.
type fakeES struct {
	mu       sync.Mutex
	count    int
	hits     string
	bulkResp string
	paths    []string
	bodies   map[string]string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	if f.bodies == nil {
		f.bodies = map[string]string{}
	}
	f.bodies[r.URL.Path] = string(body)
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/_count"):
		if f.count < 0 {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"},"status":404}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"count": f.count})
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = w.Write([]byte(f.hits))
	case strings.HasSuffix(r.URL.Path, "/_bulk"):
		_, _ = w.Write([]byte(f.bulkResp))
	case strings.HasSuffix(r.URL.Path, "/_delete_by_query"):
		_, _ = w.Write([]byte(`{"deleted":1}`))
	default:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}
}

func (f *fakeES) called(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.paths {
		if strings.HasSuffix(p, path) {
			return true
		}
	}
	return false
}

func newESStore(t *testing.T, fake *fakeES, emb *keywordEmbedder) *ElasticsearchStore {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	chunker := ingest.NewChunker(&ingest.Config{ChunkSize: 100, MaxChunks: 10})
	return NewElasticsearchStore(client, ESConfig{Index: "place-chunks", Dimensions: 4, Concurrency: 2}, chunker, emb, logger.NewTestLogger(t))
}

func TestElasticsearchStore_SearchMissingIndex(t *testing.T) {
	emb := &keywordEmbedder{vocab: []string{"서울"}}
	store := newESStore(t, &fakeES{count: -1}, emb)

	results, err := store.Search(context.Background(), "서울", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, int32(0), emb.calls.Load())
}

func TestElasticsearchStore_SearchConvertsScores(t *testing.T) {
	fake := &fakeES{
		count: 3,
		hits: `{"hits":{"hits":[
			{"_score":0.75,"_source":{"document_id":"late","seq":9,"content":"b","metadata":{"placeId":7}}},
			{"_score":1.0,"_source":{"document_id":"best","seq":5,"content":"a","metadata":{"placeId":3}}},
			{"_score":0.75,"_source":{"document_id":"early","seq":2,"content":"c","metadata":{}}}
		]}}`,
	}
	emb := &keywordEmbedder{vocab: []string{"서울", "부산", "제주"}}
	store := newESStore(t, fake, emb)

	results, err := store.Search(context.Background(), "서울", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "best", results[0].DocumentID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, "early", results[1].DocumentID)
	assert.Equal(t, "late", results[2].DocumentID)
	assert.InDelta(t, 0.5, results[2].Score, 1e-9)
	assert.Equal(t, float64(3), results[0].Metadata[models.MetaPlaceID])

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(fake.bodies["/place-chunks/_search"]), &sent))
	knn := sent["knn"].(map[string]interface{})
	assert.Equal(t, "vector", knn["field"])
	assert.Equal(t, float64(50), knn["num_candidates"])
}

func TestElasticsearchStore_PartialBulkFailureRollsBack(t *testing.T) {
	fake := &fakeES{
		bulkResp: `{"errors":true,"items":[
			{"index":{"status":201}},
			{"index":{"status":400,"error":{"type":"mapper_parsing_exception","reason":"bad vector"}}}
		]}`,
	}
	emb := &keywordEmbedder{vocab: []string{"문단"}}
	store := newESStore(t, fake, emb)

	content := strings.Repeat("첫째 문단 내용입니다. ", 6) + "\n\n" + strings.Repeat("둘째 문단 내용입니다. ", 6)
	err := store.Insert(context.Background(), models.Document{ID: "doc", Content: content})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VECTOR_INSERT_FAILED")
	assert.True(t, fake.called("/_delete_by_query"))
	assert.Contains(t, fake.bodies["/place-chunks/_delete_by_query"], "batch_id")
}

func TestElasticsearchStore_InsertWritesEveryChunk(t *testing.T) {
	fake := &fakeES{count: 2, bulkResp: `{"errors":false,"items":[{"index":{"status":201}},{"index":{"status":201}}]}`}
	emb := &keywordEmbedder{vocab: []string{"문단"}}
	store := newESStore(t, fake, emb)

	content := strings.Repeat("첫째 문단 내용입니다. ", 6) + "\n\n" + strings.Repeat("둘째 문단 내용입니다. ", 6)
	require.NoError(t, store.Insert(context.Background(), models.Document{ID: "doc", Content: content}))

	bulk := fake.bodies["/_bulk"]
	lines := strings.Split(strings.TrimSpace(bulk), "\n")
	assert.Equal(t, 0, len(lines)%2)
	assert.Equal(t, len(lines)/2, int(emb.calls.Load()))
	assert.Contains(t, bulk, `"document_id":"doc"`)
	assert.False(t, fake.called("/_delete_by_query"))
}
