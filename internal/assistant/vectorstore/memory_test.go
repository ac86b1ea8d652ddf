package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"trip-assistant/internal/assistant/ingest"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder returns one dimension per vocabulary term the text
// contains, plus a constant bias dimension so no vector is zero.
type keywordEmbedder struct {
	vocab []string
	calls atomic.Int32
	// failOn makes Embed fail for texts containing it.
	failOn string
}

func (e *keywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return nil, errors.New("embedding service unavailable")
	}
	v := make([]float32, len(e.vocab)+1)
	v[0] = 0.1
	for i, term := range e.vocab {
		if strings.Contains(text, term) {
			v[i+1] = 1
		}
	}
	return v, nil
}

func newTestStore(t *testing.T, emb *keywordEmbedder) *MemoryStore {
	t.Helper()
	chunker := ingest.NewChunker(&ingest.Config{ChunkSize: 100, MinChunkSize: 0, MaxChunks: 10})
	return NewMemoryStore(chunker, emb, 2, logger.NewTestLogger(t))
}

func doc(id, content string) models.Document {
	return models.Document{ID: id, Content: content, Metadata: map[string]interface{}{models.MetaDocumentID: id}}
}

func TestMemoryStore_SearchEmptyStore(t *testing.T) {
	emb := &keywordEmbedder{vocab: []string{"서울"}}
	store := newTestStore(t, emb)

	for _, k := range []int{0, 1, 5, 100} {
		results, err := store.Search(context.Background(), "서울 맛집", k)
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	}
	assert.Equal(t, int32(0), emb.calls.Load(), "empty store must not call the embedder")
}

func TestMemoryStore_SearchOrdersByScore(t *testing.T) {
	emb := &keywordEmbedder{vocab: []string{"경복궁", "한옥", "시장"}}
	store := newTestStore(t, emb)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, doc("a", "광장시장 먹거리")))
	require.NoError(t, store.Insert(ctx, doc("b", "경복궁과 한옥 마을")))
	require.NoError(t, store.Insert(ctx, doc("c", "경복궁 야간 개장")))

	results, err := store.Search(ctx, "경복궁 한옥", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].DocumentID)
	assert.Equal(t, "c", results[1].DocumentID)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.Equal(t, "b", results[0].Metadata[models.MetaDocumentID])
}

func TestMemoryStore_TiesKeepInsertionOrder(t *testing.T) {
	emb := &keywordEmbedder{vocab: []string{"해변"}}
	store := newTestStore(t, emb)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Insert(ctx, doc(fmt.Sprintf("d%d", i), "부산 해변 산책")))
	}

	results, err := store.Search(ctx, "해변", 10)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("d%d", i), r.DocumentID)
	}
}

func TestMemoryStore_InsertIsAdditive(t *testing.T) {
	emb := &keywordEmbedder{vocab: []string{"남산"}}
	store := newTestStore(t, emb)
	ctx := context.Background()

	d := doc("namsan", "남산 타워 전망대")
	require.NoError(t, store.Insert(ctx, d))
	require.NoError(t, store.Insert(ctx, d))

	results, err := store.Search(ctx, "남산", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "namsan", results[0].DocumentID)
	assert.Equal(t, "namsan", results[1].DocumentID)
}

func TestMemoryStore_FailedInsertCommitsNothing(t *testing.T) {
	emb := &keywordEmbedder{vocab: []string{"궁"}, failOn: "둘째"}
	store := newTestStore(t, emb)
	ctx := context.Background()

	content := strings.Repeat("첫째 문단 내용입니다. ", 6) + "\n\n" + strings.Repeat("둘째 문단 내용입니다. ", 6)
	err := store.Insert(ctx, doc("broken", content))
	require.Error(t, err)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMemoryStore_PlaceRoundTripByName(t *testing.T) {
	places := []models.PlaceRecord{
		{ID: 1, Name: "하이브 인사이트", Description: "K-POP 전시 공간", Region: "서울", Themes: []string{"KPOP"}},
		{ID: 2, Name: "광장시장", Description: "전통 먹거리 시장", Region: "서울", Themes: []string{"FOOD"}},
		{ID: 3, Name: "해운대", Description: "바다와 산책로", Region: "부산", Themes: []string{"NATURE"}},
	}
	emb := &keywordEmbedder{}
	for _, p := range places {
		emb.vocab = append(emb.vocab, p.Name)
	}
	store := newTestStore(t, emb)
	ctx := context.Background()
	for _, p := range places {
		require.NoError(t, store.Insert(ctx, ingest.PlaceDocument(p)))
	}

	for _, p := range places {
		results, err := store.Search(ctx, p.Name+" 알려줘", 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, ingest.PlaceDocumentID(p.ID), results[0].DocumentID)
		assert.Equal(t, p.ID, results[0].Metadata[models.MetaPlaceID])
	}
}

func TestMemoryStore_SearchSeesWholeDocuments(t *testing.T) {
	emb := &keywordEmbedder{vocab: []string{"문단"}}
	store := newTestStore(t, emb)
	ctx := context.Background()

	content := strings.Repeat("첫째 문단 내용입니다. ", 6) + "\n\n" + strings.Repeat("둘째 문단 내용입니다. ", 6)
	perDoc := len(store.chunker.Chunk(doc("x", content)))
	require.Greater(t, perDoc, 1)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Insert(ctx, doc(fmt.Sprintf("doc-%d", i), content)))
		}(i)
	}
	for i := 0; i < 20; i++ {
		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n%perDoc, "observed a partially inserted document")
	}
	wg.Wait()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10*perDoc, n)
}
