package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"trip-assistant/internal/api"
	"trip-assistant/internal/assistant/catalog"
	"trip-assistant/internal/assistant/chat"
	"trip-assistant/internal/assistant/generator"
	"trip-assistant/internal/assistant/ingest"
	"trip-assistant/internal/assistant/intent"
	"trip-assistant/internal/assistant/retriever"
	"trip-assistant/internal/assistant/session"
	"trip-assistant/internal/assistant/slots"
	"trip-assistant/internal/assistant/vectorstore"
	"trip-assistant/internal/common/genai"
	"trip-assistant/internal/common/i18n"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/models"
	"trip-assistant/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modelAnswer = "추천 코스입니다"

var vocab = []string{"부산", "서울", "food", "맛집", "bts", "kpop"}

// fakeModelServer speaks the completion and embedding API. Completions are
// never JSON, so every structured call takes its deterministic fallback.
func fakeModelServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/chat/completions":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"choices": []map[string]interface{}{{"message": map[string]string{"role": "assistant", "content": modelAnswer}}},
			})
		case "/embeddings":
			var req struct {
				Input string `json:"input"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			text := strings.ToLower(req.Input)
			vec := make([]float32, len(vocab)+1)
			for i, term := range vocab {
				if strings.Contains(text, term) {
					vec[i] = 1
				}
			}
			vec[len(vocab)] = 0.1
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []map[string]interface{}{{"embedding": vec}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// memoryCatalog stands in for the Postgres catalog.
type memoryCatalog struct {
	mu      sync.Mutex
	places  []models.PlaceRecord
	created [][]int64
}

func (c *memoryCatalog) FindAll(context.Context) ([]models.PlaceRecord, error) {
	return c.places, nil
}

func (c *memoryCatalog) FindPlacesByIDs(_ context.Context, ids []int64) ([]models.PlaceRecord, error) {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.PlaceRecord
	for _, p := range c.places {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *memoryCatalog) CreateRouteFromPlaceIDs(_ context.Context, ids []int64) (models.CreatedRoute, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created = append(c.created, append([]int64(nil), ids...))
	return models.CreatedRoute{RouteID: int64(len(c.created)), TitleKo: "부산 맛집 코스", TotalCost: 40000, TotalDurationMinutes: 240}, nil
}

func (c *memoryCatalog) FindByThemeAndRegion(context.Context, models.Theme, string, int) ([]models.RouteSummary, error) {
	return nil, nil
}

func (c *memoryCatalog) FindByTheme(context.Context, models.Theme, int) ([]models.RouteSummary, error) {
	return nil, nil
}

func (c *memoryCatalog) FindByRegion(context.Context, string, int) ([]models.RouteSummary, error) {
	return nil, nil
}

func (c *memoryCatalog) FindPopular(context.Context, int) ([]models.RouteSummary, error) {
	return nil, nil
}

type stack struct {
	server  *httptest.Server
	catalog *memoryCatalog
}

func newStack(t *testing.T) *stack {
	log := logger.NewTestLogger(t)
	model := fakeModelServer(t)
	ai := genai.NewClient(&genai.Config{
		BaseURL:           model.URL,
		ChatModel:         "test",
		EmbeddingModel:    "test",
		Timeout:           5 * time.Second,
		MaxRetries:        1,
		RequestsPerSecond: 1000,
		Burst:             1000,
	}, log)

	cat := &memoryCatalog{}
	for i := int64(1); i <= 6; i++ {
		cat.places = append(cat.places, models.PlaceRecord{
			ID: i, Name: "부산 맛집 " + string(rune('A'+i-1)), Region: "부산", Themes: []string{"FOOD"},
			Description: "부산 food 명소", EstimatedCost: 10000, EstimatedDurationMinutes: 60,
		})
	}
	cat.places = append(cat.places, models.PlaceRecord{
		ID: 7, Name: "하이브 인사이트", Region: "서울", Themes: []string{"KPOP"}, Description: "BTS 전시 공간",
	})

	ingestCfg := &ingest.Config{ChunkSize: 500, MinChunkSize: 50, MaxChunks: 20, SeedAttempts: 1}
	store := vectorstore.NewMemoryStore(ingest.NewChunker(ingestCfg), ai, 2, log)
	report, err := ingest.NewSeeder(ingestCfg, cat, store, log).Seed(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, report.Inserted)

	classifier, err := intent.New(&intent.Config{ConfidenceThreshold: 0.6}, ai, registry.Default(), log)
	require.NoError(t, err)

	service := chat.NewService(chat.DefaultConfig(), chat.Deps{
		Sessions:  session.NewMemoryStore(&session.Config{}),
		Intents:   classifier,
		Slots:     slots.New(slots.DefaultConfig(), ai, log),
		Retriever: retriever.New(store, log),
		Generator: generator.New(ai, log),
		Places:    cat,
		Routes:    cat,
		Search:    cat,
	}, log)

	mux := http.NewServeMux()
	api.NewHandler(&api.Config{Timeout: 10 * time.Second}, service, log).Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &stack{server: srv, catalog: cat}
}

func (s *stack) turn(t *testing.T, query string, conv *models.ConversationContext) models.ChatResponse {
	t.Helper()
	body, err := json.Marshal(models.ChatRequest{Query: query, Context: conv, Language: "ko"})
	require.NoError(t, err)

	resp, err := http.Post(s.server.URL+"/api/chat", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestEndToEnd_SlotFillingDialogue(t *testing.T) {
	s := newStack(t)

	first := s.turn(t, "추천해줘", nil)
	assert.Equal(t, models.ResponseQuestion, first.ResponseType)
	assert.Equal(t, models.StateAwaitingTheme, first.Context.ConversationState)
	require.NotEmpty(t, first.Context.SessionID)

	second := s.turn(t, "맛집", &first.Context)
	assert.Equal(t, models.StateAwaitingRegion, second.Context.ConversationState)
	assert.Equal(t, first.Context.SessionID, second.Context.SessionID)

	third := s.turn(t, "부산", &second.Context)
	assert.Equal(t, models.StateAwaitingDays, third.Context.ConversationState)

	final := s.turn(t, "3일", &third.Context)
	assert.Equal(t, models.ResponseRouteRecommendation, final.ResponseType)
	assert.True(t, strings.HasPrefix(final.Message, i18n.Message(i18n.Korean, i18n.DaysAdjusted, 3, 1)))
	assert.Contains(t, final.Message, modelAnswer)
	require.NotNil(t, final.RouteRecommendation)
	assert.Equal(t, 1, final.RouteRecommendation.DayCount)
	assert.Equal(t, 3, final.RouteRecommendation.RequestedDayCount)
	require.Len(t, final.RouteRecommendation.Days, 1)
	assert.Len(t, final.RouteRecommendation.Days[0].Places, catalog.PlacesPerDay)
	assert.Equal(t, models.StateInitial, final.Context.ConversationState)

	require.Len(t, s.catalog.created, 1)
	assert.Len(t, s.catalog.created[0], catalog.PlacesPerDay)
	for _, id := range s.catalog.created[0] {
		assert.NotEqual(t, int64(7), id)
	}
}

func TestEndToEnd_GeneralQuestionCitesSources(t *testing.T) {
	s := newStack(t)

	resp := s.turn(t, "BTS가 뭐야?", nil)
	assert.Equal(t, models.ResponseGeneralInfo, resp.ResponseType)
	assert.True(t, strings.HasPrefix(resp.Message, modelAnswer))
	assert.Contains(t, resp.Message, i18n.Message(i18n.Korean, i18n.Sources)+":")
	assert.Contains(t, resp.Message, "하이브 인사이트")
}
