package chat

import (
	"context"
	"time"

	"trip-assistant/internal/models"
)

type IntentClassifier interface {
	Classify(ctx context.Context, query, lang string) models.IntentClassificationResult
}

type SlotExtractor interface {
	ExtractAll(ctx context.Context, query string, existing models.ConversationContext) models.ConversationContext
}

type Retriever interface {
	Retrieve(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error)
	SearchPlaceIDs(ctx context.Context, query string, maxResults int) ([]int64, error)
}

type Generator interface {
	AnswerWithCitations(ctx context.Context, query string, results []models.SearchResult, lang string) string
	RecommendRoute(ctx context.Context, query string, places []models.PlaceRecord, dayCount int, lang string) string
	RecommendExistingRoutes(ctx context.Context, query string, routes []models.RouteSummary, docs []models.SearchResult, lang string) string
}

type PlaceLookup interface {
	FindPlacesByIDs(ctx context.Context, ids []int64) ([]models.PlaceRecord, error)
}

type RouteCreator interface {
	CreateRouteFromPlaceIDs(ctx context.Context, placeIDs []int64) (models.CreatedRoute, error)
}

type RouteSearch interface {
	FindByThemeAndRegion(ctx context.Context, theme models.Theme, region string, limit int) ([]models.RouteSummary, error)
	FindByTheme(ctx context.Context, theme models.Theme, limit int) ([]models.RouteSummary, error)
	FindByRegion(ctx context.Context, region string, limit int) ([]models.RouteSummary, error)
	FindPopular(ctx context.Context, limit int) ([]models.RouteSummary, error)
}

// TurnRecorder receives one observation per completed turn.
type TurnRecorder interface {
	RecordTurn(ctx context.Context, responseType string, duration time.Duration)
}

// Deps groups the collaborators of the orchestrator.
type Deps struct {
	Sessions  SessionStore
	Intents   IntentClassifier
	Slots     SlotExtractor
	Retriever Retriever
	Generator Generator
	Places    PlaceLookup
	Routes    RouteCreator
	Search    RouteSearch
	Recorder  TurnRecorder
}
