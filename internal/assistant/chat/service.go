// Package chat runs one conversational turn: session resolution, slot
// filling, intent dispatch and response assembly.
package chat

import (
	"context"
	"strings"
	"time"

	"trip-assistant/internal/assistant/catalog"
	"trip-assistant/internal/assistant/session"
	"trip-assistant/internal/assistant/slots"
	apperrors "trip-assistant/internal/common/errors"
	"trip-assistant/internal/common/i18n"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/common/metrics"
	"trip-assistant/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("trip-assistant/chat")

type SessionStore = session.Store

type Service struct {
	config *Config
	deps   Deps
	logger logger.Logger
	now    func() time.Time
}

func NewService(cfg *Config, deps Deps, log logger.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Service{
		config: cfg,
		deps:   deps,
		logger: log.With(map[string]interface{}{"component": "chat"}),
		now:    time.Now,
	}
}

// Chat handles one turn. The only error is an invalid request; every other
// failure is answered with a response in the user's language.
func (s *Service) Chat(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return models.ChatResponse{}, apperrors.NewInvalidRequestError("query must not be empty")
	}

	started := s.now()
	lang := i18n.Normalize(req.Language)

	ctx, span := tracer.Start(ctx, "chat.turn", trace.WithAttributes(attribute.String("language", lang)))
	defer span.End()

	conv := s.resolveSession(ctx, req.Context, lang)
	span.SetAttributes(
		attribute.String("session.id", conv.SessionID),
		attribute.String("state.before", string(conv.ConversationState)),
	)

	resp := s.dispatch(ctx, query, conv, lang, true)
	s.persist(ctx, resp.Context)

	span.SetAttributes(
		attribute.String("response.type", string(resp.ResponseType)),
		attribute.String("state.after", string(resp.Context.ConversationState)),
	)
	metrics.ChatTurns.WithLabelValues(string(resp.ResponseType)).Inc()
	if s.deps.Recorder != nil {
		s.deps.Recorder.RecordTurn(ctx, string(resp.ResponseType), s.now().Sub(started))
	}
	return resp, nil
}

// resolveSession starts a new context when none is given, otherwise lets
// stored values fill the gaps of the incoming one.
func (s *Service) resolveSession(ctx context.Context, incoming *models.ConversationContext, lang string) models.ConversationContext {
	if incoming == nil {
		return models.NewConversationContext(uuid.NewString(), lang, s.now().UTC())
	}

	conv := incoming.Clone()
	if conv.SessionID == "" {
		conv.SessionID = uuid.NewString()
	}
	if stored, found, err := s.deps.Sessions.Get(ctx, conv.SessionID); err != nil {
		s.logger.Warn("session lookup failed, continuing with request context", map[string]interface{}{
			"sessionId": conv.SessionID,
			"error":     err,
		})
	} else if found {
		conv = models.Merge(stored, conv)
	}

	if conv.ConversationState == "" {
		conv.ConversationState = models.StateInitial
	}
	if conv.ConversationStartTime.IsZero() {
		conv.ConversationStartTime = s.now().UTC()
	}
	conv.UserLanguage = lang
	return conv
}

// persist writes the turn's context as one atomic update of the session key.
// The turn's values win over whatever a racing turn stored meanwhile, except
// that the session keeps its earliest start time.
func (s *Service) persist(ctx context.Context, conv models.ConversationContext) {
	_, err := s.deps.Sessions.Update(ctx, conv.SessionID, func(current models.ConversationContext, found bool) models.ConversationContext {
		next := conv.Clone()
		if found && !current.ConversationStartTime.IsZero() && current.ConversationStartTime.Before(next.ConversationStartTime) {
			next.ConversationStartTime = current.ConversationStartTime
		}
		return next
	})
	if err != nil {
		s.logger.Error("failed to persist session", map[string]interface{}{
			"sessionId": conv.SessionID,
			"error":     err,
		})
	}
}

// dispatch routes by conversation state. An unknown state is reset to
// INITIAL and the turn re-run once.
func (s *Service) dispatch(ctx context.Context, query string, conv models.ConversationContext, lang string, mayReset bool) models.ChatResponse {
	switch conv.ConversationState {
	case models.StateInitial:
		return s.handleInitial(ctx, query, conv, lang)

	case models.StateAwaitingTheme:
		theme, ok := slots.ExtractTheme(query)
		if !ok {
			return s.notUnderstood(conv, i18n.ThemeNotUnderstood, lang)
		}
		conv.Theme = models.Ptr(theme)
		return s.advance(ctx, query, conv, lang)

	case models.StateAwaitingRegion:
		region, ok := slots.ExtractRegion(query)
		if !ok {
			return s.notUnderstood(conv, i18n.RegionNotUnderstood, lang)
		}
		conv.Region = models.Ptr(region)
		return s.advance(ctx, query, conv, lang)

	case models.StateAwaitingDays:
		days, ok := slots.ExtractDays(query)
		if !ok {
			return s.notUnderstood(conv, i18n.DaysNotUnderstood, lang)
		}
		conv.DayCount = models.Ptr(days)
		return s.advance(ctx, query, conv, lang)

	case models.StateReadyForRoute:
		return s.advance(ctx, query, conv, lang)

	default:
		s.logger.Warn("unknown conversation state, resetting", map[string]interface{}{
			"sessionId": conv.SessionID,
			"state":     conv.ConversationState,
		})
		conv.ConversationState = models.StateInitial
		if !mayReset {
			return s.handleInitial(ctx, query, conv, lang)
		}
		return s.dispatch(ctx, query, conv, lang, false)
	}
}

// advance asks for the next missing slot, or builds the route once all
// slots are known.
func (s *Service) advance(ctx context.Context, query string, conv models.ConversationContext, lang string) models.ChatResponse {
	if slot, missing := conv.NextMissingSlot(); missing {
		return s.ask(conv, slot, lang)
	}
	conv.ConversationState = models.StateReadyForRoute
	return s.buildRoute(ctx, query, conv, lang)
}

var slotQuestions = map[models.Slot]i18n.Key{
	models.SlotTheme:  i18n.AskTheme,
	models.SlotRegion: i18n.AskRegion,
	models.SlotDays:   i18n.AskDays,
}

func (s *Service) ask(conv models.ConversationContext, slot models.Slot, lang string) models.ChatResponse {
	msg := i18n.Message(lang, slotQuestions[slot])
	conv.ConversationState = models.AwaitingState(slot)
	conv.LastBotQuestion = models.Ptr(msg)
	return models.ChatResponse{ResponseType: models.ResponseQuestion, Message: msg, Context: conv}
}

// notUnderstood keeps the state so the same slot is asked again.
func (s *Service) notUnderstood(conv models.ConversationContext, key i18n.Key, lang string) models.ChatResponse {
	msg := i18n.Message(lang, key)
	conv.LastBotQuestion = models.Ptr(msg)
	return models.ChatResponse{ResponseType: models.ResponseQuestion, Message: msg, Context: conv}
}

func (s *Service) handleInitial(ctx context.Context, query string, conv models.ConversationContext, lang string) models.ChatResponse {
	result := s.deps.Intents.Classify(ctx, query, lang)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("intent", string(result.Intent)),
		attribute.Float64("intent.confidence", result.Confidence),
	)

	switch result.Intent {
	case models.IntentCreateRoute:
		conv = s.deps.Slots.ExtractAll(ctx, query, conv)
		return s.advance(ctx, query, conv, lang)
	case models.IntentSearchExistingRoutes:
		conv = s.deps.Slots.ExtractAll(ctx, query, conv)
		return s.searchExistingRoutes(ctx, query, conv, lang)
	case models.IntentSearchPlaces:
		return s.searchPlaces(ctx, query, conv, lang)
	default:
		return s.answerQuestion(ctx, query, conv, lang)
	}
}

// findRoutes widens the filter until something matches: theme and region,
// theme, region, then the most popular routes.
func (s *Service) findRoutes(ctx context.Context, conv models.ConversationContext) []models.RouteSummary {
	limit := s.config.MaxRoutes
	hasRegion := conv.Region != nil && strings.TrimSpace(*conv.Region) != ""

	type step struct {
		name string
		ok   bool
		run  func() ([]models.RouteSummary, error)
	}
	steps := []step{
		{"theme_region", conv.Theme != nil && hasRegion, func() ([]models.RouteSummary, error) {
			return s.deps.Search.FindByThemeAndRegion(ctx, *conv.Theme, *conv.Region, limit)
		}},
		{"theme", conv.Theme != nil, func() ([]models.RouteSummary, error) {
			return s.deps.Search.FindByTheme(ctx, *conv.Theme, limit)
		}},
		{"region", hasRegion, func() ([]models.RouteSummary, error) {
			return s.deps.Search.FindByRegion(ctx, *conv.Region, limit)
		}},
		{"popular", true, func() ([]models.RouteSummary, error) {
			return s.deps.Search.FindPopular(ctx, limit)
		}},
	}
	for _, st := range steps {
		if !st.ok {
			continue
		}
		routes, err := st.run()
		if err != nil {
			s.logger.Warn("route search failed", map[string]interface{}{"filter": st.name, "error": err})
			continue
		}
		if len(routes) > 0 {
			return routes
		}
	}
	return nil
}

func (s *Service) searchExistingRoutes(ctx context.Context, query string, conv models.ConversationContext, lang string) models.ChatResponse {
	routes := s.findRoutes(ctx, conv)
	if len(routes) == 0 {
		msg := i18n.Message(lang, i18n.NoRoutesFound)
		conv.LastBotQuestion = models.Ptr(msg)
		return models.ChatResponse{ResponseType: models.ResponseQuestion, Message: msg, Context: conv}
	}
	if len(routes) > s.config.MaxRoutes {
		routes = routes[:s.config.MaxRoutes]
	}

	docs, err := s.deps.Retriever.Retrieve(ctx, query, s.config.ContextDocuments)
	if err != nil {
		s.logger.Warn("retrieval failed, recommending without documents", map[string]interface{}{"error": err})
		docs = nil
	}
	narrative := s.deps.Generator.RecommendExistingRoutes(ctx, query, routes, docs, lang)

	return models.ChatResponse{
		ResponseType:   models.ResponseExistingRoutes,
		Message:        i18n.Message(lang, i18n.RoutesFound, len(routes)) + "\n\n" + narrative,
		Context:        conv,
		ExistingRoutes: routes,
	}
}

func (s *Service) searchPlaces(ctx context.Context, query string, conv models.ConversationContext, lang string) models.ChatResponse {
	ids, err := s.deps.Retriever.SearchPlaceIDs(ctx, query, s.config.MaxPlaces)
	if err != nil {
		s.logger.Warn("place search failed", map[string]interface{}{"error": err})
	}
	if len(ids) == 0 {
		return s.noResults(conv, i18n.NoPlaces, lang)
	}

	found, err := s.deps.Places.FindPlacesByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("place lookup failed", map[string]interface{}{"error": err, "placeIds": ids})
		return s.noResults(conv, i18n.NoPlaces, lang)
	}
	places := catalog.OrderPlaces(found, ids)
	if len(places) == 0 {
		return s.noResults(conv, i18n.NoPlaces, lang)
	}
	return models.ChatResponse{
		ResponseType: models.ResponsePlaceInfo,
		Message:      i18n.Message(lang, i18n.PlacesFound, len(places)),
		Context:      conv,
		Places:       places,
	}
}

func (s *Service) answerQuestion(ctx context.Context, query string, conv models.ConversationContext, lang string) models.ChatResponse {
	docs, err := s.deps.Retriever.Retrieve(ctx, query, s.config.ContextDocuments)
	if err != nil {
		s.logger.Warn("retrieval failed", map[string]interface{}{"error": err})
		docs = nil
	}
	return models.ChatResponse{
		ResponseType: models.ResponseGeneralInfo,
		Message:      s.deps.Generator.AnswerWithCitations(ctx, query, docs, lang),
		Context:      conv,
	}
}

func (s *Service) noResults(conv models.ConversationContext, key i18n.Key, lang string) models.ChatResponse {
	return models.ChatResponse{
		ResponseType: models.ResponseGeneralInfo,
		Message:      i18n.Message(lang, key),
		Context:      conv,
	}
}
