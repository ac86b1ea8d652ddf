package chat

import (
	"context"
	"strconv"
	"strings"

	"trip-assistant/internal/assistant/catalog"
	"trip-assistant/internal/common/i18n"
	"trip-assistant/internal/common/metrics"
	"trip-assistant/internal/models"
)

// buildRoute turns a fully slotted context into a stored route. When the
// catalog cannot fill the requested days the day count is lowered to what
// the found places support. Any failure is answered with a no-results
// message and the conversation starts over.
func (s *Service) buildRoute(ctx context.Context, query string, conv models.ConversationContext, lang string) models.ChatResponse {
	perDay := s.config.PlacesPerDay
	if perDay < 1 {
		perDay = catalog.PlacesPerDay
	}
	requested := models.MinDayCount
	if conv.DayCount != nil {
		requested = *conv.DayCount
	}

	fail := func(stage string, err error) models.ChatResponse {
		s.logger.Warn("route build failed", map[string]interface{}{
			"sessionId": conv.SessionID,
			"stage":     stage,
			"error":     err,
		})
		conv.ConversationState = models.StateInitial
		conv.LastBotQuestion = nil
		return s.noResults(conv, i18n.NoResults, lang)
	}

	ids, err := s.deps.Retriever.SearchPlaceIDs(ctx, routeSearchQuery(query, conv), requested*perDay)
	if err != nil {
		return fail("search", err)
	}
	if len(ids) == 0 {
		return fail("search", nil)
	}

	days := requested
	if supported := len(ids) / perDay; supported < requested {
		days = supported
		if days < 1 {
			days = 1
		}
	}
	if limit := days * perDay; len(ids) > limit {
		ids = ids[:limit]
	}

	created, err := s.deps.Routes.CreateRouteFromPlaceIDs(ctx, ids)
	if err != nil {
		return fail("create", err)
	}
	found, err := s.deps.Places.FindPlacesByIDs(ctx, ids)
	if err != nil {
		return fail("lookup", err)
	}
	places := catalog.OrderPlaces(found, ids)
	if len(places) == 0 {
		return fail("lookup", nil)
	}

	message := s.deps.Generator.RecommendRoute(ctx, query, places, days, lang)
	adjusted := days != requested
	if adjusted {
		message = i18n.Message(lang, i18n.DaysAdjusted, requested, days) + "\n\n" + message
	}
	metrics.RoutesCreated.WithLabelValues(strconv.FormatBool(adjusted)).Inc()

	conv.DayCount = models.Ptr(days)
	conv.ConversationState = models.StateInitial
	conv.LastBotQuestion = nil

	return models.ChatResponse{
		ResponseType: models.ResponseRouteRecommendation,
		Message:      message,
		Context:      conv,
		RouteRecommendation: &models.RouteRecommendation{
			RouteID:              created.RouteID,
			Title:                created.TitleKo,
			Description:          created.DescriptionKo,
			DayCount:             days,
			RequestedDayCount:    requested,
			TotalCost:            created.TotalCost,
			TotalDurationMinutes: created.TotalDurationMinutes,
			Days:                 models.PlanDays(places, days),
		},
	}
}

// routeSearchQuery enriches the user's words with the filled slots so the
// vector search sees the theme and region even on short answers like "3일".
func routeSearchQuery(query string, conv models.ConversationContext) string {
	parts := []string{strings.TrimSpace(query)}
	if conv.Theme != nil {
		parts = append(parts, string(*conv.Theme))
	}
	if conv.Region != nil {
		parts = append(parts, *conv.Region)
	}
	if conv.Budget != nil {
		parts = append(parts, strconv.Itoa(*conv.Budget))
	}
	if conv.Preferences != nil {
		parts = append(parts, *conv.Preferences)
	}
	return strings.Join(parts, " ")
}
