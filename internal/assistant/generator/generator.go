// Package generator turns retrieved context into answers with the
// completion service.
package generator

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"trip-assistant/internal/common/genai"
	"trip-assistant/internal/common/i18n"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/models"
)

type Generator struct {
	completer genai.Completer
	logger    logger.Logger
}

func New(completer genai.Completer, log logger.Logger) *Generator {
	return &Generator{
		completer: completer,
		logger:    log.With(map[string]interface{}{"component": "generator"}),
	}
}

// AnswerWithCitations answers query from the numbered results and appends
// the list of source documents.
func (g *Generator) AnswerWithCitations(ctx context.Context, query string, results []models.SearchResult, lang string) string {
	if len(results) == 0 {
		return i18n.Message(lang, i18n.NoDocuments)
	}
	t := templatesFor(lang)

	var sb strings.Builder
	sb.WriteString(t.contextHeader)
	sb.WriteString("\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, strings.TrimSpace(r.Content))
	}
	fmt.Fprintf(&sb, "\n%s: %s", t.questionLabel, query)

	answer, ok := g.complete(ctx, "qa", t.qaSystem, sb.String(), lang)
	if !ok {
		return answer
	}
	return answer + "\n\n" + sourceList(results, lang)
}

// sourceList names each distinct document once, numbered by its first
// passage in the context block.
func sourceList(results []models.SearchResult, lang string) string {
	var sb strings.Builder
	sb.WriteString(i18n.Message(lang, i18n.Sources))
	sb.WriteString(":")
	seen := make(map[string]bool, len(results))
	for i, r := range results {
		if seen[r.DocumentID] {
			continue
		}
		seen[r.DocumentID] = true
		fmt.Fprintf(&sb, "\n[%d] %s", i+1, r.Title())
	}
	return sb.String()
}

// RecommendRoute narrates a route over places in their given order,
// grouped into dayCount days.
func (g *Generator) RecommendRoute(ctx context.Context, query string, places []models.PlaceRecord, dayCount int, lang string) string {
	if len(places) == 0 {
		return i18n.Message(lang, i18n.NoResults)
	}
	t := templatesFor(lang)

	var sb strings.Builder
	fmt.Fprintf(&sb, t.dayCountLine, dayCount)
	sb.WriteString("\n")
	for _, day := range models.PlanDays(places, dayCount) {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, t.labels.day, day.Day)
		sb.WriteString("\n")
		for i, p := range day.Places {
			fmt.Fprintf(&sb, "%d. ", i+1)
			writePlace(&sb, p, t.labels)
		}
	}
	fmt.Fprintf(&sb, "\n%s: %s", t.questionLabel, query)

	answer, _ := g.complete(ctx, "route_narrative", t.narrativeSystem, sb.String(), lang)
	return answer
}

// RecommendExistingRoutes writes a short recommendation over stored routes,
// using documents as background.
func (g *Generator) RecommendExistingRoutes(ctx context.Context, query string, routes []models.RouteSummary, docs []models.SearchResult, lang string) string {
	if len(routes) == 0 {
		return i18n.Message(lang, i18n.NoRoutesFound)
	}
	t := templatesFor(lang)

	var sb strings.Builder
	for _, r := range routes {
		fmt.Fprintf(&sb, t.routeLine, r.Title, r.Region, r.DayCount)
		if d := strings.TrimSpace(r.Description); d != "" {
			sb.WriteString(": ")
			sb.WriteString(d)
		}
		sb.WriteString("\n")
	}
	if len(docs) > 0 {
		sb.WriteString("\n")
		sb.WriteString(t.contextHeader)
		sb.WriteString("\n")
		for _, d := range docs {
			sb.WriteString("- ")
			sb.WriteString(strings.TrimSpace(d.Content))
			sb.WriteString("\n")
		}
	}
	fmt.Fprintf(&sb, "\n%s: %s", t.questionLabel, query)

	answer, _ := g.complete(ctx, "route_search", t.routesSystem, sb.String(), lang)
	return answer
}

func writePlace(sb *strings.Builder, p models.PlaceRecord, l placeLabels) {
	field := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fmt.Fprintf(sb, "   %s: %s\n", label, value)
		}
	}
	fmt.Fprintf(sb, "%s: %s\n", l.name, p.Name)
	field(l.description, p.Description)
	field(l.address, p.Address)
	field(l.region, p.Region)
	field(l.themes, strings.Join(p.Themes, ", "))
	if p.EstimatedCost > 0 {
		field(l.cost, strconv.Itoa(p.EstimatedCost)+l.currency)
	}
	if p.EstimatedDurationMinutes > 0 {
		field(l.duration, strconv.Itoa(p.EstimatedDurationMinutes)+l.minutes)
	}
	field(l.contact, p.Contact)
}

// complete calls the model; on failure it returns the localized generic
// error message and false.
func (g *Generator) complete(ctx context.Context, mode, system, user, lang string) (string, bool) {
	answer, err := g.completer.Complete(ctx, system, user)
	if err == nil {
		answer = strings.TrimSpace(answer)
	}
	if err != nil || answer == "" {
		fields := map[string]interface{}{"mode": mode, "language": lang}
		if err != nil {
			fields["error"] = err
		}
		g.logger.Warn("generation failed, answering with generic message", fields)
		return i18n.Message(lang, i18n.GenericError), false
	}
	return answer, true
}
