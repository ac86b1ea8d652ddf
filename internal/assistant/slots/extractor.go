// Package slots extracts trip parameters from free text. ExtractAll uses the
// model with a rule based fallback; the single-slot functions are rule based only.
package slots

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"trip-assistant/internal/common/genai"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/common/validation"
	"trip-assistant/internal/models"
)

const extractionSchema = `{
  "type": "object",
  "properties": {
    "theme":           {"type": ["string", "null"]},
    "region":          {"type": ["string", "null"]},
    "dayCount":        {"type": ["integer", "null"]},
    "budget":          {"type": ["integer", "null"], "minimum": 0},
    "preferences":     {"type": ["string", "null"]},
    "durationMinutes": {"type": ["integer", "null"], "minimum": 0}
  },
  "additionalProperties": true
}`

// extracted is the model's answer before normalization.
type extracted struct {
	Theme           *string `json:"theme"`
	Region          *string `json:"region"`
	DayCount        *int    `json:"dayCount"`
	Budget          *int    `json:"budget"`
	Preferences     *string `json:"preferences"`
	DurationMinutes *int    `json:"durationMinutes"`
}

type Extractor struct {
	config    *Config
	completer genai.Completer
	schema    *validation.Schema
	logger    logger.Logger
}

func New(cfg *Config, completer genai.Completer, log logger.Logger) *Extractor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Extractor{
		config:    cfg,
		completer: completer,
		schema:    validation.MustCompile(extractionSchema),
		logger:    log.With(map[string]interface{}{"component": "slots"}),
	}
}

// ExtractAll extracts every slot from query and merges the findings into
// existing. Known values are only replaced by newly extracted ones.
func (e *Extractor) ExtractAll(ctx context.Context, query string, existing models.ConversationContext) models.ConversationContext {
	extraction := genai.ExtractOrFallback(ctx, e.completer, e.logger, genai.ExtractRequest[models.ConversationContext]{
		Operation:    "slots",
		SystemPrompt: e.systemPrompt(),
		UserMessage:  e.userMessage(query, existing),
		Schema:       e.schema,
		Fallback:     func() models.ConversationContext { return extractByRules(query) },
		Decode:       e.decode,
	})
	merged := models.Merge(existing, extraction.Value)
	e.logger.Debug("slots extracted", map[string]interface{}{
		"fromModel": extraction.FromModel,
		"complete":  merged.HasRouteSlots(),
	})
	return merged
}

// decode normalizes the model output: unknown themes, out of range day
// counts and blank strings are dropped rather than trusted.
func (e *Extractor) decode(body []byte) (models.ConversationContext, error) {
	var raw extracted
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.ConversationContext{}, err
	}
	var out models.ConversationContext
	if raw.Theme != nil {
		if t, ok := models.ParseTheme(*raw.Theme); ok {
			out.Theme = models.Ptr(t)
		}
	}
	if s := trimmed(raw.Region); s != "" {
		out.Region = models.Ptr(s)
	}
	if raw.DayCount != nil && models.ValidDayCount(*raw.DayCount) {
		out.DayCount = models.Ptr(*raw.DayCount)
	}
	if raw.Budget != nil && *raw.Budget > 0 {
		out.Budget = models.Ptr(*raw.Budget)
	}
	if s := trimmed(raw.Preferences); s != "" {
		if r := []rune(s); len(r) > e.config.MaxPreferencesLength {
			s = string(r[:e.config.MaxPreferencesLength])
		}
		out.Preferences = models.Ptr(s)
	}
	if raw.DurationMinutes != nil && *raw.DurationMinutes > 0 {
		out.DurationMinutes = models.Ptr(*raw.DurationMinutes)
	}
	return out, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func (e *Extractor) systemPrompt() string {
	themes := make([]string, 0, 6)
	for _, t := range models.AllThemes() {
		themes = append(themes, string(t))
	}
	return fmt.Sprintf("You extract trip parameters from messages sent to a Korean travel assistant. "+
		"Return JSON only with the keys theme, region, dayCount, budget, preferences, durationMinutes. "+
		"theme is one of %s. region is a place name in Korean. dayCount is the number of travel days (%d-%d). "+
		"budget is in Korean won. Use null for anything the message does not state. "+
		"The current state is given so you only report values that the new message adds or changes.",
		strings.Join(themes, ", "), models.MinDayCount, models.MaxDayCount)
}

func (e *Extractor) userMessage(query string, existing models.ConversationContext) string {
	state, _ := json.Marshal(extracted{
		Theme:           (*string)(existing.Theme),
		Region:          existing.Region,
		DayCount:        existing.DayCount,
		Budget:          existing.Budget,
		Preferences:     existing.Preferences,
		DurationMinutes: existing.DurationMinutes,
	})
	return fmt.Sprintf("current state: %s\nmessage: %s", state, query)
}
