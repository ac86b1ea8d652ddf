// Package intent classifies a free-text request into one of the registry's intents.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"trip-assistant/internal/common/genai"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/common/metrics"
	"trip-assistant/internal/common/validation"
	"trip-assistant/internal/models"
	"trip-assistant/pkg/registry"
)

const (
	defaultThreshold = 0.6
	// keywordConfidence is reported for every keyword classification.
	keywordConfidence = 0.5
)

type Classifier struct {
	config    *Config
	completer genai.Completer
	registry  *registry.IntentRegistry
	schema    *validation.Schema
	prompt    string
	logger    logger.Logger
}

func New(cfg *Config, completer genai.Completer, reg *registry.IntentRegistry, log logger.Logger) (*Classifier, error) {
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = defaultThreshold
	}
	schema, err := resultSchema(reg)
	if err != nil {
		return nil, err
	}
	return &Classifier{
		config:    cfg,
		completer: completer,
		registry:  reg,
		schema:    schema,
		prompt:    systemPrompt(reg),
		logger:    log.With(map[string]interface{}{"component": "intent"}),
	}, nil
}

func resultSchema(reg *registry.IntentRegistry) (*validation.Schema, error) {
	doc := map[string]interface{}{
		"type":     "object",
		"required": []string{"intent", "confidence"},
		"properties": map[string]interface{}{
			"intent":     map[string]interface{}{"type": "string", "enum": reg.IDs()},
			"confidence": map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
			"reasoning":  map[string]interface{}{"type": "string"},
		},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return validation.Compile(string(raw))
}

func systemPrompt(reg *registry.IntentRegistry) string {
	var sb strings.Builder
	sb.WriteString("You classify requests sent to a Korean travel assistant. ")
	sb.WriteString("Pick exactly one intent from this list:\n")
	for _, def := range reg.Intents {
		fmt.Fprintf(&sb, "\n%s: %s\n", def.ID, def.Description)
		for _, ex := range def.Examples {
			fmt.Fprintf(&sb, "  example: %s\n", ex)
		}
	}
	sb.WriteString("\nReply with JSON only: ")
	sb.WriteString(`{"intent": "<ID>", "confidence": <0..1>, "reasoning": "<one sentence>"}`)
	return sb.String()
}

// Classify asks the model first. Low confidence, malformed output or a
// failed call all fall back to keyword matching.
func (c *Classifier) Classify(ctx context.Context, query, lang string) models.IntentClassificationResult {
	extraction := genai.ExtractOrFallback(ctx, c.completer, c.logger, genai.ExtractRequest[models.IntentClassificationResult]{
		Operation:    "intent",
		SystemPrompt: c.prompt,
		UserMessage:  fmt.Sprintf("language: %s\nrequest: %s", lang, query),
		Schema:       c.schema,
		Accept: func(r models.IntentClassificationResult) bool {
			return r.Intent.Valid() && r.Confidence >= c.config.ConfidenceThreshold
		},
		Fallback: func() models.IntentClassificationResult {
			return c.ClassifyByKeywords(query)
		},
	})

	source := "keyword"
	if extraction.FromModel {
		source = "llm"
	}
	result := extraction.Value
	metrics.IntentsClassified.WithLabelValues(string(result.Intent), source).Inc()
	c.logger.Info("intent classified", map[string]interface{}{
		"intent":     result.Intent,
		"confidence": result.Confidence,
		"source":     source,
	})
	return result
}

// ClassifyByKeywords returns the first intent, in priority order, with a
// keyword contained in query. No keyword match yields the default intent.
func (c *Classifier) ClassifyByKeywords(query string) models.IntentClassificationResult {
	q := strings.ToLower(query)
	for _, def := range c.registry.Intents {
		for _, kw := range def.Keywords {
			if kw != "" && strings.Contains(q, strings.ToLower(kw)) {
				return models.IntentClassificationResult{
					Intent:     models.Intent(def.ID),
					Confidence: keywordConfidence,
					Reasoning:  fmt.Sprintf("keyword %q", kw),
				}
			}
		}
	}
	return models.IntentClassificationResult{
		Intent:     models.Intent(c.registry.DefaultIntent().ID),
		Confidence: keywordConfidence,
		Reasoning:  "no keyword matched",
	}
}
