package genai

import (
	"context"
	"encoding/json"
	"strings"

	apperrors "trip-assistant/internal/common/errors"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/common/metrics"
	"trip-assistant/internal/common/validation"
)

// Fallback reasons, also used as metric labels.
const (
	ReasonCallFailed = "call_failed"
	ReasonMalformed  = "malformed"
	ReasonRejected   = "rejected"
)

// ExtractRequest describes one structured call to the model.
type ExtractRequest[T any] struct {
	// Operation names the call in logs and metrics, e.g. "intent".
	Operation    string
	SystemPrompt string
	UserMessage  string
	// Schema, if set, must accept the raw JSON before it is decoded.
	Schema *validation.Schema
	// Decode replaces plain json.Unmarshal when the value needs normalizing.
	Decode func([]byte) (T, error)
	// Accept may reject a well formed value, e.g. on low confidence.
	Accept func(T) bool
	// Fallback computes the deterministic answer.
	Fallback func() T
}

// Extraction is the outcome of ExtractOrFallback.
type Extraction[T any] struct {
	Value          T
	FromModel      bool
	FallbackReason string
}

// ExtractOrFallback asks the model for JSON, validates and decodes it, and
// returns the fallback value whenever any step fails. It never returns an error.
func ExtractOrFallback[T any](ctx context.Context, c Completer, log logger.Logger, req ExtractRequest[T]) Extraction[T] {
	fallback := func(reason string, fields map[string]interface{}) Extraction[T] {
		metrics.LLMFallbacks.WithLabelValues(req.Operation, reason).Inc()
		if fields == nil {
			fields = map[string]interface{}{}
		}
		fields["operation"] = req.Operation
		fields["reason"] = reason
		log.Info("using deterministic fallback", fields)
		return Extraction[T]{Value: req.Fallback(), FallbackReason: reason}
	}

	raw, err := c.Complete(ctx, req.SystemPrompt, req.UserMessage)
	if err != nil {
		return fallback(ReasonCallFailed, map[string]interface{}{"error": err.Error()})
	}

	body := ExtractJSON(raw)
	if req.Schema != nil {
		if result := req.Schema.ValidateBytes([]byte(body)); !result.Valid {
			return fallback(ReasonMalformed, map[string]interface{}{"violations": result.GetErrorMessages()})
		}
	}

	decode := req.Decode
	if decode == nil {
		decode = func(b []byte) (T, error) {
			var v T
			err := json.Unmarshal(b, &v)
			return v, err
		}
	}
	value, err := decode([]byte(body))
	if err != nil {
		malformed := apperrors.NewMalformedOutputError(err.Error())
		return fallback(ReasonMalformed, map[string]interface{}{"error": malformed.Error(), "details": malformed.Details})
	}

	if req.Accept != nil && !req.Accept(value) {
		return fallback(ReasonRejected, nil)
	}
	return Extraction[T]{Value: value, FromModel: true}
}

// ExtractJSON strips markdown code fences and any prose around the first
// JSON object in s. If no object is found s is returned trimmed.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			// drop the language tag line
			if !strings.ContainsAny(s[:nl], "{[") {
				s = s[nl+1:]
			}
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
