// Package genai talks to an OpenAI compatible completion and embedding API.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "trip-assistant/internal/common/errors"
	commonhttp "trip-assistant/internal/common/http"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/common/metrics"
)

// Completer produces a single text completion for a system prompt and a user message.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Embedder maps text to a fixed length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

var (
	ErrEmptyCompletion = errors.New("EMPTY_COMPLETION")
	ErrEmptyEmbedding  = errors.New("EMPTY_EMBEDDING")
)

type Client struct {
	config *Config
	http   *commonhttp.Client
	logger logger.Logger
}

func NewClient(cfg *Config, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		http:   commonhttp.NewClient(cfg.Timeout, commonhttp.WithRateLimit(cfg.RequestsPerSecond, cfg.Burst)),
		logger: log.With(map[string]interface{}{"component": "genai"}),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *Client) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	started := time.Now()
	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userMessage})

	var out chatResponse
	err := c.post(ctx, "/chat/completions", chatRequest{
		Model:       c.config.ChatModel,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}, &out)
	if err == nil && (len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "") {
		err = apperrors.NewCompletionFailedError(http.StatusOK, ErrEmptyCompletion)
	}
	observe("completion", started, err)
	if err != nil {
		c.logger.Warn("completion failed", map[string]interface{}{
			"error":     err.Error(),
			"elapsedMs": time.Since(started).Milliseconds(),
		})
		return "", err
	}
	return out.Choices[0].Message.Content, nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	started := time.Now()
	var out embeddingResponse
	err := c.post(ctx, "/embeddings", embeddingRequest{Model: c.config.EmbeddingModel, Input: text}, &out)
	if err == nil && (len(out.Data) == 0 || len(out.Data[0].Embedding) == 0) {
		err = ErrEmptyEmbedding
	}
	observe("embedding", started, err)
	if err != nil {
		if apperrors.CodeOf(err) != apperrors.ErrCodeCompletionTimeout {
			err = apperrors.NewEmbeddingFailedError(err)
		}
		return nil, err
	}
	return out.Data[0].Embedding, nil
}

// post sends body as JSON and decodes a 200 answer into out. Transport
// errors, 429 and 5xx are retried with exponential backoff; other statuses fail fast.
func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	url := strings.TrimRight(c.config.BaseURL, "/") + path

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return apperrors.NewCompletionTimeoutError(ctx.Err())
			}
		}

		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return apperrors.NewCompletionFailedError(0, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, err := c.http.DoWithContext(ctx, req)
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			if resp != nil {
				resp.Body.Close()
			}
			return apperrors.NewCompletionTimeoutError(ctx.Err())
		}
		if err != nil {
			lastErr = apperrors.NewCompletionFailedError(0, err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			lastErr = apperrors.NewCompletionFailedError(resp.StatusCode,
				fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
			if !apperrors.IsRetryable(lastErr) {
				return lastErr
			}
			continue
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return apperrors.NewMalformedOutputError(fmt.Sprintf("decode %s response: %v", path, err))
		}
		return nil
	}
	return lastErr
}

func observe(kind string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.GenAIRequestDuration.WithLabelValues(kind, outcome).Observe(time.Since(started).Seconds())
}
