package genai

import (
	"time"

	"trip-assistant/internal/common/config"
)

type Config struct {
	BaseURL           string
	APIKey            string
	ChatModel         string
	EmbeddingModel    string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
	Burst             int
	Temperature       float64
	MaxTokens         int
}

func ConfigFrom(cfg config.GenAIConfig) *Config {
	return &Config{
		BaseURL:           cfg.BaseURL,
		APIKey:            cfg.APIKey,
		ChatModel:         cfg.ChatModel,
		EmbeddingModel:    cfg.EmbeddingModel,
		Timeout:           config.GetDuration(cfg.Timeout),
		MaxRetries:        cfg.MaxRetries,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Temperature:       cfg.Temperature,
		MaxTokens:         cfg.MaxTokens,
	}
}
