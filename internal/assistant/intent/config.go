package intent

import "trip-assistant/internal/common/config"

type Config struct {
	// ConfidenceThreshold is the minimum model confidence accepted without
	// falling back to keywords.
	ConfidenceThreshold float64
}

func ConfigFrom(cfg config.IntentConfig) *Config {
	return &Config{ConfidenceThreshold: cfg.ConfidenceThreshold}
}
