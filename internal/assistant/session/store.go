// Package session keeps the latest conversation context per session id.
package session

import (
	"context"
	"time"

	"trip-assistant/internal/common/config"
	"trip-assistant/internal/models"
)

// UpdateFunc computes the new context from the stored one. found is false
// when the session is unknown or expired.
type UpdateFunc func(current models.ConversationContext, found bool) models.ConversationContext

// Store is a per-session key-value store. Update is an atomic
// read-modify-write for one key; racing turns on one session are serialized
// per call, the last write wins.
type Store interface {
	Get(ctx context.Context, sessionID string) (models.ConversationContext, bool, error)
	Put(ctx context.Context, c models.ConversationContext) error
	Remove(ctx context.Context, sessionID string) error
	Update(ctx context.Context, sessionID string, fn UpdateFunc) (models.ConversationContext, error)
}

type Config struct {
	MaxSessions int
	TTL         time.Duration
	KeyPrefix   string
}

func ConfigFrom(cfg config.SessionConfig) *Config {
	return &Config{
		MaxSessions: cfg.MaxSessions,
		TTL:         config.GetDuration(cfg.TTL),
		KeyPrefix:   cfg.KeyPrefix,
	}
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.MaxSessions <= 0 {
		out.MaxSessions = 10000
	}
	if out.TTL <= 0 {
		out.TTL = 30 * time.Minute
	}
	if out.KeyPrefix == "" {
		out.KeyPrefix = "session:"
	}
	return &out
}
