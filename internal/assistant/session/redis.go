package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "trip-assistant/internal/common/errors"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/models"

	"github.com/redis/go-redis/v9"
)

var errMissingSessionID = errors.New("session id is required")

// maxUpdateAttempts bounds optimistic retries when another writer touches
// the key between WATCH and EXEC.
const maxUpdateAttempts = 5

// RedisStore keeps each context as JSON under KeyPrefix+id with a TTL that
// every write renews.
type RedisStore struct {
	client *redis.Client
	config *Config
	logger logger.Logger
}

func NewRedisStore(client *redis.Client, cfg *Config, log logger.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		config: cfg.withDefaults(),
		logger: log.With(map[string]interface{}{"component": "session", "backend": "redis"}),
	}
}

func (s *RedisStore) key(sessionID string) string {
	return s.config.KeyPrefix + sessionID
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (models.ConversationContext, bool, error) {
	c, found, err := s.read(ctx, s.client, sessionID)
	if err != nil {
		return models.ConversationContext{}, false, apperrors.NewSessionStoreFailedError(sessionID, err)
	}
	return c, found, nil
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) read(ctx context.Context, g getter, sessionID string) (models.ConversationContext, bool, error) {
	val, err := g.Get(ctx, s.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return models.ConversationContext{}, false, nil
	}
	if err != nil {
		return models.ConversationContext{}, false, err
	}
	var c models.ConversationContext
	if err := json.Unmarshal([]byte(val), &c); err != nil {
		// a corrupt entry is treated as absent and overwritten by the next write
		s.logger.Warn("discarding unreadable session", map[string]interface{}{"sessionId": sessionID, "error": err})
		return models.ConversationContext{}, false, nil
	}
	return c, true, nil
}

func (s *RedisStore) Put(ctx context.Context, c models.ConversationContext) error {
	if c.SessionID == "" {
		return apperrors.NewSessionStoreFailedError("", errMissingSessionID)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return apperrors.NewSessionStoreFailedError(c.SessionID, err)
	}
	if err := s.client.Set(ctx, s.key(c.SessionID), data, s.config.TTL).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError(c.SessionID, err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError(sessionID, err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, sessionID string, fn UpdateFunc) (models.ConversationContext, error) {
	if sessionID == "" {
		return models.ConversationContext{}, apperrors.NewSessionStoreFailedError("", errMissingSessionID)
	}
	key := s.key(sessionID)
	var next models.ConversationContext

	txf := func(tx *redis.Tx) error {
		current, found, err := s.read(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		next = fn(current, found)
		next.SessionID = sessionID
		data, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.config.TTL)
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return models.ConversationContext{}, apperrors.NewSessionStoreFailedError(sessionID, err)
		}
		s.logger.Debug("session update conflict, retrying", map[string]interface{}{"sessionId": sessionID, "attempt": attempt})
	}
	return models.ConversationContext{}, apperrors.NewSessionStoreFailedError(sessionID,
		fmt.Errorf("update abandoned after %d conflicting attempts", maxUpdateAttempts))
}
