package session

import (
	"context"
	"hash/fnv"
	"sync"

	apperrors "trip-assistant/internal/common/errors"
	"trip-assistant/internal/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const stripes = 64

// MemoryStore bounds memory with an LRU of MaxSessions entries whose TTL is
// refreshed on every write.
type MemoryStore struct {
	cache *expirable.LRU[string, models.ConversationContext]
	locks [stripes]sync.Mutex
}

func NewMemoryStore(cfg *Config) *MemoryStore {
	cfg = cfg.withDefaults()
	return &MemoryStore{
		cache: expirable.NewLRU[string, models.ConversationContext](cfg.MaxSessions, nil, cfg.TTL),
	}
}

func (s *MemoryStore) lock(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%stripes]
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (models.ConversationContext, bool, error) {
	c, ok := s.cache.Get(sessionID)
	if !ok {
		return models.ConversationContext{}, false, nil
	}
	return c.Clone(), true, nil
}

func (s *MemoryStore) Put(_ context.Context, c models.ConversationContext) error {
	if c.SessionID == "" {
		return apperrors.NewSessionStoreFailedError("", errMissingSessionID)
	}
	mu := s.lock(c.SessionID)
	mu.Lock()
	defer mu.Unlock()
	s.cache.Add(c.SessionID, c.Clone())
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, sessionID string) error {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()
	s.cache.Remove(sessionID)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, sessionID string, fn UpdateFunc) (models.ConversationContext, error) {
	if sessionID == "" {
		return models.ConversationContext{}, apperrors.NewSessionStoreFailedError("", errMissingSessionID)
	}
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	current, found := s.cache.Get(sessionID)
	next := fn(current.Clone(), found)
	next.SessionID = sessionID
	s.cache.Add(sessionID, next.Clone())
	return next, nil
}

// Len reports live sessions, for tests and readiness output.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
