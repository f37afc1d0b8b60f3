package session

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMaxSessions bounds the memory store. The least recently used
// session is evicted once the limit is reached.
const DefaultMaxSessions = 10000

// MemoryStore keeps sessions in process. Sessions do not survive a restart
// and are not shared between replicas.
type MemoryStore struct {
	cache *expirable.LRU[string, int64]
}

// NewMemoryStore returns a store whose entries expire ttl after their last
// use. Non-positive arguments fall back to the defaults.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{cache: expirable.NewLRU[string, int64](size, nil, ttl)}
}

func (s *MemoryStore) Create(_ context.Context, userID int64) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	s.cache.Add(token, userID)
	return token, nil
}

// Resolve re-adds the entry on a hit, which restarts its expiry.
func (s *MemoryStore) Resolve(_ context.Context, token string) (int64, bool, error) {
	if token == "" {
		return 0, false, nil
	}
	userID, ok := s.cache.Get(token)
	if !ok {
		return 0, false, nil
	}
	s.cache.Add(token, userID)
	return userID, true, nil
}

func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.cache.Remove(token)
	return nil
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
