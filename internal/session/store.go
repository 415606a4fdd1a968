// Package session caches gateway session tokens so operations that need one
// can reuse the last token issued to the merchant site.
package session

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long a token is reused when no TTL is configured.
const DefaultTTL = 15 * time.Minute

// MemoryStore keeps tokens in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	tokens map[string]memoryEntry
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// NewMemoryStore returns an empty store; ttl <= 0 means DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, tokens: make(map[string]memoryEntry)}
}

// WithClock replaces time.Now, for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// Get returns the live token for key.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.tokens[key]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.tokens, key)
		return "", false, nil
	}
	return e.token, true, nil
}

// Set stores token for key, replacing any previous one.
func (s *MemoryStore) Set(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = memoryEntry{token: token, expiresAt: s.now().Add(s.ttl)}
	return nil
}
