// Package handoff stores payloads between the two legs of a share flow: a
// client posts data, receives a token, and a second client redeems the
// token exactly once.
package handoff

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/alquipy/notifier/internal/domain"
)

// TTL is how long a stored payload stays redeemable.
const TTL = time.Hour

var _ domain.HandoffStore = (*MemoryStore)(nil)

// MemoryStore keeps payloads in process memory. Suitable for a single
// instance; use the Redis store when running more than one.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

type entry struct {
	payload   []byte
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, payload []byte) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()
	s.entries[token] = entry{
		payload:   payload,
		expiresAt: s.now().Add(TTL),
	}
	return token, nil
}

func (s *MemoryStore) Take(_ context.Context, token string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return nil, domain.ErrHandoffNotFound
	}
	delete(s.entries, token)

	if s.now().After(e.expiresAt) {
		return nil, domain.ErrHandoffNotFound
	}
	return e.payload, nil
}

// evictExpired runs under the lock on every Put, keeping the map from
// accumulating abandoned entries.
func (s *MemoryStore) evictExpired() {
	now := s.now()
	for token, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, token)
		}
	}
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
