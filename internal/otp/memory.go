package otp

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps outstanding codes in process memory. Suitable for
// single-node deployments and tests; use RedisStore when running more than
// one replica.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	code      string
	expiresAt time.Time
}

// NewMemoryStore builds a memory-backed store with the given code lifetime.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Put stores code for email, replacing any outstanding entry.
func (s *MemoryStore) Put(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[email] = memoryEntry{code: code, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Consume deletes and acknowledges the entry iff code matches and the entry
// has not expired.
func (s *MemoryStore) Consume(_ context.Context, email, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[email]
	if !ok {
		return false, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, email)
		return false, nil
	}
	if entry.code != code {
		return false, nil
	}
	delete(s.entries, email)
	return true, nil
}
