package fetch

import (
	"sync"
	"time"
)

// Store is the in-memory response cache. Entries are overwritten on every
// fresh fetch and expire by TTL check on read; there is no sweeper.
type Store struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	enabled bool

	now func() time.Time
}

type cacheEntry struct {
	value     Result
	expiresAt time.Time
}

// NewStore creates a response cache. A disabled store never hits or stores.
func NewStore(enabled bool) *Store {
	return &Store{
		entries: make(map[string]cacheEntry),
		enabled: enabled,
		now:     time.Now,
	}
}

// Get returns the cached value for key if it has not expired.
func (s *Store) Get(key string) (Result, bool) {
	if !s.enabled {
		return Result{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !e.expiresAt.After(s.now()) {
		return Result{}, false
	}
	return e.value, true
}

// Set stores value under key for ttl. Expired entries are left to be
// overwritten or fail the expiry check on read.
func (s *Store) Set(key string, value Result, ttl time.Duration) {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = cacheEntry{value: value, expiresAt: s.now().Add(ttl)}
}

// Len reports the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
