package forecastcache

import (
	"context"
	"sync"
	"time"

	"github.com/orchardcare/orchard-advisor/internal/domain/forecast"
)

type entry struct {
	payload   forecast.Forecast
	expiresAt time.Time
}

// MemoryStore is an in-process forecast cache for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements forecast.Cache.
func (s *MemoryStore) Get(_ context.Context, key string) (forecast.Forecast, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return forecast.Forecast{}, false, nil
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return forecast.Forecast{}, false, nil
	}
	return e.payload, true, nil
}

// Save implements forecast.Cache. A non-positive ttl never expires.
func (s *MemoryStore) Save(_ context.Context, key string, fc forecast.Forecast, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	fc.Days = append([]forecast.Day(nil), fc.Days...)
	s.entries[key] = entry{payload: fc, expiresAt: exp}
	return nil
}

var _ forecast.Cache = (*MemoryStore)(nil)
