package cache

import (
	"sync"
	"time"
)

// Store is a TTL key-value cache. Eviction is driven by the caller (or a
// timer the caller owns), never by an ambient background interval, so tests
// control time completely.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Evict(key string)
	EvictExpired() int
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Memory is the in-memory Store implementation.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an in-memory store using the wall clock.
func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock creates an in-memory store driven by the given clock.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     now,
	}
}

func (m *Memory) Get(key string) (any, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if m.now().After(e.expiresAt) {
		// Lazily drop the stale entry.
		m.Evict(key)
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(key string, value any, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{
		value:     value,
		expiresAt: m.now().Add(ttl),
	}
}

func (m *Memory) Evict(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// EvictExpired removes every expired entry and returns how many were
// dropped.
func (m *Memory) EvictExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	dropped := 0
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
			dropped++
		}
	}
	return dropped
}

// Len reports the number of entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep runs EvictExpired each time the tick channel fires, until stop is
// closed. The ticker belongs to the caller.
func Sweep(s Store, tick <-chan time.Time, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-tick:
			s.EvictExpired()
		}
	}
}
