package cache

import (
	"testing"
	"time"
)

func newClockedStore() (*Memory, *time.Time) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	clock := &now
	return NewMemoryWithClock(func() time.Time { return *clock }), clock
}

func TestGetSet(t *testing.T) {
	m, clock := newClockedStore()

	m.Set("a", 1, time.Minute)

	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v; want 1, true", v, ok)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) = true, want false")
	}

	// Overwrites replace both value and deadline.
	m.Set("a", 2, time.Hour)
	*clock = clock.Add(30 * time.Minute)
	if v, ok := m.Get("a"); !ok || v != 2 {
		t.Errorf("Get(a) after overwrite = %v, %v; want 2, true", v, ok)
	}
}

func TestExpiry(t *testing.T) {
	m, clock := newClockedStore()

	m.Set("a", 1, time.Minute)
	*clock = clock.Add(time.Minute + time.Second)

	if _, ok := m.Get("a"); ok {
		t.Error("Get() returned an expired entry")
	}
	// The lazy drop removed it from the map.
	if m.Len() != 0 {
		t.Errorf("Len() = %d after lazy drop, want 0", m.Len())
	}
}

func TestEvict(t *testing.T) {
	m, _ := newClockedStore()

	m.Set("a", 1, time.Minute)
	m.Evict("a")
	if _, ok := m.Get("a"); ok {
		t.Error("Get() returned an evicted entry")
	}
	// Evicting a missing key is a no-op.
	m.Evict("missing")
}

func TestEvictExpired(t *testing.T) {
	m, clock := newClockedStore()

	m.Set("short", 1, time.Minute)
	m.Set("long", 2, time.Hour)
	*clock = clock.Add(10 * time.Minute)

	if dropped := m.EvictExpired(); dropped != 1 {
		t.Errorf("EvictExpired() = %d, want 1", dropped)
	}
	if _, ok := m.Get("long"); !ok {
		t.Error("EvictExpired() dropped a live entry")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestSweep(t *testing.T) {
	m, clock := newClockedStore()
	m.Set("a", 1, time.Minute)
	*clock = clock.Add(2 * time.Minute)

	tick := make(chan time.Time)
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		Sweep(m, tick, stop)
		close(done)
	}()

	tick <- time.Now()
	close(stop)
	<-done

	if m.Len() != 0 {
		t.Errorf("Len() = %d after sweep, want 0", m.Len())
	}
}
