package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// expiringMap is a mutex-guarded map whose entries disappear after a TTL.
// A background goroutine sweeps expired entries until Close.
type expiringMap[V any] struct {
	mu        sync.RWMutex
	entries   map[string]entry[V]
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newExpiringMap[V any](sweepEvery time.Duration) *expiringMap[V] {
	m := &expiringMap[V]{
		entries:  make(map[string]entry[V]),
		stopChan: make(chan struct{}),
	}
	if sweepEvery <= 0 {
		sweepEvery = 5 * time.Minute
	}
	m.wg.Add(1)
	go m.sweepLoop(sweepEvery)
	return m
}

func (m *expiringMap[V]) get(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || e.expired(time.Now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// set stores value for ttl. A ttl of zero never expires.
func (m *expiringMap[V]) set(key string, value V, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry[V]{value: value, expiresAt: expiry(ttl)}
}

// setIfAbsent stores value unless a live entry exists
func (m *expiringMap[V]) setIfAbsent(key string, value V, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok && !e.expired(time.Now()) {
		return false
	}
	m.entries[key] = entry[V]{value: value, expiresAt: expiry(ttl)}
	return true
}

func (m *expiringMap[V]) delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *expiringMap[V]) size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *expiringMap[V]) close() {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()
	})
}

func (m *expiringMap[V]) sweepLoop(every time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *expiringMap[V]) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
		}
	}
}

func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}
