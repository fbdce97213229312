package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	start time.Time
	used  int
}

// Memory keeps windows in a map. Expired windows are swept whenever a new
// window of the limiter's own duration begins.
type Memory struct {
	limit  int
	period time.Duration
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

// NewMemory allows limit requests per key every period.
func NewMemory(limit int, period time.Duration) *Memory {
	return &Memory{
		limit:   limit,
		period:  period,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

func (m *Memory) Take(_ context.Context, key string) (Quota, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= m.period {
		for k, w := range m.windows {
			if now.Sub(w.start) >= m.period {
				delete(m.windows, k)
			}
		}
		m.lastSweep = now
	}

	w, ok := m.windows[key]
	if !ok || now.Sub(w.start) >= m.period {
		w = &window{start: now}
		m.windows[key] = w
	}
	w.used++
	return quota(m.limit, w.used, w.start.Add(m.period).Sub(now)), nil
}

// Len reports the number of live windows.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}
