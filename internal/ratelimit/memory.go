package ratelimit

import (
	"context"
	"sync"
	"time"
)

const maxTrackedKeys = 10000

type bucket struct {
	count     int
	windowEnd time.Time
}

// MemoryLimiter is a fixed-window limiter for single-instance deployments
// and tests. Expired buckets are collected lazily when the key cap is hit.
type MemoryLimiter struct {
	mu   sync.Mutex
	now  func() time.Time
	data map[string]*bucket
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{now: time.Now, data: make(map[string]*bucket)}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	if limit <= 0 {
		return Decision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.data[key]
	if ok && now.After(b.windowEnd) {
		delete(m.data, key)
		ok = false
	}
	if !ok {
		if len(m.data) >= maxTrackedKeys {
			m.gc(now)
		}
		b = &bucket{windowEnd: now.Add(window)}
		m.data[key] = b
	}

	b.count++
	remaining := limit - b.count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   b.count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   b.windowEnd,
	}, nil
}

func (m *MemoryLimiter) gc(now time.Time) {
	for key, b := range m.data {
		if now.After(b.windowEnd) {
			delete(m.data, key)
		}
	}
}
