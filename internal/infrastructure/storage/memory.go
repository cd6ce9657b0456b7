// Package storage provides process-local and SQLite implementations of
// ports.ClientStorage. Redis and MongoDB variants live under db/.
package storage

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory keeps client storage in process memory. Entries expire after ttl when ttl > 0.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.RWMutex
	data map[string]map[string]memoryEntry
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, data: make(map[string]map[string]memoryEntry)}
}

func (m *Memory) Get(_ context.Context, sid, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.data[sid][key]
	if !ok || m.expired(e) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, sid, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	part, ok := m.data[sid]
	if !ok {
		part = make(map[string]memoryEntry)
		m.data[sid] = part
	}
	e := memoryEntry{value: value}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	part[key] = e
	return nil
}

func (m *Memory) Remove(_ context.Context, sid, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[sid], key)
	if len(m.data[sid]) == 0 {
		delete(m.data, sid)
	}
	return nil
}

// PurgeExpired drops entries past their expiry, and sessions left empty,
// reporting how many entries were removed.
func (m *Memory) PurgeExpired(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for sid, part := range m.data {
		for key, e := range part {
			if m.expired(e) {
				delete(part, key)
				n++
			}
		}
		if len(part) == 0 {
			delete(m.data, sid)
		}
	}
	return n, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && m.now().After(e.expiresAt)
}
