package cachex

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Cache. Expired entries are invisible to Get and
// reclaimed by Sweep.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memEntry
	closed  bool

	// Now is the clock; tests replace it.
	Now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memEntry),
		Now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, false, ErrClosed
	}
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

// Set stores value until now+ttl. A non-positive ttl deletes the key.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if ttl <= 0 {
		delete(m.entries, key)
		return nil
	}
	m.entries[key] = memEntry{
		value:     append([]byte(nil), value...),
		expiresAt: m.Now().Add(ttl),
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.entries, key)
	return nil
}

// Sweep removes expired entries and reports how many were dropped.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now()
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

// Len counts live and not yet swept entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.entries = nil
	return nil
}
