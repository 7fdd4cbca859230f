package gate

import (
	"context"
	"sync"
)

// Memory is a process-local Gate.
type Memory struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMemory returns an empty in-process gate.
func NewMemory() *Memory {
	return &Memory{counts: make(map[string]int)}
}

// TryAcquire implements Gate.
func (m *Memory) TryAcquire(_ context.Context, key string, limit int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.counts[key] >= limit {
		return false, nil
	}
	m.counts[key]++
	return true, nil
}

// Release implements Gate.
func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n := m.counts[key]; n > 1 {
		m.counts[key] = n - 1
	} else {
		delete(m.counts, key)
	}
	return nil
}

// Active implements Gate.
func (m *Memory) Active(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key], nil
}
