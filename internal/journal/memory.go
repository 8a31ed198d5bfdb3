package journal

import (
	"context"
	"sync"
	"time"
)

// Memory keeps entries in process memory.
type Memory struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// NewMemory returns an empty in-memory journal.
func NewMemory() *Memory { return &Memory{now: time.Now} }

// Record appends e.
func (m *Memory) Record(ctx context.Context, e Entry) (Entry, error) {
	e = prepare(ctx, e, m.now)
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
	return e, nil
}

// List returns entries matching f.
func (m *Memory) List(_ context.Context, f Filter) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return f.apply(m.entries), nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
