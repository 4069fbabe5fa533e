package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type entry struct {
	payload []byte
	expires time.Time
}

// Memory is a process-local Cache. Values are stored JSON-encoded so callers
// never share mutable state with the cache.
type Memory struct {
	mu    sync.Mutex
	items map[string]map[string]entry
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		items: make(map[string]map[string]entry),
		now:   time.Now,
	}
}

func (m *Memory) Get(_ context.Context, namespace, key string, dst any) (bool, error) {
	m.mu.Lock()
	e, ok := m.items[namespace][key]
	if ok && !m.now().Before(e.expires) {
		delete(m.items[namespace], key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.payload, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, namespace, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.items[namespace]
	if !ok {
		ns = make(map[string]entry)
		m.items[namespace] = ns
	}
	ns[key] = entry{payload: payload, expires: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Invalidate(_ context.Context, namespace string) error {
	m.mu.Lock()
	delete(m.items, namespace)
	m.mu.Unlock()
	return nil
}
