package store

import "sync"

// MemoryBackend keeps state in process memory. Used in tests and when no
// database is configured.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]map[string]string)}
}

func (m *MemoryBackend) Get(learnerID, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[learnerID][key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *MemoryBackend) Set(learnerID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.values[learnerID] == nil {
		m.values[learnerID] = make(map[string]string)
	}
	m.values[learnerID][key] = value
	return nil
}

func (m *MemoryBackend) Delete(learnerID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values[learnerID], key)
	if len(m.values[learnerID]) == 0 {
		delete(m.values, learnerID)
	}
	return nil
}
