package persist

import (
	"context"
	"fmt"
	"sync"

	"tausepro/internal/sentinel"
	id "tausepro/pkg/domain"
)

// Memory keeps documents in process. Used for tests and single-instance BFFs.
type Memory struct {
	mu   sync.RWMutex
	data map[id.SessionID]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[id.SessionID]map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, sessionID id.SessionID, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if doc, ok := m.data[sessionID][key]; ok {
		return append([]byte(nil), doc...), nil
	}
	return nil, fmt.Errorf("%s for session %s: %w", key, sessionID, sentinel.ErrNotFound)
}

func (m *Memory) Save(_ context.Context, sessionID id.SessionID, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs, ok := m.data[sessionID]
	if !ok {
		docs = make(map[string][]byte)
		m.data[sessionID] = docs
	}
	docs[key] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Delete(_ context.Context, sessionID id.SessionID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[sessionID], key)
	if len(m.data[sessionID]) == 0 {
		delete(m.data, sessionID)
	}
	return nil
}
