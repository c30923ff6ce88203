// internal/kv/memory.go
package kv

import (
	"bytes"
	"context"
	"strings"
	"sync"
)

// Memory is a mutex-guarded in-memory Store. It backs tests and local
// development runs that have no Redis.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) SetIfUnchanged(_ context.Context, key string, old, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.data[key]
	if !ok {
		if old != nil {
			return ErrModified
		}
	} else if old == nil || !bytes.Equal(cur, old) {
		return ErrModified
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Scan(_ context.Context, prefix string, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if len(keys) >= limit {
			break
		}
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *Memory) MGet(_ context.Context, keys []string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if v, ok := m.data[k]; ok {
			out[i] = append([]byte(nil), v...)
		}
	}
	return out, nil
}
