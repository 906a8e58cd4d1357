// Package cache holds the synchronous local key-value stores that mirror
// planner state on the client.
package cache

import "sync"

// Cache is a synchronous string store. Implementations never return errors
// to callers; a failed write is logged and the read path reports a miss.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// Memory is a process-local Cache.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns an empty Memory cache.
func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Set(key, value string) {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
}
