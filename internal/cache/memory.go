package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
	tags    []string
}

// Memory is an in-process Cache
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	tagged  map[string]map[string]struct{}
	gen     uint64
	now     func() time.Time
}

// NewMemory creates an empty in-process cache
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		tagged:  make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

// Get implements Cache
func (m *Memory) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && !m.now().Before(entry.expires) {
		m.removeLocked(key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := decode(entry.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set implements Cache
func (m *Memory) Set(_ context.Context, key string, value interface{}, ttl time.Duration, tags ...string) error {
	data, err := encode(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(key, data, ttl, tags)
	return nil
}

// SetIfGeneration implements Cache
func (m *Memory) SetIfGeneration(_ context.Context, gen uint64, key string, value interface{}, ttl time.Duration, tags ...string) (bool, error) {
	data, err := encode(value)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return false, nil
	}
	m.setLocked(key, data, ttl, tags)
	return true, nil
}

// Generation implements Cache
func (m *Memory) Generation(context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen, nil
}

// Invalidate implements Cache
func (m *Memory) Invalidate(_ context.Context, tags ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	for _, tag := range tags {
		for key := range m.tagged[tag] {
			m.removeLocked(key)
		}
		delete(m.tagged, tag)
	}
	return nil
}

// Len returns the number of live entries
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) setLocked(key string, data []byte, ttl time.Duration, tags []string) {
	m.removeLocked(key)
	m.entries[key] = memoryEntry{data: data, expires: m.now().Add(ttl), tags: tags}
	for _, tag := range tags {
		keys, ok := m.tagged[tag]
		if !ok {
			keys = make(map[string]struct{})
			m.tagged[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

func (m *Memory) removeLocked(key string) {
	entry, ok := m.entries[key]
	if !ok {
		return
	}
	delete(m.entries, key)
	for _, tag := range entry.tags {
		if keys, ok := m.tagged[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(m.tagged, tag)
			}
		}
	}
}
