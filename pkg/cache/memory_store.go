package cache

import (
	"container/list"
	"sync"
)

// MemoryStore implements Store in memory with LRU eviction.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	maxEntries int
	counters   counters
}

type memoryEntry struct {
	key     string
	fitness float64
}

// NewMemoryStore creates an in-memory store. maxEntries <= 0 disables
// eviction; searches over large partition spaces should set a bound.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

func (m *MemoryStore) Get(key string) (float64, bool, error) {
	if err := validateKey(key); err != nil {
		return 0, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.entries[key]
	if !ok {
		m.counters.miss()
		return 0, false, nil
	}

	m.counters.hit()
	m.order.MoveToFront(elem)
	return elem.Value.(*memoryEntry).fitness, true, nil
}

func (m *MemoryStore) Put(key string, fitness float64) error {
	if err := validateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.entries[key]; ok {
		elem.Value.(*memoryEntry).fitness = fitness
		m.order.MoveToFront(elem)
		return nil
	}

	m.entries[key] = m.order.PushFront(&memoryEntry{key: key, fitness: fitness})

	if m.maxEntries > 0 && m.order.Len() > m.maxEntries {
		oldest := m.order.Back()
		if oldest != nil {
			m.order.Remove(oldest)
			delete(m.entries, oldest.Value.(*memoryEntry).key)
		}
	}
	return nil
}

func (m *MemoryStore) Stats() Stats {
	m.mu.Lock()
	entries := int64(m.order.Len())
	m.mu.Unlock()

	return Stats{
		Hits:    m.counters.hits.Load(),
		Misses:  m.counters.misses.Load(),
		Entries: entries,
	}
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*list.Element)
	m.order.Init()
	return nil
}
