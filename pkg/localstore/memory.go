package localstore

import (
	"sort"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps values for the life of the process.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	if x, found := m.cache.Get(key); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.cache.Delete(key)
	return nil
}

func (m *MemoryStore) Keys() ([]string, error) {
	items := m.cache.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Close() error {
	m.cache.Flush()
	return nil
}
