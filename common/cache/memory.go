package cache

import (
	"encoding/json"
	"sync"
	"time"
)

type memoryItem struct {
	data       []byte
	expiration *time.Time
}

// MemoryCache implements Cache with in-memory storage. Used in tests
// and as a fallback when no cache URL is configured.
type MemoryCache struct {
	items map[string]memoryItem
	mu    sync.RWMutex
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memoryItem)}
}

func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var exp *time.Time
	if ttl > 0 {
		expTime := time.Now().Add(ttl)
		exp = &expTime
	}

	c.items[key] = memoryItem{data: data, expiration: exp}
	return nil
}

func (c *MemoryCache) Get(key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		return ErrKeyNotFound
	}

	if item.expiration != nil && time.Now().After(*item.expiration) {
		delete(c.items, key)
		return ErrKeyExpired
	}

	return json.Unmarshal(item.data, dest)
}

func (c *MemoryCache) Has(key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists {
		return false, nil
	}

	if item.expiration != nil && time.Now().After(*item.expiration) {
		return false, nil
	}

	return true, nil
}

func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

func (c *MemoryCache) Close() error {
	return nil
}
