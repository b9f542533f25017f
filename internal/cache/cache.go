package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CacheItem represents a cached item with expiration
type CacheItem struct {
	Value      interface{}
	Expiration int64
}

// IsExpired checks if the item has expired
func (item CacheItem) IsExpired() bool {
	if item.Expiration == 0 {
		return false
	}
	return time.Now().UnixNano() > item.Expiration
}

// Cache is a simple in-memory cache with TTL support
type Cache struct {
	items      map[string]CacheItem
	mu         sync.RWMutex
	defaultTTL time.Duration
	maxSize    int
	group      singleflight.Group
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewCache creates a new cache instance
func NewCache(defaultTTL time.Duration, maxSize int) *Cache {
	c := &Cache{
		items:      make(map[string]CacheItem),
		defaultTTL: defaultTTL,
		maxSize:    maxSize,
		stop:       make(chan struct{}),
	}

	go c.cleanup(time.Minute)

	return c
}

// Get retrieves an item from the cache
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	item, found := c.items[key]
	c.mu.RUnlock()

	if !found {
		return nil, false
	}

	if item.IsExpired() {
		c.Delete(key)
		return nil, false
	}

	return item.Value, true
}

// Set stores an item in the cache with default TTL
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores an item with custom TTL
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	var expiration int64
	if ttl > 0 {
		expiration = time.Now().Add(ttl).UnixNano()
	}

	c.mu.Lock()
	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		c.evictOne()
	}
	c.items[key] = CacheItem{
		Value:      value,
		Expiration: expiration,
	}
	c.mu.Unlock()
}

// Delete removes an item from the cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	c.group.Forget(key)
}

// GetOrLoad gets from cache or loads using the provided function.
// Concurrent loads of the same key share one call. The bool reports whether
// the value came from the cache or another caller's load.
func (c *Cache) GetOrLoad(key string, loader func() (interface{}, error)) (interface{}, bool, error) {
	if val, found := c.Get(key); found {
		return val, true, nil
	}

	loaded := false
	val, err, shared := c.group.Do(key, func() (interface{}, error) {
		if val, found := c.Get(key); found {
			return val, nil
		}

		result, err := loader()
		if err != nil {
			return nil, err
		}
		loaded = true

		c.Set(key, result)
		return result, nil
	})

	return val, shared || !loaded, err
}

// evictOne removes one expired or soonest-expiring item. Caller holds mu.
func (c *Cache) evictOne() {
	var oldestKey string
	var oldestTime int64 = math.MaxInt64

	for key, item := range c.items {
		if item.IsExpired() {
			delete(c.items, key)
			return
		}
		exp := item.Expiration
		if exp == 0 {
			exp = math.MaxInt64
		}
		if oldestKey == "" || exp < oldestTime {
			oldestTime = exp
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

// cleanup periodically removes expired items until Close is called
func (c *Cache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			for key, item := range c.items {
				if item.IsExpired() {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Size returns the number of items in the cache
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear removes all items from the cache
func (c *Cache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]CacheItem)
	c.mu.Unlock()
}

// Key hashes parts into a fixed-size cache key. Each part is prefixed with
// its length, so no two distinct part lists share an encoding.
func Key(parts ...string) string {
	h := sha256.New()
	var n [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
