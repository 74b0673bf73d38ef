package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cache is a simple thread-safe key-value store using sync.Map.
// Used as the in-process fallback when Redis is not configured.
type Cache struct {
	m sync.Map
	// tagIndex maps tag string to a set of keys
	tagIndex sync.Map // map[string]map[interface{}]struct{}
}

var (
	once     sync.Once
	instance *Cache
)

func GetInstance() *Cache {
	once.Do(func() {
		instance = NewCache()
	})
	return instance
}

// NewCache creates a new Cache instance.
func NewCache() *Cache {
	return &Cache{}
}

// cacheItem holds a value and its expiration time.
type cacheItem struct {
	Value     interface{}
	ExpiresAt int64 // Unix nanoseconds; 0 means no expiration
}

// Set stores a value for a key with an optional TTL (in seconds) and
// optional tags. If ttl is 0, the value does not expire.
func (c *Cache) Set(key, value interface{}, ttl int64, tags []string) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(time.Duration(ttl) * time.Second).UnixNano()
	}
	c.m.Store(key, cacheItem{Value: value, ExpiresAt: expiresAt})
	if len(tags) > 0 {
		c.tagKey(key, tags)
	}
}

// Get retrieves a value for a key. Returns (value, true) if found and
// not expired, (nil, false) otherwise.
func (c *Cache) Get(key interface{}) (interface{}, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return nil, false
	}
	item, isItem := v.(cacheItem)
	if !isItem {
		return v, true
	}
	if item.ExpiresAt > 0 && time.Now().UnixNano() > item.ExpiresAt {
		c.m.Delete(key)
		return nil, false
	}
	return item.Value, true
}

// Delete removes a key from the cache.
func (c *Cache) Delete(key interface{}) {
	c.m.Delete(key)
}

func makeCompositeKey(keys ...interface{}) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%v", k)
	}
	return strings.Join(parts, "|")
}

// SetN stores a value for a composite key.
func (c *Cache) SetN(keys []interface{}, value interface{}, ttl int64, tags []string) {
	c.Set(makeCompositeKey(keys...), value, ttl, tags)
}

// GetN retrieves a value for a composite key.
func (c *Cache) GetN(keys ...interface{}) (interface{}, bool) {
	return c.Get(makeCompositeKey(keys...))
}

func (c *Cache) DeleteN(keys ...interface{}) {
	c.Delete(makeCompositeKey(keys...))
}

// tagKey assigns one or more tags to a cache key.
func (c *Cache) tagKey(key interface{}, tags []string) {
	for _, tag := range tags {
		set, _ := c.tagIndex.LoadOrStore(tag, &sync.Map{})
		set.(*sync.Map).Store(key, struct{}{})
	}
}

// DeleteByTag removes all keys assigned to a tag.
func (c *Cache) DeleteByTag(tag string) {
	set, ok := c.tagIndex.Load(tag)
	if !ok {
		return
	}
	set.(*sync.Map).Range(func(key, _ interface{}) bool {
		c.m.Delete(key)
		return true
	})
	c.tagIndex.Delete(tag)
}
