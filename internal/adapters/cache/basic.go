package cache

import (
	"sync"
	"time"
)

type basicCacheEntry[T any] struct {
	data  T
	valid bool
}

// basicCache never evicts or expires entries
type basicCache[T any] struct {
	cache     map[string]basicCacheEntry[T]
	cacheLock sync.Mutex
}

func (c *basicCache[T]) getOrClaim(key string) hitResult[T] {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	oldValue, ok := c.cache[key]
	if ok {
		return hitResult[T]{
			data:    oldValue.data,
			valid:   oldValue.valid,
			claimed: false,
		}
	}

	c.cache[key] = basicCacheEntry[T]{valid: false}
	return hitResult[T]{
		valid:   false,
		claimed: true,
	}
}

func (c *basicCache[T]) peek(key string) (T, bool) {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	entry, ok := c.cache[key]
	if !ok || !entry.valid {
		var empty T
		return empty, false
	}
	return entry.data, true
}

func (c *basicCache[T]) set(key string, data T) {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	c.cache[key] = basicCacheEntry[T]{data: data, valid: true}
}

func (c *basicCache[T]) delete(key string) {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	delete(c.cache, key)
}

func (c *basicCache[T]) clear() {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	c.cache = make(map[string]basicCacheEntry[T])
}

func (c *basicCache[T]) wait() {
	time.Sleep(50 * time.Millisecond)
}

func NewBasicCache[T any]() *basicCache[T] {
	return &basicCache[T]{
		cache: make(map[string]basicCacheEntry[T]),
	}
}
