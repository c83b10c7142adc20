package cache

type hitResult[T any] struct {
	data    T
	valid   bool
	claimed bool
}

type Cache[T any] interface {
	getOrClaim(key string) hitResult[T]
	peek(key string) (T, bool)
	set(key string, data T)
	delete(key string)
	clear()
	wait()
}

// Get returns the entry for key without claiming it
func Get[T any](cache Cache[T], key string) (T, bool) {
	return cache.peek(key)
}

// Set stores data under key, overwriting any existing entry
func Set[T any](cache Cache[T], key string, data T) {
	cache.set(key, data)
}

func Clear[T any](cache Cache[T]) {
	cache.clear()
}
