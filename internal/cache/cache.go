package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a best-effort in-process key/value cache with per-entry TTL.
// Expired entries are never returned but stay in memory until DeleteExpired runs.
//
//go:generate mockgen -source=cache.go -destination=../mocks/cache.go -package=mocks -mock_names=Cache=MockCache
type Cache interface {
	// Get returns a live entry
	Get(key string) (interface{}, bool)

	// Set stores an entry; a zero ttl uses the cache's default
	Set(key string, value interface{}, ttl time.Duration)

	// Delete removes an entry
	Delete(key string)

	// DeleteExpired purges expired entries and returns how many were removed
	DeleteExpired() int

	// ItemCount returns the number of stored entries, expired ones included
	ItemCount() int

	// Flush removes every entry
	Flush()
}

type memoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache creates a cache whose entries expire after defaultTTL.
// The go-cache janitor is disabled; purging is owned by a sweeper.
func NewMemoryCache(defaultTTL time.Duration) Cache {
	return &memoryCache{c: gocache.New(defaultTTL, 0)}
}

func (m *memoryCache) Get(key string) (interface{}, bool) {
	return m.c.Get(key)
}

func (m *memoryCache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(key, value, ttl)
}

func (m *memoryCache) Delete(key string) {
	m.c.Delete(key)
}

func (m *memoryCache) DeleteExpired() int {
	before := m.c.ItemCount()
	m.c.DeleteExpired()
	return before - m.c.ItemCount()
}

func (m *memoryCache) ItemCount() int {
	return m.c.ItemCount()
}

func (m *memoryCache) Flush() {
	m.c.Flush()
}
