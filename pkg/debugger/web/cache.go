package web

import "sync"

type cacheEntry struct {
	hash uint64
	used bool
}

// cache is a fixed size ring of payload hashes, mirroring the slots
// held by a client. A payload whose hash is still in the ring does
// not need to be sent again.
type cache struct {
	cache   []cacheEntry
	idx     int
	enabled bool
	size    int
	sync.RWMutex
}

func newCache(size int) *cache {
	return &cache{
		cache:   make([]cacheEntry, size),
		size:    size,
		enabled: size > 0,
	}
}

// add stores the hash in the next slot, returning the slot used.
func (c *cache) add(hash uint64) int {
	c.Lock()
	defer c.Unlock()

	slot := c.idx
	c.cache[slot] = cacheEntry{hash: hash, used: true}
	c.idx = (c.idx + 1) % c.size

	return slot
}

func (c *cache) index(hash uint64) int {
	if !c.enabled {
		return -1
	}

	c.RLock()
	defer c.RUnlock()
	for i, e := range c.cache {
		if e.used && e.hash == hash {
			return i
		}
	}

	return -1
}
