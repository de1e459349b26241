package signal

import (
	"sync"
	"time"
)

type cacheEntry struct {
	sig Signal
	exp time.Time
}

// signalCache bounds how often a symbol's signal is recomputed. Entries
// expire after the configured TTL; a zero TTL disables the cache.
type signalCache struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]cacheEntry
}

func newSignalCache(ttl time.Duration) *signalCache {
	return &signalCache{ttl: ttl, m: make(map[string]cacheEntry)}
}

func (c *signalCache) get(symbol string) (Signal, bool) {
	if c.ttl <= 0 {
		return Signal{}, false
	}
	c.mu.RLock()
	e, ok := c.m[symbol]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.exp) {
		return Signal{}, false
	}
	return e.sig, true
}

func (c *signalCache) put(symbol string, sig Signal) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.m[symbol] = cacheEntry{sig: sig, exp: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}
