package service

import (
	"sync"
	"time"
)

const statusCacheTTL = 10 * time.Second

// statusCache 辯論狀態的短期快取，加入、發言、結束時會被清除
type statusCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uint]statusEntry
	now     func() time.Time
}

type statusEntry struct {
	value   *DebateStatus
	expires time.Time
}

func newStatusCache(ttl time.Duration) *statusCache {
	return &statusCache{
		ttl:     ttl,
		entries: make(map[uint]statusEntry),
		now:     time.Now,
	}
}

func (c *statusCache) get(roomID uint) (*DebateStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[roomID]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, roomID)
		return nil, false
	}
	return e.value, true
}

func (c *statusCache) set(roomID uint, value *DebateStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[roomID] = statusEntry{value: value, expires: c.now().Add(c.ttl)}
}

func (c *statusCache) invalidate(roomID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, roomID)
}
