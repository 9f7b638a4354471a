// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

// Package cache provides a thread-safe in-memory TTL cache for composed asset
// views. Nothing here survives a process restart; Rolltrace keeps no
// persistent local state.
package cache

import (
	"sync"
	"time"
)

// cleanupInterval is how often expired entries are swept.
const cleanupInterval = 5 * time.Minute

// Entry is a cached item with its expiration.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Stats tracks cache behavior for observability.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// Cache is a thread-safe in-memory cache with a fixed TTL per entry.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	stats   Stats
	done    chan struct{}
}

// New creates a cache with the given TTL and starts the background sweep.
// Call Stop when the cache is no longer needed.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get retrieves a value by key. Expired entries are removed and count as
// misses.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.stats.Evictions++
		c.stats.Misses++
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
	return entry.Data, true
}

// Set stores a value under the key with the cache's TTL.
func (c *Cache) Set(key string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry{
		Data:      data,
		ExpiresAt: time.Now().Add(c.ttl),
	}
}

// Delete removes a key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Stop terminates the background sweep.
func (c *Cache) Stop() {
	close(c.done)
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			c.stats.Evictions++
		}
	}
}
