// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package cache

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("roller-1", "view")

	value, ok := c.Get("roller-1")
	if !ok {
		t.Fatal("expected a hit")
	}
	if value.(string) != "view" {
		t.Errorf("expected %q, got %v", "view", value)
	}
}

func TestCacheMiss(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected a miss")
	}

	stats := c.Stats()
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := New(10 * time.Millisecond)
	defer c.Stop()

	c.Set("roller-1", "view")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("roller-1"); ok {
		t.Fatal("expected the entry to expire")
	}

	stats := c.Stats()
	if stats.Evictions != 1 {
		t.Errorf("expected 1 eviction, got %d", stats.Evictions)
	}
}

func TestCacheDelete(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("roller-1", "view")
	c.Delete("roller-1")

	if _, ok := c.Get("roller-1"); ok {
		t.Fatal("expected the entry to be deleted")
	}
}

func TestCacheClear(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("roller-1", "a")
	c.Set("roller-2", "b")
	c.Clear()

	if _, ok := c.Get("roller-1"); ok {
		t.Fatal("expected the cache to be empty")
	}
	if _, ok := c.Get("roller-2"); ok {
		t.Fatal("expected the cache to be empty")
	}
}
