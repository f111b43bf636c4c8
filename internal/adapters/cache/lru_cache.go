// Package cache holds PermissionGroupCache implementations.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUGroupCache is a process-local cache with a size bound and a TTL.
// Only suitable when a single instance serves writes.
type LRUGroupCache struct {
	lru *expirable.LRU[string, domain.PermissionGroup]

	// mu orders fills against invalidations; gens only grows with invalidated ids.
	mu   sync.Mutex
	gens map[string]uint64
}

var _ portsrepo.PermissionGroupCache = (*LRUGroupCache)(nil)

// NewLRUGroupCache creates a cache holding at most size groups for ttl each.
func NewLRUGroupCache(size int, ttl time.Duration) *LRUGroupCache {
	if size <= 0 {
		size = 256
	}
	return &LRUGroupCache{
		lru:  expirable.NewLRU[string, domain.PermissionGroup](size, nil, ttl),
		gens: make(map[string]uint64),
	}
}

func (c *LRUGroupCache) Get(_ context.Context, groupID string) (*domain.PermissionGroup, bool) {
	g, ok := c.lru.Get(groupID)
	if !ok {
		return nil, false
	}
	g = g.Clone()
	return &g, true
}

func (c *LRUGroupCache) Generation(_ context.Context, groupID string) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[groupID], true
}

func (c *LRUGroupCache) Set(_ context.Context, group domain.PermissionGroup, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[group.ID] != gen {
		return false
	}
	c.lru.Add(group.ID, group.Clone())
	return true
}

func (c *LRUGroupCache) Invalidate(_ context.Context, groupID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[groupID]++
	c.lru.Remove(groupID)
}

// Len returns the number of live entries.
func (c *LRUGroupCache) Len() int {
	return c.lru.Len()
}
