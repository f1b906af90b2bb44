package users

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultProfileCacheSize = 10000
	defaultProfileCacheTTL  = time.Minute
)

// ProfileCache holds recently resolved ProfileViews for list enrichment.
// A nil *ProfileCache is valid and caches nothing.
type ProfileCache struct {
	lru *expirable.LRU[string, ProfileView]
}

// NewProfileCache creates a bounded cache whose entries expire after ttl.
// Non-positive arguments fall back to the defaults.
func NewProfileCache(size int, ttl time.Duration) *ProfileCache {
	if size <= 0 {
		size = defaultProfileCacheSize
	}
	if ttl <= 0 {
		ttl = defaultProfileCacheTTL
	}
	return &ProfileCache{lru: expirable.NewLRU[string, ProfileView](size, nil, ttl)}
}

func (c *ProfileCache) Get(id string) (ProfileView, bool) {
	if c == nil {
		return ProfileView{}, false
	}
	return c.lru.Get(id)
}

func (c *ProfileCache) Add(view ProfileView) {
	if c == nil {
		return
	}
	c.lru.Add(view.ID, view)
}

// Invalidate drops id so the next lookup goes to the store
func (c *ProfileCache) Invalidate(id string) {
	if c == nil {
		return
	}
	c.lru.Remove(id)
}
