// Package cache is a read-through TTL cache for the analytics endpoints.
// Entries expire per named strategy; concurrent misses for the same key share
// a single loader call.
package cache

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

type Loader func(ctx context.Context) (any, error)

type Stats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Entries int     `json:"entries"`
	HitRate float64 `json:"hitRate"`
}

type Cache struct {
	c      *gocache.Cache
	group  singleflight.Group
	hits   atomic.Uint64
	misses atomic.Uint64
}

func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.c.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

func (c *Cache) Set(key string, v any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.c.Set(key, v, ttl)
}

func (c *Cache) Delete(key string) {
	c.c.Delete(key)
}

// GetOrLoad returns the cached value for key, or runs load and caches the
// result. The bool reports a hit. Misses for the same key are collapsed into
// one loader call via singleflight; a failed load caches nothing.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load Loader) (any, bool, error) {
	if v, ok := c.c.Get(key); ok {
		c.hits.Add(1)
		return v, true, nil
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent flight may have filled it while we queued.
		if v, ok := c.c.Get(key); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v, ttl)
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, false, nil
}

// InvalidatePrefix drops every entry under "prefix:..." and returns how many
// went.
func (c *Cache) InvalidatePrefix(prefix string) int {
	n := 0
	for k := range c.c.Items() {
		if k == prefix || strings.HasPrefix(k, prefix+":") {
			c.c.Delete(k)
			n++
		}
	}
	return n
}

func (c *Cache) Flush() {
	c.c.Flush()
}

func (c *Cache) Stats() Stats {
	s := Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.c.ItemCount(),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}
