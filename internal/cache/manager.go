package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Manager layers named strategies, invalidation triggers, and warming on top
// of the raw cache. Strategies map a key prefix to its TTL: dashboards can be
// stale for minutes, lists only for seconds.
type Manager struct {
	cache      *Cache
	defaultTTL time.Duration

	mu      sync.RWMutex
	ttls    map[string]time.Duration
	warmers []Warmer
}

// Warmer pre-populates one entry; registered loaders run on Warm.
type Warmer struct {
	Prefix string
	Parts  []string
	Load   Loader
}

func NewManager(c *Cache, defaultTTL time.Duration) *Manager {
	return &Manager{
		cache:      c,
		defaultTTL: defaultTTL,
		ttls:       make(map[string]time.Duration),
	}
}

func (m *Manager) SetStrategy(prefix string, ttl time.Duration) {
	m.mu.Lock()
	m.ttls[prefix] = ttl
	m.mu.Unlock()
}

func (m *Manager) TTLFor(prefix string) time.Duration {
	m.mu.RLock()
	ttl, ok := m.ttls[prefix]
	m.mu.RUnlock()
	if !ok || ttl <= 0 {
		return m.defaultTTL
	}
	return ttl
}

// GetOrLoad is the read-through entrypoint handlers use: key and TTL both
// derive from the prefix.
func (m *Manager) GetOrLoad(ctx context.Context, prefix string, parts []string, load Loader) (any, bool, error) {
	return m.cache.GetOrLoad(ctx, Key(prefix, parts...), m.TTLFor(prefix), load)
}

// Invalidate drops all entries under the given prefixes.
func (m *Manager) Invalidate(prefixes ...string) int {
	n := 0
	for _, p := range prefixes {
		n += m.cache.InvalidatePrefix(p)
	}
	return n
}

// OnWrite is the invalidation trigger fired after an entity write.
// Applications and interviews feed every aggregate; candidates and jobs only
// touch lists and the dashboard counts.
func (m *Manager) OnWrite(entity string) int {
	switch entity {
	case "application", "interview":
		return m.Invalidate("dashboard", "trend", "list")
	case "candidate", "job":
		return m.Invalidate("dashboard", "list")
	}
	return 0
}

func (m *Manager) Flush() {
	m.cache.Flush()
}

func (m *Manager) Stats() Stats {
	return m.cache.Stats()
}

func (m *Manager) RegisterWarmer(w Warmer) {
	m.mu.Lock()
	m.warmers = append(m.warmers, w)
	m.mu.Unlock()
}

// Warm runs every registered loader and overwrites its entry, so the next
// reader hits fresh data instead of paying for the query. Loaders run
// concurrently, a few at a time; the first error wins but the rest still
// finish.
func (m *Manager) Warm(ctx context.Context) (int, error) {
	m.mu.RLock()
	warmers := make([]Warmer, len(m.warmers))
	copy(warmers, m.warmers)
	m.mu.RUnlock()

	var g errgroup.Group
	g.SetLimit(4)

	for _, w := range warmers {
		w := w
		g.Go(func() error {
			v, err := w.Load(ctx)
			if err != nil {
				log.Printf("level=warn msg=\"cache warm\" prefix=%s err=%v", w.Prefix, err)
				return err
			}
			m.cache.Set(Key(w.Prefix, w.Parts...), v, m.TTLFor(w.Prefix))
			return nil
		})
	}

	err := g.Wait()
	return len(warmers), err
}
