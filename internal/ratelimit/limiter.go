package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ClientLimiter rate-limits per client IP with a token bucket each.
// Idle entries are pruned so one-off clients don't accumulate forever.
type ClientLimiter struct {
	mu sync.Mutex
	m  map[string]*client
	r  rate.Limit
	b  int

	idleAfter time.Duration
	lastPrune time.Time
}

type client struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewClientLimiter(reqPerSec float64, burst int) *ClientLimiter {
	return &ClientLimiter{
		m:         make(map[string]*client),
		r:         rate.Limit(reqPerSec),
		b:         burst,
		idleAfter: 10 * time.Minute,
		lastPrune: time.Now(),
	}
}

// Allow reports whether the client may proceed now. Disabled limiters
// (rate <= 0) always allow.
func (cl *ClientLimiter) Allow(key string) bool {
	if cl.r <= 0 {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := time.Now()
	if now.Sub(cl.lastPrune) > cl.idleAfter {
		cl.pruneLocked(now)
	}

	c, ok := cl.m[key]
	if !ok {
		c = &client{lim: rate.NewLimiter(cl.r, cl.b)}
		cl.m[key] = c
	}
	c.lastSeen = now
	return c.lim.Allow()
}

func (cl *ClientLimiter) pruneLocked(now time.Time) {
	for k, c := range cl.m {
		if now.Sub(c.lastSeen) > cl.idleAfter {
			delete(cl.m, k)
		}
	}
	cl.lastPrune = now
}

// Size is for tests and the stats endpoint.
func (cl *ClientLimiter) Size() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.m)
}
