package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrLoadCachesResult(t *testing.T) {
	c := New(time.Minute, time.Minute)

	calls := 0
	load := func(ctx context.Context) (any, error) {
		calls++
		return 42, nil
	}

	v, hit, err := c.GetOrLoad(context.Background(), "k", time.Minute, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 42, v)

	v, hit, err = c.GetOrLoad(context.Background(), "k", time.Minute, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestGetOrLoadFailedLoadCachesNothing(t *testing.T) {
	c := New(time.Minute, time.Minute)

	boom := errors.New("db down")
	_, _, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(ctx context.Context) (any, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	// next call retries the loader
	v, hit, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(ctx context.Context) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "ok", v)
}

func TestGetOrLoadCollapsesConcurrentMisses(t *testing.T) {
	c := New(time.Minute, time.Minute)

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := c.GetOrLoad(context.Background(), "hot", time.Minute, load)
			assert.NoError(t, err)
			assert.Equal(t, "v", v)
		}()
	}

	// let the goroutines queue up on the flight, then release
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent misses should share one load")
}

func TestTTLExpiry(t *testing.T) {
	c := New(time.Minute, time.Minute)
	c.Set("k", 1, 20*time.Millisecond)

	_, ok := c.Get("k")
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestInvalidatePrefix(t *testing.T) {
	c := New(time.Minute, time.Minute)
	c.Set(Key("dashboard"), 1, time.Minute)
	c.Set(Key("dashboard", "pipeline"), 2, time.Minute)
	c.Set(Key("trend", "time-to-hire"), 3, time.Minute)

	n := c.InvalidatePrefix("dashboard")
	assert.Equal(t, 2, n)

	_, ok := c.Get(Key("trend", "time-to-hire"))
	assert.True(t, ok)

	// "dash" must not match "dashboard:..." keys
	c.Set(Key("dashboard"), 1, time.Minute)
	assert.Equal(t, 0, c.InvalidatePrefix("dash"))
}

func TestStats(t *testing.T) {
	c := New(time.Minute, time.Minute)
	c.Set("k", 1, time.Minute)

	c.Get("k")      // hit
	c.Get("other")  // miss
	c.Get("absent") // miss

	s := c.Stats()
	assert.Equal(t, uint64(1), s.Hits)
	assert.Equal(t, uint64(2), s.Misses)
	assert.Equal(t, 1, s.Entries)
	assert.InDelta(t, 1.0/3.0, s.HitRate, 0.001)
}

func TestKeyIsStable(t *testing.T) {
	assert.Equal(t, Key("dashboard"), Key("dashboard"))
	assert.Equal(t, "dashboard:all", Key("dashboard"))
	assert.Equal(t, Key("trend", "a", "b"), Key("trend", "a", "b"))
	assert.NotEqual(t, Key("trend", "a", "b"), Key("trend", "ab"))
}
