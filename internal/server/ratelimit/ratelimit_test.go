package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTokenBucket_TakeAndRefill(t *testing.T) {
	clock := newFakeClock()
	bucket := newTokenBucket(10, 1.0, clock.Now())

	for i := 0; i < 10; i++ {
		allowed, remaining, _ := bucket.take(clock.Now())
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 9-i, remaining)
	}
	allowed, _, full := bucket.take(clock.Now())
	assert.False(t, allowed)
	assert.Equal(t, clock.Now().Add(10*time.Second), full)
	assert.Equal(t, time.Second, bucket.nextToken(clock.Now()))

	clock.Advance(time.Second)
	allowed, _, _ = bucket.take(clock.Now())
	assert.True(t, allowed, "one token refilled")
	allowed, _, _ = bucket.take(clock.Now())
	assert.False(t, allowed)

	clock.Advance(time.Hour)
	_, remaining, _ := bucket.take(clock.Now())
	assert.Equal(t, 9, remaining, "refill caps at capacity")
}

func TestLimiter_Allow(t *testing.T) {
	clock := newFakeClock()
	limiter := newLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute}, clock.Now)
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/briefs/abc", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/briefs/abc", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, 6*time.Second, info.RetryAfter)

	// other clients have their own bucket
	allowed, _ = limiter.Allow("10.0.0.2", "/briefs/abc", "GET")
	assert.True(t, allowed)
}

func TestLimiter_WhitelistBlacklistDisabled(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
		Blacklist:     map[string]bool{"192.168.1.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/briefs", "GET")
		require.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}
	allowed, _ := limiter.Allow("192.168.1.1", "/briefs", "GET")
	assert.False(t, allowed)

	disabled := NewLimiter(&Config{Enabled: false})
	defer disabled.Stop()
	for i := 0; i < 50; i++ {
		allowed, _ := disabled.Allow("10.0.0.1", "/briefs", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_GenerationRuleSharedAcrossBriefs(t *testing.T) {
	clock := newFakeClock()
	limiter := newLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	}, clock.Now)
	defer limiter.Stop()

	paths := []string{"/briefs/a/generation", "/briefs/b/generation", "/briefs/c/generation"}
	for _, p := range paths {
		allowed, info := limiter.Allow("127.0.0.1", p, "POST")
		require.True(t, allowed, p)
		assert.Equal(t, 20, info.Limit)
	}
	allowed, _ := limiter.Allow("127.0.0.1", "/briefs/d/generation", "POST")
	assert.False(t, allowed, "burst of 3 spent across briefs")

	// controls use a separate rule
	allowed, info := limiter.Allow("127.0.0.1", "/briefs/a/generation/cancel", "POST")
	assert.True(t, allowed)
	assert.Equal(t, 120, info.Limit)

	// health is never limited
	for i := 0; i < 2000; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	clock := newFakeClock()
	limiter := newLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute}, clock.Now)
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/briefs", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowedCount)
}

func TestLimiter_EvictIdle(t *testing.T) {
	clock := newFakeClock()
	limiter := newLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, IdleTTL: time.Hour}, clock.Now)
	defer limiter.Stop()

	limiter.Allow("10.0.0.1", "/briefs", "GET")
	clock.Advance(30 * time.Minute)
	limiter.Allow("10.0.0.2", "/briefs", "GET")
	clock.Advance(45 * time.Minute)

	assert.Equal(t, 1, limiter.evictIdle())
	assert.Len(t, limiter.buckets, 1)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()
	limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/briefs", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path, method string
		wantPath     string
	}{
		{"/briefs", "POST", "/briefs"},
		{"/briefs/123/generation", "POST", "/briefs/*/generation"},
		{"/briefs/123/generation/pause", "POST", "/briefs/*/generation/*"},
		{"/briefs/123/reset", "POST", "/briefs/"},
		{"/briefs/123/basicInfo", "PATCH", "/briefs/"},
		{"/briefs/123", "DELETE", "/briefs/"},
		{"/health", "GET", "/health"},
		{"/briefs/123", "GET", ""},
		{"/runs", "GET", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantPath == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("BRANDBOT_RATE_LIMIT_ENABLED", "true")
	t.Setenv("BRANDBOT_RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("BRANDBOT_RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("BRANDBOT_RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.True(t, cfg.Whitelist["10.0.0.2"])
	assert.NotEmpty(t, cfg.EndpointConfigs)

	t.Setenv("BRANDBOT_RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
