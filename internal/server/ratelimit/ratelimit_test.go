package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(cfg *Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.Now
	return l, clock
}

func TestTokenBucket_BurstAndRefill(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	b := newTokenBucket(3, 1.0, start)

	for i := 0; i < 3; i++ {
		ok, _, _ := b.take(start)
		require.True(t, ok, "request %d", i+1)
	}
	ok, remaining, reset := b.take(start)
	assert.False(t, ok)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, start.Add(3*time.Second), reset)

	ok, _, _ = b.take(start.Add(1100 * time.Millisecond))
	assert.True(t, ok)
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("10.0.0.1", "/areas", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := l.Allow("10.0.0.1", "/areas", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 6*time.Second, info.RetryAfter)

	clock.Advance(7 * time.Second)
	allowed, _ = l.Allow("10.0.0.1", "/areas", "GET")
	assert.True(t, allowed)

	// Other clients have their own bucket.
	allowed, _ = l.Allow("10.0.0.2", "/areas", "GET")
	assert.True(t, allowed)
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
		Blacklist:     map[string]bool{"10.6.6.6": true},
	})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("127.0.0.1", "/ofertas", "GET")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("10.6.6.6", "/ofertas", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := l.Allow("10.0.0.1", "/login", "POST")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_ParameterisedRouteSharesBucket(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Pattern: "/experiencia/{id}", Method: "PUT", Limit: 2, Window: time.Hour},
		},
	})
	defer l.Stop()

	allowed, _ := l.Allow("10.0.0.1", "/experiencia/1", "PUT")
	assert.True(t, allowed)
	allowed, _ = l.Allow("10.0.0.1", "/experiencia/2", "PUT")
	assert.True(t, allowed)
	allowed, _ = l.Allow("10.0.0.1", "/experiencia/3", "PUT")
	assert.False(t, allowed)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	cfg := &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, EndpointConfigs: DefaultEndpointConfigs()}
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 50, DefaultWindow: time.Hour})
	defer l.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("10.0.0.1", "/criterios", "GET"); ok {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowedCount)
}

func TestLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 5, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i), "/areas", "GET")
	}
	clock.Advance(2 * time.Hour)
	l.Allow("10.0.0.9", "/areas", "GET")

	l.cleanupBuckets(time.Hour)
	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Len(t, l.buckets, 1)
}

func TestNewLimiter_NilConfigAndDoubleStop(t *testing.T) {
	l := NewLimiter(nil)
	allowed, info := l.Allow("10.0.0.1", "/areas", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 600, info.Limit)
	l.Stop()
	l.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path, method, want string
	}{
		{"/login", "POST", "/login"},
		{"/login", "GET", ""},
		{"/experiencia/17", "PUT", "/experiencia/{id}"},
		{"/experiencia/", "PUT", ""},
		{"/catalogo/titulos", "POST", "/catalogo/"},
		{"/titulos/Tercer nivel/Ingeniería", "GET", "/titulos/"},
		{"/ofertas", "GET", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Pattern)
		})
	}

	wildcard := []EndpointConfig{{Pattern: "/exp", Method: "*", Limit: 1, Window: time.Minute}}
	assert.NotNil(t, MatchEndpoint("/exp", "DELETE", wildcard))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "bogus")
	t.Setenv("RATE_LIMIT_WHITELIST", " 127.0.0.1, ,10.0.0.1")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, time.Minute, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"127.0.0.1": true, "10.0.0.1": true}, cfg.Whitelist)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
