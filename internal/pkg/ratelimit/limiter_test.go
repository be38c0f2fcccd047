package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akhielesh/secure-chat/internal/config"
	cacheAdapter "github.com/Akhielesh/secure-chat/internal/infrastructure/cache/adapter"
)

func newTestLimiter(t *testing.T, cfg config.RateLimit) (*Limiter, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(cacheAdapter.NewRedisStore(client), cfg).WithClock(func() time.Time { return now })
	return l, &now
}

func TestLimiter_EleventhRequestDenied(t *testing.T) {
	l, now := newTestLimiter(t, config.RateLimit{PerSecond: 5, Burst: 10, Window: time.Second})
	ctx := context.Background()
	subject := Subject{ConnectionID: "c1", NetworkAddress: "10.0.0.1", UserID: "u1"}
	assert.Equal(t, int64(10), l.Limit())

	for i := 1; i <= 10; i++ {
		ok, err := l.Admit(ctx, subject)
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
		*now = now.Add(50 * time.Millisecond)
	}
	ok, err := l.Admit(ctx, subject)
	require.NoError(t, err)
	assert.False(t, ok, "11th request within the window")

	*now = now.Add(time.Second)
	ok, err = l.Admit(ctx, subject)
	require.NoError(t, err)
	assert.True(t, ok, "admission resumes after rollover")
}

func TestLimiter_ScopesSurviveReconnect(t *testing.T) {
	l, _ := newTestLimiter(t, config.RateLimit{PerSecond: 1, Burst: 3, Window: time.Second})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Admit(ctx, Subject{ConnectionID: fmt.Sprintf("c%d", i), NetworkAddress: "10.0.0.9", UserID: "u1"})
		require.NoError(t, err)
		assert.True(t, ok)
	}

	// A fresh connection id does not reset the address and user scopes.
	ok, err := l.Admit(ctx, Subject{ConnectionID: "fresh", NetworkAddress: "10.0.0.9", UserID: "u1"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Admit(ctx, Subject{ConnectionID: "other", NetworkAddress: "10.0.0.10", UserID: "u2"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiter_PerSecondAboveBurst(t *testing.T) {
	l, _ := newTestLimiter(t, config.RateLimit{PerSecond: 20, Burst: 5, Window: time.Second})
	assert.Equal(t, int64(20), l.Limit())
}

func TestLimiter_ConcurrentAdmitsNeverExceedLimit(t *testing.T) {
	l, _ := newTestLimiter(t, config.RateLimit{PerSecond: 5, Burst: 10, Window: time.Second})
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.Admit(ctx, Subject{UserID: "busy"})
			if assert.NoError(t, err) && ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}
