// Package ratelimit admits or throttles inbound traffic with fixed-window
// counters kept in the shared ephemeral store, so limits hold across processes.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Akhielesh/secure-chat/internal/config"
	"github.com/Akhielesh/secure-chat/internal/infrastructure/cache/port"
)

const keyPrefix = "ratelimit:"

// Scope names a dimension requests are counted under.
type Scope string

const (
	ScopeConnection Scope = "conn"
	ScopeAddress    Scope = "ip"
	ScopeUser       Scope = "user"
)

// Subject identifies the origin of a request. Empty fields are not counted.
type Subject struct {
	ConnectionID   string
	NetworkAddress string
	UserID         string
}

func (s Subject) scopes() []struct {
	scope Scope
	id    string
} {
	return []struct {
		scope Scope
		id    string
	}{
		{ScopeConnection, s.ConnectionID},
		{ScopeAddress, s.NetworkAddress},
		{ScopeUser, s.UserID},
	}
}

// Limiter enforces max(perSecond*window, burst) requests per window for every scope.
type Limiter struct {
	store  port.Store
	limit  int64
	window time.Duration
	now    func() time.Time
}

func NewLimiter(store port.Store, cfg config.RateLimit) *Limiter {
	window := cfg.Window
	if window <= 0 {
		window = time.Second
	}
	perWindow := int64(float64(cfg.PerSecond) * window.Seconds())
	limit := int64(cfg.Burst)
	if perWindow > limit {
		limit = perWindow
	}
	if limit <= 0 {
		limit = 1
	}
	return &Limiter{store: store, limit: limit, window: window, now: time.Now}
}

// WithClock overrides the time source.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Limit returns the number of requests admitted per window and scope.
func (l *Limiter) Limit() int64 {
	return l.limit
}

// Admit counts the request against every scope of s and reports whether all of
// them are still within their limit. Counters expire on their own.
func (l *Limiter) Admit(ctx context.Context, s Subject) (bool, error) {
	bucket := strconv.FormatInt(l.now().UnixNano()/int64(l.window), 10)
	allowed := true
	for _, sc := range s.scopes() {
		if sc.id == "" {
			continue
		}
		key := keyPrefix + string(sc.scope) + ":" + sc.id + ":" + bucket
		n, err := l.store.Incr(ctx, key, 2*l.window)
		if err != nil {
			return false, fmt.Errorf("ratelimit %s: %w", sc.scope, err)
		}
		if n > l.limit {
			allowed = false
		}
	}
	return allowed, nil
}
