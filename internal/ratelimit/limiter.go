// Package ratelimit provides an in-process token bucket limiter keyed by
// actor and action. Buckets are created lazily and refilled on access, so
// no background goroutine is needed.
package ratelimit

import (
	"strings"
	"sync"
	"time"

	"github.com/hemoconnect/hemoconnect/internal/metrics"
)

// Rule is the budget for one action: MaxRequests per Window.
type Rule struct {
	MaxRequests int
	Window      time.Duration
}

// Decision is the outcome of a single Check call. Remaining reports the
// tokens left after this call; zero when denied.
type Decision struct {
	Allowed   bool
	Remaining int
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// Limiter tracks token buckets per (actor, action) pair. The zero value is
// not usable; construct with New.
type Limiter struct {
	mu      sync.Mutex
	rules   map[string]Rule
	buckets map[string]*bucket

	now         func() time.Time
	lastCleanup time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// cleanupEvery throttles the stale bucket sweep piggybacked on Check.
const cleanupEvery = 5 * time.Minute

// New creates a limiter with the given per-action rules.
func New(rules map[string]Rule, opts ...Option) *Limiter {
	l := &Limiter{
		rules:   rules,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastCleanup = l.now()
	return l
}

// Check consumes one token for the given actor and action if available.
// Actions without a configured rule are always allowed.
func (l *Limiter) Check(actorID, action string) Decision {
	rule, ok := l.rules[action]
	if !ok {
		return Decision{Allowed: true, Remaining: 0}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.maybeCleanup(now)

	key := actorID + ":" + action
	b, ok := l.buckets[key]
	if !ok {
		// First request both creates the bucket and consumes a token.
		l.buckets[key] = &bucket{tokens: rule.MaxRequests - 1, lastRefill: now}
		metrics.RateLimitChecksTotal.WithLabelValues(action, "allowed").Inc()
		return Decision{Allowed: true, Remaining: rule.MaxRequests - 1}
	}

	refill(b, rule, now)

	if b.tokens <= 0 {
		metrics.RateLimitChecksTotal.WithLabelValues(action, "denied").Inc()
		return Decision{Allowed: false, Remaining: 0}
	}

	b.tokens--
	metrics.RateLimitChecksTotal.WithLabelValues(action, "allowed").Inc()
	return Decision{Allowed: true, Remaining: b.tokens}
}

// refill adds floor(elapsed/window * max) tokens, capped at max. The refill
// timestamp only advances when at least one token was earned, so partial
// windows keep accumulating.
func refill(b *bucket, rule Rule, now time.Time) {
	elapsed := now.Sub(b.lastRefill)
	if elapsed <= 0 {
		return
	}

	earned := int(float64(elapsed) / float64(rule.Window) * float64(rule.MaxRequests))
	if earned <= 0 {
		return
	}

	b.tokens += earned
	if b.tokens > rule.MaxRequests {
		b.tokens = rule.MaxRequests
	}
	b.lastRefill = now
}

// maybeCleanup drops buckets idle for more than twice their window.
// Caller holds l.mu.
func (l *Limiter) maybeCleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < cleanupEvery {
		return
	}
	l.lastCleanup = now

	for key, b := range l.buckets {
		action := key[strings.LastIndexByte(key, ':')+1:]
		rule, ok := l.rules[action]
		if !ok {
			delete(l.buckets, key)
			continue
		}
		if now.Sub(b.lastRefill) > 2*rule.Window {
			delete(l.buckets, key)
		}
	}
}
