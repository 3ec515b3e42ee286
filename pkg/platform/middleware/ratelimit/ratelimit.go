// Package ratelimit provides a per-client token-bucket HTTP middleware.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"carebridge/pkg/requestcontext"
)

const defaultIdleTTL = 5 * time.Minute

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client key (resolved client IP by default).
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	keyFn   func(*http.Request) string
	now     func() time.Time
}

type Option func(*Limiter)

// WithKeyFunc overrides how requests are grouped into buckets.
func WithKeyFunc(fn func(*http.Request) string) Option {
	return func(l *Limiter) { l.keyFn = fn }
}

// WithIdleTTL sets how long an unused bucket survives Prune.
func WithIdleTTL(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.idleTTL = d
		}
	}
}

// New creates a Limiter allowing rps sustained requests with the given burst.
func New(rps float64, burst int, opts ...Option) *Limiter {
	if burst < 1 {
		burst = 1
	}
	l := &Limiter{
		buckets: make(map[string]*bucket),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: defaultIdleTTL,
		keyFn:   clientKey,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func clientKey(r *http.Request) string {
	if ip := requestcontext.ClientIP(r.Context()); ip != "" {
		return ip
	}
	return "unknown"
}

// Allow consumes one token from key's bucket.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()
	return b.lim.AllowN(now, 1)
}

// Prune drops buckets idle for longer than the idle TTL and reports how many were removed.
func (l *Limiter) Prune() int {
	cutoff := l.now().Add(-l.idleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for k, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, k)
			removed++
		}
	}
	return removed
}

// Run prunes idle buckets every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune()
		}
	}
}

// Middleware rejects requests over the limit with 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	retryAfter := "1"
	if l.rps > 0 && l.rps < 1 {
		retryAfter = strconv.Itoa(int(1/float64(l.rps)) + 1)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(l.keyFn(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", retryAfter)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limited","error_description":"too many requests"}`)) //nolint:errcheck // headers already sent
			return
		}
		next.ServeHTTP(w, r)
	})
}
