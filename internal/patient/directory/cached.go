package directory

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	id "carebridge/pkg/domain"
	"carebridge/pkg/platform/privacy"
)

const cacheKeyPrefix = "carebridge:patient:exists:"

// Lookup is any PatientDirectory implementation.
type Lookup interface {
	Exists(ctx context.Context, patientID id.PatientID) (bool, error)
}

// RedisClient is the subset of go-redis the cache uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Cached memoises existence answers in redis. Positive answers live for
// ttl, negative ones for negativeTTL so newly registered patients show up
// quickly. Redis failures fall through to the wrapped directory.
type Cached struct {
	next        Lookup
	client      RedisClient
	ttl         time.Duration
	negativeTTL time.Duration
	logger      *slog.Logger
	lookups     *prometheus.CounterVec
}

// CachedOption configures Cached.
type CachedOption func(*Cached)

func WithNegativeTTL(d time.Duration) CachedOption {
	return func(c *Cached) { c.negativeTTL = d }
}

func WithLogger(l *slog.Logger) CachedOption {
	return func(c *Cached) { c.logger = l }
}

// WithLookupCounter counts lookups by result ("hit" or "miss").
func WithLookupCounter(v *prometheus.CounterVec) CachedOption {
	return func(c *Cached) { c.lookups = v }
}

func NewCached(next Lookup, client RedisClient, ttl time.Duration, opts ...CachedOption) *Cached {
	c := &Cached{
		next:        next,
		client:      client,
		ttl:         ttl,
		negativeTTL: 30 * time.Second,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cached) Exists(ctx context.Context, patientID id.PatientID) (bool, error) {
	key := cacheKey(patientID)
	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		c.count("hit")
		return val == "1", nil
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "patient cache read failed", "error", err)
	}
	c.count("miss")

	exists, err := c.next.Exists(ctx, patientID)
	if err != nil {
		return false, err
	}

	val, ttl := "0", c.negativeTTL
	if exists {
		val, ttl = "1", c.ttl
	}
	if err := c.client.Set(ctx, key, val, ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "patient cache write failed", "error", err)
	}
	return exists, nil
}

func (c *Cached) count(result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the patient id so raw identifiers never land in redis.
func cacheKey(patientID id.PatientID) string {
	return cacheKeyPrefix + privacy.HashIdentifier(patientID.String())
}
