package redis

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"carebridge/internal/platform/config"
)

// Client wraps the go-redis client with health checking and pool metrics.
type Client struct {
	*redis.Client
	stats *poolCollector
}

// New creates a new Redis client from the provided configuration.
// Returns nil if the URL is empty (Redis not configured).
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return Wrap(client), nil
}

// Wrap adopts an existing go-redis client.
func Wrap(client *redis.Client) *Client {
	c := &Client{Client: client}
	c.stats = &poolCollector{stats: client.PoolStats}
	return c
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.Client.Close()
}

// Register exposes connection pool statistics, read at scrape time.
func (c *Client) Register(reg prometheus.Registerer) error {
	return reg.Register(c.stats)
}

var (
	poolHitsDesc     = prometheus.NewDesc("carebridge_redis_pool_hits_total", "Number of times a connection was found in the pool", nil, nil)
	poolMissesDesc   = prometheus.NewDesc("carebridge_redis_pool_misses_total", "Number of times a connection was not found in the pool", nil, nil)
	poolTimeoutsDesc = prometheus.NewDesc("carebridge_redis_pool_timeouts_total", "Number of times a connection was not obtained due to timeout", nil, nil)
	poolTotalDesc    = prometheus.NewDesc("carebridge_redis_pool_total_conns", "Number of total connections in the pool", nil, nil)
	poolIdleDesc     = prometheus.NewDesc("carebridge_redis_pool_idle_conns", "Number of idle connections in the pool", nil, nil)
	poolStaleDesc    = prometheus.NewDesc("carebridge_redis_pool_stale_conns_total", "Number of stale connections removed from the pool", nil, nil)
)

type poolCollector struct {
	stats func() *redis.PoolStats
}

func (p *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- poolHitsDesc
	ch <- poolMissesDesc
	ch <- poolTimeoutsDesc
	ch <- poolTotalDesc
	ch <- poolIdleDesc
	ch <- poolStaleDesc
}

func (p *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := p.stats()
	ch <- prometheus.MustNewConstMetric(poolHitsDesc, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(poolMissesDesc, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(poolTimeoutsDesc, prometheus.CounterValue, float64(s.Timeouts))
	ch <- prometheus.MustNewConstMetric(poolTotalDesc, prometheus.GaugeValue, float64(s.TotalConns))
	ch <- prometheus.MustNewConstMetric(poolIdleDesc, prometheus.GaugeValue, float64(s.IdleConns))
	ch <- prometheus.MustNewConstMetric(poolStaleDesc, prometheus.CounterValue, float64(s.StaleConns))
}
