package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"carebridge/internal/platform/config"
	"carebridge/internal/platform/database"
	"carebridge/internal/platform/health"
	"carebridge/internal/platform/kafka/producer"
	"carebridge/internal/platform/redis"
)

// infra holds the optional external connections. Each field is nil when
// its URL is not configured.
type infra struct {
	db       *database.Pool
	redis    *redis.Client
	producer *producer.Producer
	log      *slog.Logger
}

func openInfra(ctx context.Context, cfg config.Server, log *slog.Logger, reg prometheus.Registerer, checks *health.Handler) (*infra, error) {
	in := &infra{log: log}

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if db != nil {
		in.db = db
		if err := db.Register(reg); err != nil {
			in.Close()
			return nil, fmt.Errorf("register database metrics: %w", err)
		}
		checks.RegisterCheck("postgres", db.Health)
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		in.redis = rdb
		if err := rdb.Register(reg); err != nil {
			in.Close()
			return nil, fmt.Errorf("register redis metrics: %w", err)
		}
		checks.RegisterCheck("redis", rdb.Health)
	}

	if cfg.Kafka.Brokers != "" {
		p, err := producer.New(producer.DefaultConfig(cfg.Kafka.Brokers), log)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.producer = p
		checks.RegisterCheck("kafka", p.Health)
	}

	return in, nil
}

// Close flushes the producer and releases every connection.
func (in *infra) Close() {
	if in.producer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := in.producer.Flush(ctx); err != nil {
			in.log.Warn("failed to flush kafka producer", "error", err)
		}
		cancel()
		in.producer.Close()
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			in.log.Warn("failed to close redis client", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			in.log.Warn("failed to close database pool", "error", err)
		}
	}
}
