// Package database owns the PostgreSQL pool shared by the consent store and
// the audit outbox.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"carebridge/internal/platform/config"
	"carebridge/migrations"
)

const pingTimeout = 5 * time.Second

var errNotConfigured = errors.New("database not configured")

// Pool is the process-wide *sql.DB. Its methods accept a nil receiver, which
// stands for "no DATABASE_URL".
type Pool struct {
	db *sql.DB
}

// New opens the pool, checks it answers and, with cfg.AutoMigrate, brings
// the schema up to date. An empty cfg.URL yields (nil, nil).
func New(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	p := &Pool{db: db}
	if err := p.prepare(ctx, cfg.AutoMigrate); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, err
	}
	return p, nil
}

func (p *Pool) prepare(ctx context.Context, migrate bool) error {
	if err := p.ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if !migrate {
		return nil
	}
	if err := migrations.Up(ctx, p.db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func (p *Pool) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.db.PingContext(ctx)
}

func (p *Pool) DB() *sql.DB {
	if p == nil {
		return nil
	}
	return p.db
}

// Register publishes connection statistics under the carebridge db_name label.
func (p *Pool) Register(reg prometheus.Registerer) error {
	if p == nil {
		return nil
	}
	return reg.Register(collectors.NewDBStatsCollector(p.db, "carebridge"))
}

// Health is the readiness probe for the postgres check.
func (p *Pool) Health(ctx context.Context) error {
	if p == nil {
		return errNotConfigured
	}
	return p.ping(ctx)
}

func (p *Pool) Close() error {
	if p == nil {
		return nil
	}
	return p.db.Close()
}
