//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"carebridge/migrations"
)

// consentTables lists every table the consent engine writes, children first.
var consentTables = []string{
	"consent_access_records",
	"consent_artefacts",
	"consent_requests",
	"audit_outbox",
}

// PostgresContainer is a migrated carebridge database.
type PostgresContainer struct {
	DSN string
	DB  *sql.DB
}

func startPostgres(ctx context.Context) (*PostgresContainer, error) {
	c, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("carebridge_test"),
		postgres.WithUsername("carebridge"),
		postgres.WithPassword("carebridge"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, err
	}
	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("connection string: %w", err)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PostgresContainer{DSN: dsn, DB: db}, nil
}

// Truncate empties the named tables in one statement.
func (p *PostgresContainer) Truncate(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+strings.Join(tables, ", ")+" CASCADE")
	return err
}

// ResetConsent empties the consent tables and the audit outbox.
func (p *PostgresContainer) ResetConsent(ctx context.Context) error {
	return p.Truncate(ctx, consentTables...)
}
