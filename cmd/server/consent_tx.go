package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"carebridge/internal/consent/metrics"
	consentservice "carebridge/internal/consent/service"
	consentstore "carebridge/internal/consent/store"
	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/platform/sentinel"
)

// Postgres error classes the runner translates.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
)

// consentPostgresTx is the StoreTx for the postgres store. Every mutation of
// a consent request runs in one transaction that first takes FOR UPDATE on
// the request row, so racing grants, revokes and ledger writes queue in the
// database.
type consentPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
	metrics *metrics.Metrics
}

func newConsentPostgresTx(db *sql.DB, m *metrics.Metrics) *consentPostgresTx {
	return &consentPostgresTx{db: db, metrics: m}
}

func (t *consentPostgresTx) RunInTx(ctx context.Context, requestID id.ConsentRequestID, fn func(ctx context.Context, store consentservice.Store) error) error {
	ctx, cancel, err := consentservice.TxContext(ctx, t.timeout)
	if err != nil {
		return err
	}
	defer cancel()

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin consent tx: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	store := consentstore.NewPostgresTx(tx)
	waitStart := time.Now()
	if err := store.LockRequest(ctx, requestID); err != nil {
		return classifyPgError(err)
	}
	t.metrics.ObserveLockWait(time.Since(waitStart))

	if err := fn(ctx, store); err != nil {
		return classifyPgError(err)
	}
	if err := tx.Commit(); err != nil {
		return classifyPgError(fmt.Errorf("commit consent tx: %w", err))
	}
	return nil
}

// classifyPgError turns lost races into sentinel.ErrConflict, which the
// service retries, and lock waits cut short into timeouts. Other errors pass
// through untouched.
func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected:
		return fmt.Errorf("%w: %w", sentinel.ErrConflict, err)
	case pgLockNotAvailable, pgQueryCanceled:
		return &dErrors.Error{Code: dErrors.CodeTimeout, Message: "timed out waiting for consent request lock", Err: err}
	default:
		return err
	}
}
