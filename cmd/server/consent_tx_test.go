package main

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	consentservice "carebridge/internal/consent/service"
	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/platform/sentinel"
)

func newMockTx(t *testing.T) (*consentPostgresTx, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newConsentPostgresTx(db, nil), mock
}

func expectLock(mock sqlmock.Sqlmock, reqID id.ConsentRequestID) *sqlmock.ExpectedQuery {
	return mock.ExpectQuery(`SELECT id FROM consent_requests WHERE id = \$1 FOR UPDATE`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(reqID.String()))
}

func TestConsentPostgresTx(t *testing.T) {
	reqID := id.NewConsentRequestID()
	noop := func(context.Context, consentservice.Store) error { return nil }

	t.Run("locks the request then commits", func(t *testing.T) {
		runner, mock := newMockTx(t)
		mock.ExpectBegin()
		expectLock(mock, reqID)
		mock.ExpectCommit()

		var sawStore bool
		err := runner.RunInTx(context.Background(), reqID, func(ctx context.Context, s consentservice.Store) error {
			sawStore = s != nil
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return nil
		})

		require.NoError(t, err)
		assert.True(t, sawStore)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("callback error rolls back", func(t *testing.T) {
		runner, mock := newMockTx(t)
		mock.ExpectBegin()
		expectLock(mock, reqID)
		mock.ExpectRollback()

		boom := errors.New("quota write failed")
		err := runner.RunInTx(context.Background(), reqID, func(context.Context, consentservice.Store) error { return boom })

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("serialization failure becomes a retryable conflict", func(t *testing.T) {
		runner, mock := newMockTx(t)
		mock.ExpectBegin()
		expectLock(mock, reqID)
		mock.ExpectRollback()

		err := runner.RunInTx(context.Background(), reqID, func(context.Context, consentservice.Store) error {
			return &pgconn.PgError{Code: pgSerializationFailure}
		})

		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("lock wait cut short is a timeout", func(t *testing.T) {
		runner, mock := newMockTx(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WithArgs(sqlmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: pgLockNotAvailable})
		mock.ExpectRollback()

		err := runner.RunInTx(context.Background(), reqID, noop)

		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure is unavailable", func(t *testing.T) {
		runner, mock := newMockTx(t)
		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		err := runner.RunInTx(context.Background(), reqID, noop)

		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})

	t.Run("cancelled context never opens a transaction", func(t *testing.T) {
		runner, mock := newMockTx(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := runner.RunInTx(ctx, reqID, noop)

		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClassifyPgError(t *testing.T) {
	plain := errors.New("plain")
	assert.Same(t, plain, classifyPgError(plain))

	deadlock := classifyPgError(&pgconn.PgError{Code: pgDeadlockDetected})
	assert.ErrorIs(t, deadlock, sentinel.ErrConflict)

	unique := &pgconn.PgError{Code: "23505"}
	assert.Equal(t, error(unique), classifyPgError(unique))
}
