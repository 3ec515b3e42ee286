package service

import (
	"context"
	"time"

	"carebridge/internal/consent/metrics"
	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
	platformsync "carebridge/pkg/platform/sync"
)

// defaultTxTimeout is the maximum duration for a consent transaction.
const defaultTxTimeout = 5 * time.Second

// ShardedTx serialises mutations per consent request with a sharded mutex.
// It backs the in-memory store, whose individual writes are already atomic.
type ShardedTx struct {
	mu      *platformsync.ShardedMutex
	store   Store
	timeout time.Duration
	metrics *metrics.Metrics
}

// NewShardedTx builds a StoreTx over store. m may be nil.
func NewShardedTx(store Store, m *metrics.Metrics) *ShardedTx {
	return &ShardedTx{
		mu:      platformsync.NewShardedMutex(),
		store:   store,
		timeout: defaultTxTimeout,
		metrics: m,
	}
}

func (t *ShardedTx) RunInTx(ctx context.Context, requestID id.ConsentRequestID, fn func(ctx context.Context, s Store) error) error {
	ctx, cancel, err := TxContext(ctx, t.timeout)
	if err != nil {
		return err
	}
	defer cancel()

	key := requestID.String()
	lockStart := time.Now()
	t.mu.Lock(key)
	t.metrics.ObserveLockWait(time.Since(lockStart))
	defer t.mu.Unlock(key)

	// The wait for the lock may have outlived the caller.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx, t.store)
}

// TxContext bounds a StoreTx run: a finished ctx is refused with a timeout
// error, and a ctx without a deadline gets one timeout away (the default when
// timeout is zero).
func TxContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	if err := ctx.Err(); err != nil {
		return ctx, func() {}, dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}, nil
	}
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, cancel, nil
}
