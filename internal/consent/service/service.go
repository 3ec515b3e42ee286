// Package service implements the consent lifecycle engine: the request
// state machine, artefact generation, access validation with usage quotas,
// and the expiry sweep.
package service

import (
	"context"
	"errors"
	"log/slog"

	"carebridge/internal/audit"
	"carebridge/internal/consent/metrics"
	"carebridge/internal/consent/models"
	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/platform/clock"
	"carebridge/pkg/platform/privacy"
	"carebridge/pkg/platform/sentinel"
	"carebridge/pkg/platform/tracer"
	"carebridge/pkg/requestcontext"
)

// core carries the collaborators shared by the four components.
type core struct {
	store   Store
	tx      StoreTx
	clock   clock.Clock
	logger  *slog.Logger
	auditor Auditor
	metrics *metrics.Metrics
	tracer  tracer.Tracer
}

// Service is the consent engine facade. Each embedded component owns one
// slice of the lifecycle and can also be used on its own.
type Service struct {
	*RequestManager
	*ArtefactGenerator
	*AccessValidator
	*ExpiryReconciler
}

type Option func(*core)

// WithLogger sets the logger instance for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(c *core) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source. Defaults to clock.System.
func WithClock(clk clock.Clock) Option {
	return func(c *core) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithAuditor routes audit events to a.
func WithAuditor(a Auditor) Option {
	return func(c *core) {
		c.auditor = a
	}
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *core) {
		c.metrics = m
	}
}

// WithTracer sets the span tracer. Defaults to a no-op tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(c *core) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithStoreTx sets the transactional boundary. Defaults to a sharded
// in-process lock, which is only correct for single-process stores.
func WithStoreTx(tx StoreTx) Option {
	return func(c *core) {
		c.tx = tx
	}
}

// NewService wires the four components around one store.
func NewService(store Store, directory PatientDirectory, signer SignatureProvider, opts ...Option) *Service {
	c := &core{
		store:  store,
		clock:  clock.System{},
		logger: slog.Default(),
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tx == nil {
		c.tx = NewShardedTx(store, c.metrics)
	}
	return &Service{
		RequestManager:    &RequestManager{core: c, directory: directory},
		ArtefactGenerator: &ArtefactGenerator{core: c, signer: signer},
		AccessValidator:   &AccessValidator{core: c, ids: newRecordIDs(c.clock)},
		ExpiryReconciler:  &ExpiryReconciler{core: c},
	}
}

// storeError translates a store failure into a domain error exactly once.
// Domain errors pass through untouched.
func storeError(err error, entity string) error {
	var de *dErrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, entity+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "concurrent modification of "+entity)
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, entity+" store unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, entity+" operation timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to access "+entity)
	}
}

func isConflict(err error) bool {
	return errors.Is(err, sentinel.ErrConflict) || dErrors.HasCode(err, dErrors.CodeConflict)
}

// retryOnConflict runs fn and, if it lost an optimistic-concurrency race,
// runs it once more. fn must re-read state and re-check preconditions.
func (c *core) retryOnConflict(op string, fn func() error) error {
	err := fn()
	if !isConflict(err) {
		return err
	}
	c.metrics.IncConflictRetry(op)
	return fn()
}

func (c *core) emitAudit(ctx context.Context, event audit.Event) {
	if c.auditor == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = c.clock.Now()
	}
	if err := c.auditor.Emit(ctx, event); err != nil {
		c.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
			"subject", event.Subject,
		)
	}
}

// requestEvent builds the audit event for a lifecycle change of r.
func requestEvent(r *models.ConsentRequest, action, decision, reason string) audit.Event {
	return audit.Event{
		PatientHash:     privacy.HashIdentifier(r.PatientID.String()),
		Subject:         r.ID.String(),
		Action:          action,
		Purpose:         r.Purpose,
		RequestingParty: r.HIUID.String(),
		Decision:        decision,
		Reason:          reason,
	}
}

// transition applies a state machine edge or reports why it is not allowed.
func transition(r *models.ConsentRequest, to models.Status) error {
	if !r.Status.CanTransitionTo(to) {
		return dErrors.New(dErrors.CodeInvalidStateTransition,
			"consent request cannot move from "+string(r.Status)+" to "+string(to))
	}
	r.Status = to
	return nil
}
