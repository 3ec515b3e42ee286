package service

import (
	"context"
	"errors"
	"time"

	"carebridge/internal/consent/models"
	id "carebridge/pkg/domain"
	"carebridge/pkg/platform/sentinel"
	"carebridge/pkg/platform/tracer"
)

// ExpiryReconciler closes out requests and grants whose time has passed.
type ExpiryReconciler struct {
	*core
}

// Sweep moves every open request whose expiry date, or whose artefact's date
// range, lapsed before now to EXPIRED and returns how many it changed. Each
// candidate is re-checked under its lock, so concurrent sweeps and revokes
// never double-count or override a terminal status. A failure on one
// candidate does not stop the others; the failures are joined into the
// returned error.
func (e *ExpiryReconciler) Sweep(ctx context.Context, now time.Time) (_ int, err error) {
	ctx, span := e.tracer.Start(ctx, tracer.SpanSweep)
	start := time.Now()
	expired := 0
	defer func() {
		span.SetAttributes(tracer.Int(tracer.AttrExpired, expired))
		span.End(err)
		e.metrics.ObserveSweep(expired, time.Since(start))
	}()

	candidates, err := e.store.ListExpiryCandidates(ctx, now)
	if err != nil {
		return 0, storeError(err, "consent request")
	}

	var errs []error
	for _, requestID := range candidates {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		changed, err := e.expireOne(ctx, requestID, now)
		if err != nil {
			e.logger.ErrorContext(ctx, "failed to expire consent request",
				"consent_request_id", requestID.String(),
				"error", err,
			)
			errs = append(errs, err)
			continue
		}
		if changed {
			expired++
		}
	}

	if expired > 0 {
		e.logger.InfoContext(ctx, "expiry sweep completed", "expired", expired, "candidates", len(candidates))
	}
	return expired, errors.Join(errs...)
}

func (e *ExpiryReconciler) expireOne(ctx context.Context, requestID id.ConsentRequestID, now time.Time) (bool, error) {
	var (
		from   models.Status
		closed *models.ConsentRequest
	)
	err := e.retryOnConflict("sweep", func() error {
		closed = nil
		return e.tx.RunInTx(ctx, requestID, func(ctx context.Context, s Store) error {
			r, err := s.FindRequest(ctx, requestID)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return nil
				}
				return err
			}
			art, err := s.FindArtefactByRequest(ctx, requestID)
			if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
				return err
			}
			if !models.IsDueForExpiry(r, art, now) {
				return nil
			}
			from = r.Status
			if err := transition(r, models.StatusExpired); err != nil {
				return err
			}
			r.UpdatedAt = now
			if err := s.UpdateRequest(ctx, r); err != nil {
				return err
			}
			closed = r
			return nil
		})
	})
	if err != nil {
		return false, storeError(err, "consent request")
	}
	if closed == nil {
		return false, nil
	}

	e.metrics.IncTransition(string(from), string(models.StatusExpired))
	e.emitAudit(ctx, requestEvent(closed, models.AuditActionExpired, models.AuditDecisionExpired, models.AuditReasonExpirySweep))
	e.logger.InfoContext(ctx, "consent request expired",
		"consent_request_id", requestID.String(),
		"previous_status", string(from),
	)
	return true, nil
}
