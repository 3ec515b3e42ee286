package service

import (
	"context"
	"time"

	"carebridge/internal/audit"
	"carebridge/internal/consent/models"
	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/platform/tracer"
)

// ArtefactGenerator turns grantable requests into signed artefacts and
// handles revocation.
type ArtefactGenerator struct {
	*core
	signer SignatureProvider
}

// Grant creates the artefact for requestID and flips the request to
// GRANTED in one unit. Concurrent grants on the same request produce exactly
// one artefact; the losers fail with an invalid state transition.
func (g *ArtefactGenerator) Grant(ctx context.Context, requestID id.ConsentRequestID, p models.GrantParams) (_ *models.ConsentArtefact, err error) {
	ctx, span := g.tracer.Start(ctx, tracer.SpanGrant, tracer.String(tracer.AttrRequestID, requestID.String()))
	defer func(start time.Time) {
		span.End(err)
		g.metrics.ObserveOperation("grant", start)
	}(time.Now())

	if err := p.Validate(); err != nil {
		return nil, err
	}

	var (
		granted  *models.ConsentRequest
		artefact *models.ConsentArtefact
	)
	err = g.retryOnConflict("grant", func() error {
		return g.tx.RunInTx(ctx, requestID, func(ctx context.Context, s Store) error {
			r, err := s.FindRequest(ctx, requestID)
			if err != nil {
				return err
			}
			now := g.clock.Now()
			if !models.CanBeGranted(r, now) {
				if r.Status == models.StatusRequested {
					return dErrors.New(dErrors.CodeInvalidStateTransition, "consent request has passed its expiry date")
				}
				return dErrors.New(dErrors.CodeInvalidStateTransition,
					"consent request cannot be granted from "+string(r.Status))
			}

			a, err := models.NewConsentArtefact(id.NewConsentArtefactID(), r.ID, p, now)
			if err != nil {
				return err
			}
			sig, err := g.signer.Sign(ctx, models.PayloadFor(r, a.SignedAt))
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign consent artefact")
			}
			a.Signature = sig

			if err := transition(r, models.StatusGranted); err != nil {
				return err
			}
			r.UpdatedAt = now
			if err := s.SaveGrant(ctx, r, a); err != nil {
				return err
			}
			granted, artefact = r, a
			return nil
		})
	})
	if err != nil {
		return nil, storeError(err, "consent request")
	}

	span.SetAttributes(tracer.String(tracer.AttrArtefactID, artefact.ID.String()))
	g.metrics.IncTransition(string(models.StatusRequested), string(models.StatusGranted))
	g.emitAudit(ctx, artefactEvent(granted, artefact, models.AuditActionGranted, models.AuditDecisionGranted, models.AuditReasonPatientInitiated))
	g.logger.InfoContext(ctx, "consent granted",
		"consent_request_id", requestID.String(),
		"artefact_id", artefact.ID.String(),
		"categories", artefact.CategoryNames(),
	)
	return artefact.Clone(), nil
}

// Revoke ends an artefact early: its date range is truncated to now and the
// parent request moves to REVOKED. An artefact that is already invalid is a
// validation error. Losing a race to the expiry sweep or to another revoke
// is a no-op.
func (g *ArtefactGenerator) Revoke(ctx context.Context, artefactID id.ConsentArtefactID) (err error) {
	ctx, span := g.tracer.Start(ctx, tracer.SpanRevoke, tracer.String(tracer.AttrArtefactID, artefactID.String()))
	defer func(start time.Time) {
		span.End(err)
		g.metrics.ObserveOperation("revoke", start)
	}(time.Now())

	a, err := g.store.FindArtefact(ctx, artefactID)
	if err != nil {
		return storeError(err, "consent artefact")
	}
	parent, err := g.store.FindRequest(ctx, a.ConsentRequestID)
	if err != nil {
		return storeError(err, "consent request")
	}
	if !models.IsValid(a, parent, g.clock.Now()) {
		return dErrors.New(dErrors.CodeValidation, "consent artefact is already invalid")
	}

	var revoked *models.ConsentRequest
	err = g.retryOnConflict("revoke", func() error {
		return g.tx.RunInTx(ctx, a.ConsentRequestID, func(ctx context.Context, s Store) error {
			r, err := s.FindRequest(ctx, a.ConsentRequestID)
			if err != nil {
				return err
			}
			if r.Status.IsTerminal() {
				return nil
			}
			now := g.clock.Now()
			if !models.CanBeRevoked(r, now) {
				return dErrors.New(dErrors.CodeValidation, "consent request has passed its expiry date")
			}
			art, err := s.FindArtefact(ctx, artefactID)
			if err != nil {
				return err
			}
			if !models.InDateRange(art, now) {
				return dErrors.New(dErrors.CodeValidation, "consent artefact is already invalid")
			}
			art.DateRangeTo = now
			if err := transition(r, models.StatusRevoked); err != nil {
				return err
			}
			r.UpdatedAt = now
			if err := s.SaveRevocation(ctx, r, art); err != nil {
				return err
			}
			revoked = r
			return nil
		})
	})
	if err != nil {
		return storeError(err, "consent artefact")
	}
	if revoked == nil {
		g.logger.InfoContext(ctx, "revoke skipped; consent already closed", "artefact_id", artefactID.String())
		return nil
	}

	g.metrics.IncTransition(string(models.StatusGranted), string(models.StatusRevoked))
	g.emitAudit(ctx, artefactEvent(revoked, a, models.AuditActionRevoked, models.AuditDecisionRevoked, models.AuditReasonPatientInitiated))
	g.logger.InfoContext(ctx, "consent revoked",
		"consent_request_id", revoked.ID.String(),
		"artefact_id", artefactID.String(),
	)
	return nil
}

// GetArtefact loads one artefact.
func (g *ArtefactGenerator) GetArtefact(ctx context.Context, artefactID id.ConsentArtefactID) (*models.ConsentArtefact, error) {
	a, err := g.store.FindArtefact(ctx, artefactID)
	if err != nil {
		return nil, storeError(err, "consent artefact")
	}
	return a, nil
}

// VerifySignature recomputes the signed payload from the parent request and
// the artefact's signing time and checks it against the stored signature.
func (g *ArtefactGenerator) VerifySignature(ctx context.Context, artefactID id.ConsentArtefactID) (bool, error) {
	a, err := g.store.FindArtefact(ctx, artefactID)
	if err != nil {
		return false, storeError(err, "consent artefact")
	}
	r, err := g.store.FindRequest(ctx, a.ConsentRequestID)
	if err != nil {
		return false, storeError(err, "consent request")
	}
	ok, err := g.signer.Verify(ctx, models.PayloadFor(r, a.SignedAt), a.Signature)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify artefact signature")
	}
	return ok, nil
}

// ListValidArtefactsByPatient returns the artefacts that authorise access
// right now.
func (g *ArtefactGenerator) ListValidArtefactsByPatient(ctx context.Context, patientID id.PatientID) ([]*models.ConsentArtefact, error) {
	all, err := g.store.ListArtefactsByPatient(ctx, patientID)
	if err != nil {
		return nil, storeError(err, "consent artefact")
	}
	now := g.clock.Now()
	out := make([]*models.ConsentArtefact, 0, len(all))
	for _, a := range all {
		if !models.InDateRange(a, now) {
			continue
		}
		parent, err := g.store.FindRequest(ctx, a.ConsentRequestID)
		if err != nil {
			return nil, storeError(err, "consent request")
		}
		if models.IsValid(a, parent, now) {
			out = append(out, a)
		}
	}
	return out, nil
}

func artefactEvent(r *models.ConsentRequest, a *models.ConsentArtefact, action, decision, reason string) audit.Event {
	e := requestEvent(r, action, decision, reason)
	e.Subject = a.ID.String()
	return e
}
