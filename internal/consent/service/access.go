package service

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"carebridge/internal/audit"
	"carebridge/internal/consent/device"
	"carebridge/internal/consent/models"
	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/platform/clock"
	"carebridge/pkg/platform/privacy"
	"carebridge/pkg/platform/sentinel"
	"carebridge/pkg/platform/tracer"
	"carebridge/pkg/requestcontext"
)

// Decision is the outcome of evaluating an access attempt. Denial is a
// normal outcome, never an error.
type Decision struct {
	Allowed bool
	// Reason is empty when allowed and otherwise one of the
	// models.AuditReason* values.
	Reason string
	// Remaining is the quota left after the decision; nil means unlimited.
	Remaining *int
}

// AccessValidator admits or refuses reads under an artefact and keeps the
// usage ledger that backs the quota.
type AccessValidator struct {
	*core
	ids *recordIDs
}

// CheckAccess reports whether every requested category may be read under
// the artefact now. A missing artefact, an invalid artefact, an uncovered
// category, or an exhausted quota all yield false without an error.
func (v *AccessValidator) CheckAccess(ctx context.Context, artefactID id.ConsentArtefactID, categories []string) (_ bool, err error) {
	ctx, span := v.tracer.Start(ctx, tracer.SpanCheckAccess, tracer.String(tracer.AttrArtefactID, artefactID.String()))
	defer func(start time.Time) {
		span.End(err)
		v.metrics.ObserveOperation("check_access", start)
	}(time.Now())

	d, a, parent, err := v.evaluate(ctx, v.store, artefactID, categories, v.clock.Now())
	if err != nil {
		return false, storeError(err, "consent artefact")
	}
	span.SetAttributes(tracer.Bool(tracer.AttrAllowed, d.Allowed))
	v.reportDecision(ctx, artefactID, a, parent, categories, d)
	return d.Allowed, nil
}

// RecordAccess appends a ledger entry for categories. The artefact must
// currently admit the access; the quota check and the append happen under
// the parent request's lock so concurrent callers cannot overshoot the cap.
func (v *AccessValidator) RecordAccess(ctx context.Context, artefactID id.ConsentArtefactID, categories []string, ac models.AccessContext) (_ *models.AccessRecord, err error) {
	ctx, span := v.tracer.Start(ctx, tracer.SpanRecordAccess, tracer.String(tracer.AttrArtefactID, artefactID.String()))
	defer func(start time.Time) {
		span.End(err)
		v.metrics.ObserveOperation("record_access", start)
	}(time.Now())

	d, rec, err := v.admitAndRecord(ctx, artefactID, categories, ac)
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		if d.Reason == models.AuditReasonArtefactMissing {
			return nil, dErrors.New(dErrors.CodeNotFound, "consent artefact not found")
		}
		return nil, dErrors.New(dErrors.CodeValidation, denialMessage(d.Reason))
	}
	return rec, nil
}

// ValidateAndRecord checks access and, when allowed, records it in the same
// critical section. It returns the decision; a denial is not an error.
func (v *AccessValidator) ValidateAndRecord(ctx context.Context, artefactID id.ConsentArtefactID, categories []string, ac models.AccessContext) (Decision, *models.AccessRecord, error) {
	ctx, span := v.tracer.Start(ctx, tracer.SpanRecordAccess, tracer.String(tracer.AttrArtefactID, artefactID.String()))
	d, rec, err := v.admitAndRecord(ctx, artefactID, categories, ac)
	span.End(err)
	return d, rec, err
}

func (v *AccessValidator) admitAndRecord(ctx context.Context, artefactID id.ConsentArtefactID, categories []string, ac models.AccessContext) (Decision, *models.AccessRecord, error) {
	// The ledger is guarded by the parent request's lock, so the request id
	// has to be known before entering the transaction.
	a, err := v.store.FindArtefact(ctx, artefactID)
	if err != nil {
		if sentinelNotFound(err) {
			d := Decision{Reason: models.AuditReasonArtefactMissing}
			v.reportDecision(ctx, artefactID, nil, nil, categories, d)
			return d, nil, nil
		}
		return Decision{}, nil, storeError(err, "consent artefact")
	}

	ac = v.enrich(ctx, ac)
	var (
		d      Decision
		rec    *models.AccessRecord
		art    *models.ConsentArtefact
		parent *models.ConsentRequest
	)
	err = v.tx.RunInTx(ctx, a.ConsentRequestID, func(ctx context.Context, s Store) error {
		now := v.clock.Now()
		var err error
		d, art, parent, err = v.evaluate(ctx, s, artefactID, categories, now)
		if err != nil || !d.Allowed {
			return err
		}
		r := &models.AccessRecord{
			ID:            v.ids.next(),
			ArtefactID:    artefactID,
			AccessedAt:    now,
			Categories:    slices.Clone(categories),
			AccessContext: ac,
		}
		if err := s.AppendAccessRecord(ctx, r); err != nil {
			return err
		}
		if d.Remaining != nil {
			left := *d.Remaining - 1
			d.Remaining = &left
		}
		rec = r
		return nil
	})
	if err != nil {
		return Decision{}, nil, storeError(err, "consent artefact")
	}

	v.reportDecision(ctx, artefactID, art, parent, categories, d)
	if rec != nil {
		v.metrics.IncAccessRecorded()
		e := accessEvent(artefactID, parent, models.AuditActionAccessRecorded, models.AuditDecisionRecorded, "")
		e.Purpose = ac.Purpose
		v.emitAudit(ctx, e)
		v.logger.InfoContext(ctx, "consent access recorded",
			"artefact_id", artefactID.String(),
			"access_record_id", rec.ID.String(),
			"categories", categories,
		)
	}
	return d, rec, nil
}

// RemainingAccess returns the accesses left under the artefact's quota, or
// nil when it has none.
func (v *AccessValidator) RemainingAccess(ctx context.Context, artefactID id.ConsentArtefactID) (*int, error) {
	a, err := v.store.FindArtefact(ctx, artefactID)
	if err != nil {
		return nil, storeError(err, "consent artefact")
	}
	if a.Frequency == nil {
		return nil, nil
	}
	used, err := v.store.CountAccessRecords(ctx, artefactID)
	if err != nil {
		return nil, storeError(err, "access record")
	}
	return models.RemainingAccess(a, used), nil
}

// ListAccessRecords returns the artefact's ledger, oldest first.
func (v *AccessValidator) ListAccessRecords(ctx context.Context, artefactID id.ConsentArtefactID) ([]*models.AccessRecord, error) {
	if _, err := v.store.FindArtefact(ctx, artefactID); err != nil {
		return nil, storeError(err, "consent artefact")
	}
	recs, err := v.store.ListAccessRecords(ctx, artefactID)
	if err != nil {
		return nil, storeError(err, "access record")
	}
	return recs, nil
}

// evaluate decides one access attempt against s. Missing entities become
// denials; only infrastructure failures are returned as errors.
func (v *AccessValidator) evaluate(ctx context.Context, s Store, artefactID id.ConsentArtefactID, categories []string, now time.Time) (Decision, *models.ConsentArtefact, *models.ConsentRequest, error) {
	a, err := s.FindArtefact(ctx, artefactID)
	if err != nil {
		if sentinelNotFound(err) {
			return Decision{Reason: models.AuditReasonArtefactMissing}, nil, nil, nil
		}
		return Decision{}, nil, nil, err
	}
	parent, err := s.FindRequest(ctx, a.ConsentRequestID)
	if err != nil {
		if sentinelNotFound(err) {
			return Decision{Reason: models.AuditReasonArtefactInvalid}, a, nil, nil
		}
		return Decision{}, a, nil, err
	}
	if !models.IsValid(a, parent, now) {
		return Decision{Reason: models.AuditReasonArtefactInvalid}, a, parent, nil
	}
	if !models.AllowsAll(a, categories) {
		return Decision{Reason: models.AuditReasonCategoryNotCovered}, a, parent, nil
	}
	if a.Frequency == nil {
		return Decision{Allowed: true}, a, parent, nil
	}
	used, err := s.CountAccessRecords(ctx, artefactID)
	if err != nil {
		return Decision{}, a, parent, err
	}
	remaining := models.RemainingAccess(a, used)
	if !models.HasQuota(a, used) {
		return Decision{Reason: models.AuditReasonQuotaExhausted, Remaining: remaining}, a, parent, nil
	}
	return Decision{Allowed: true, Remaining: remaining}, a, parent, nil
}

func (v *AccessValidator) reportDecision(ctx context.Context, artefactID id.ConsentArtefactID, a *models.ConsentArtefact, parent *models.ConsentRequest, categories []string, d Decision) {
	v.metrics.IncAccessDecision(d.Allowed, d.Reason)
	if d.Allowed {
		v.emitAudit(ctx, accessEvent(artefactID, parent, models.AuditActionAccessAllowed, models.AuditDecisionAllowed, ""))
		return
	}
	v.emitAudit(ctx, accessEvent(artefactID, parent, models.AuditActionAccessDenied, models.AuditDecisionDenied, d.Reason))
	attrs := []any{
		"artefact_id", artefactID.String(),
		"reason", d.Reason,
		"categories", categories,
	}
	if a != nil {
		attrs = append(attrs, "consent_request_id", a.ConsentRequestID.String())
	}
	v.logger.WarnContext(ctx, "consent access denied", attrs...)
}

// enrich fills access metadata the caller left blank from the HTTP request
// context. Client IPs are stored anonymised.
func (v *AccessValidator) enrich(ctx context.Context, ac models.AccessContext) models.AccessContext {
	if ac.ClientIP == "" {
		ac.ClientIP = requestcontext.ClientIP(ctx)
	}
	if ac.ClientIP != "" {
		ac.ClientIP = privacy.AnonymizeIP(ac.ClientIP)
	}
	if ac.UserAgent == "" {
		ac.UserAgent = requestcontext.UserAgent(ctx)
	}
	if ac.DeviceID == "" {
		ac.DeviceID = requestcontext.DeviceID(ctx)
	}
	if ac.ClientDescription == "" {
		ac.ClientDescription = device.Describe(ac.UserAgent)
	}
	return ac
}

func accessEvent(artefactID id.ConsentArtefactID, parent *models.ConsentRequest, action, decision, reason string) audit.Event {
	if parent == nil {
		return audit.Event{Subject: artefactID.String(), Action: action, Decision: decision, Reason: reason}
	}
	e := requestEvent(parent, action, decision, reason)
	e.Subject = artefactID.String()
	return e
}

func denialMessage(reason string) string {
	switch reason {
	case models.AuditReasonQuotaExhausted:
		return "consent artefact has no remaining access quota"
	case models.AuditReasonCategoryNotCovered:
		return "requested data categories are not covered by the consent artefact"
	case models.AuditReasonArtefactInvalid:
		return "consent artefact is no longer valid"
	default:
		return "access denied"
	}
}

func sentinelNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}

// recordIDs mints monotonic ULIDs for ledger entries.
type recordIDs struct {
	mu      sync.Mutex
	clock   clock.Clock
	entropy io.Reader
}

func newRecordIDs(clk clock.Clock) *recordIDs {
	return &recordIDs{clock: clk, entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *recordIDs) next() id.AccessRecordID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return id.AccessRecordID(ulid.MustNew(ulid.Timestamp(g.clock.Now()), g.entropy).String())
}
