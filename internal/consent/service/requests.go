package service

import (
	"context"
	"errors"
	"time"

	"carebridge/internal/consent/models"
	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/platform/privacy"
	"carebridge/pkg/platform/sentinel"
	"carebridge/pkg/platform/tracer"
	"carebridge/pkg/platform/validation"
)

// RequestManager owns the consent request state machine outside of grant
// and revoke: creation, denial, edits, deletion, and listings.
type RequestManager struct {
	*core
	directory PatientDirectory
}

// CreateRequest opens a REQUESTED consent request. It fails with a
// validation error when the expiry is not in the future and with not-found
// when the patient directory does not know the patient.
func (m *RequestManager) CreateRequest(ctx context.Context, p models.NewConsentRequestParams) (_ *models.ConsentRequest, err error) {
	ctx, span := m.tracer.Start(ctx, tracer.SpanCreateRequest,
		tracer.String(tracer.AttrPatientHash, privacy.HashIdentifier(p.PatientID.String())))
	defer func(start time.Time) {
		span.End(err)
		m.metrics.ObserveOperation("create_request", start)
	}(time.Now())

	r, err := models.NewConsentRequest(id.NewConsentRequestID(), p, m.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := m.ensurePatient(ctx, r.PatientID); err != nil {
		return nil, err
	}
	if err := m.store.CreateRequest(ctx, r); err != nil {
		return nil, storeError(err, "consent request")
	}

	m.metrics.IncRequestsCreated()
	m.emitAudit(ctx, requestEvent(r, models.AuditActionRequestCreated, models.AuditDecisionCreated, models.AuditReasonRequesterInitiated))
	m.logger.InfoContext(ctx, "consent request created",
		"consent_request_id", r.ID.String(),
		"hip_id", r.HIPID.String(),
		"hiu_id", r.HIUID.String(),
		"expiry_date", r.ExpiryDate,
	)
	return r.Clone(), nil
}

func (m *RequestManager) ensurePatient(ctx context.Context, patientID id.PatientID) (err error) {
	ctx, span := m.tracer.Start(ctx, tracer.SpanPatientLookup)
	defer func() { span.End(err) }()

	exists, err := m.directory.Exists(ctx, patientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrUnavailable) {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "patient directory unavailable")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "patient lookup failed")
	}
	if !exists {
		return dErrors.New(dErrors.CodeNotFound, "patient not found")
	}
	return nil
}

// DenyRequest closes a REQUESTED request as DENIED.
func (m *RequestManager) DenyRequest(ctx context.Context, requestID id.ConsentRequestID) (err error) {
	ctx, span := m.tracer.Start(ctx, tracer.SpanDeny, tracer.String(tracer.AttrRequestID, requestID.String()))
	defer func(start time.Time) {
		span.End(err)
		m.metrics.ObserveOperation("deny", start)
	}(time.Now())

	var denied *models.ConsentRequest
	err = m.retryOnConflict("deny", func() error {
		return m.tx.RunInTx(ctx, requestID, func(ctx context.Context, s Store) error {
			r, err := s.FindRequest(ctx, requestID)
			if err != nil {
				return err
			}
			if err := transition(r, models.StatusDenied); err != nil {
				return err
			}
			r.UpdatedAt = m.clock.Now()
			if err := s.UpdateRequest(ctx, r); err != nil {
				return err
			}
			denied = r
			return nil
		})
	})
	if err != nil {
		return storeError(err, "consent request")
	}

	m.metrics.IncTransition(string(models.StatusRequested), string(models.StatusDenied))
	m.emitAudit(ctx, requestEvent(denied, models.AuditActionDenied, models.AuditDecisionDenied, models.AuditReasonPatientInitiated))
	m.logger.InfoContext(ctx, "consent request denied", "consent_request_id", requestID.String())
	return nil
}

// UpdateRequest edits the purpose or metadata of a REQUESTED request.
func (m *RequestManager) UpdateRequest(ctx context.Context, requestID id.ConsentRequestID, upd models.RequestUpdate) (_ *models.ConsentRequest, err error) {
	ctx, span := m.tracer.Start(ctx, tracer.SpanUpdateRequest, tracer.String(tracer.AttrRequestID, requestID.String()))
	defer func(start time.Time) {
		span.End(err)
		m.metrics.ObserveOperation("update_request", start)
	}(time.Now())

	if upd.Purpose != nil && *upd.Purpose == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "purpose cannot be empty")
	}

	var updated *models.ConsentRequest
	err = m.retryOnConflict("update_request", func() error {
		return m.tx.RunInTx(ctx, requestID, func(ctx context.Context, s Store) error {
			r, err := s.FindRequest(ctx, requestID)
			if err != nil {
				return err
			}
			if r.Status != models.StatusRequested {
				return dErrors.New(dErrors.CodeInvalidStateTransition, "only REQUESTED consent requests can be updated")
			}
			upd.Apply(r)
			if err := validation.CheckSliceCount("metadata entries", len(r.Metadata), validation.MaxMetadataEntries); err != nil {
				return err
			}
			r.UpdatedAt = m.clock.Now()
			if err := s.UpdateRequest(ctx, r); err != nil {
				return err
			}
			updated = r
			return nil
		})
	})
	if err != nil {
		return nil, storeError(err, "consent request")
	}

	m.emitAudit(ctx, requestEvent(updated, models.AuditActionRequestUpdated, models.AuditDecisionUpdated, models.AuditReasonRequesterInitiated))
	m.logger.InfoContext(ctx, "consent request updated", "consent_request_id", requestID.String())
	return updated.Clone(), nil
}

// DeleteRequest removes a request that was never granted. GRANTED requests
// and any request that still has an artefact are refused.
func (m *RequestManager) DeleteRequest(ctx context.Context, requestID id.ConsentRequestID) (err error) {
	ctx, span := m.tracer.Start(ctx, tracer.SpanDeleteRequest, tracer.String(tracer.AttrRequestID, requestID.String()))
	defer func(start time.Time) {
		span.End(err)
		m.metrics.ObserveOperation("delete_request", start)
	}(time.Now())

	var deleted *models.ConsentRequest
	err = m.retryOnConflict("delete_request", func() error {
		return m.tx.RunInTx(ctx, requestID, func(ctx context.Context, s Store) error {
			r, err := s.FindRequest(ctx, requestID)
			if err != nil {
				return err
			}
			if r.Status == models.StatusGranted {
				return dErrors.New(dErrors.CodeInvalidStateTransition, "granted consent requests cannot be deleted; revoke instead")
			}
			if err := s.DeleteRequest(ctx, requestID); err != nil {
				if errors.Is(err, sentinel.ErrConflict) {
					return dErrors.New(dErrors.CodeInvalidStateTransition, "consent request has an artefact and cannot be deleted")
				}
				return err
			}
			deleted = r
			return nil
		})
	})
	if err != nil {
		return storeError(err, "consent request")
	}

	m.emitAudit(ctx, requestEvent(deleted, models.AuditActionRequestDeleted, models.AuditDecisionDeleted, models.AuditReasonRequesterInitiated))
	m.logger.InfoContext(ctx, "consent request deleted", "consent_request_id", requestID.String())
	return nil
}

// GetRequest loads one request.
func (m *RequestManager) GetRequest(ctx context.Context, requestID id.ConsentRequestID) (*models.ConsentRequest, error) {
	r, err := m.store.FindRequest(ctx, requestID)
	if err != nil {
		return nil, storeError(err, "consent request")
	}
	return r, nil
}

// ListRequestsByPatient lists a patient's requests, optionally narrowed to
// one status. It has no side effects.
func (m *RequestManager) ListRequestsByPatient(ctx context.Context, patientID id.PatientID, status *models.Status) ([]*models.ConsentRequest, error) {
	if status != nil && !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid status filter")
	}
	out, err := m.store.ListRequestsByPatient(ctx, patientID, &models.RequestFilter{Status: status})
	if err != nil {
		return nil, storeError(err, "consent request")
	}
	return out, nil
}

// ListActiveRequestsByHIP lists GRANTED requests at a provider that have
// not reached their expiry date.
func (m *RequestManager) ListActiveRequestsByHIP(ctx context.Context, hipID id.HIPID) ([]*models.ConsentRequest, error) {
	granted, err := m.store.ListRequestsByHIP(ctx, hipID, models.StatusGranted)
	if err != nil {
		return nil, storeError(err, "consent request")
	}
	now := m.clock.Now()
	out := make([]*models.ConsentRequest, 0, len(granted))
	for _, r := range granted {
		if !now.After(r.ExpiryDate) {
			out = append(out, r)
		}
	}
	return out, nil
}
