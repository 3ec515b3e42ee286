package models

// Audit event actions.
const (
	AuditActionRequestCreated = "consent_request_created"
	AuditActionRequestUpdated = "consent_request_updated"
	AuditActionRequestDeleted = "consent_request_deleted"
	AuditActionGranted        = "consent_granted"
	AuditActionDenied         = "consent_denied"
	AuditActionRevoked        = "consent_revoked"
	AuditActionExpired        = "consent_expired"
	AuditActionAccessAllowed  = "consent_access_allowed"
	AuditActionAccessDenied   = "consent_access_denied"
	AuditActionAccessRecorded = "consent_access_recorded"
)

// Audit event decisions.
const (
	AuditDecisionCreated  = "created"
	AuditDecisionUpdated  = "updated"
	AuditDecisionDeleted  = "deleted"
	AuditDecisionGranted  = "granted"
	AuditDecisionDenied   = "denied"
	AuditDecisionRevoked  = "revoked"
	AuditDecisionExpired  = "expired"
	AuditDecisionAllowed  = "allowed"
	AuditDecisionRecorded = "recorded"
)

// Audit event reasons.
const (
	AuditReasonPatientInitiated   = "patient_initiated"
	AuditReasonRequesterInitiated = "requester_initiated"
	AuditReasonExpirySweep        = "expiry_sweep"
	AuditReasonArtefactMissing    = "artefact_missing"
	AuditReasonArtefactInvalid    = "artefact_invalid"
	AuditReasonCategoryNotCovered = "category_not_covered"
	AuditReasonQuotaExhausted     = "quota_exhausted"
)
