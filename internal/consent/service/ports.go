package service

import (
	"context"
	"time"

	"carebridge/internal/audit"
	"carebridge/internal/consent/models"
	id "carebridge/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// Store defines the persistence interface for consent state.
// Error Contract:
//   - Find*/Delete* return sentinel.ErrNotFound when no record exists
//   - versioned writes (UpdateRequest, SaveGrant, SaveRevocation) return
//     sentinel.ErrConflict on a stale Version and bump Version on success
//   - SaveGrant returns sentinel.ErrConflict if the request already has an artefact
//   - DeleteRequest returns sentinel.ErrConflict if the request has an artefact
//   - AppendAccessRecord returns sentinel.ErrNotFound for an unknown artefact
type Store interface {
	CreateRequest(ctx context.Context, r *models.ConsentRequest) error
	FindRequest(ctx context.Context, requestID id.ConsentRequestID) (*models.ConsentRequest, error)
	UpdateRequest(ctx context.Context, r *models.ConsentRequest) error
	DeleteRequest(ctx context.Context, requestID id.ConsentRequestID) error
	ListRequestsByPatient(ctx context.Context, patientID id.PatientID, filter *models.RequestFilter) ([]*models.ConsentRequest, error)
	ListRequestsByHIP(ctx context.Context, hipID id.HIPID, status models.Status) ([]*models.ConsentRequest, error)
	ListExpiryCandidates(ctx context.Context, now time.Time) ([]id.ConsentRequestID, error)

	SaveGrant(ctx context.Context, r *models.ConsentRequest, a *models.ConsentArtefact) error
	SaveRevocation(ctx context.Context, r *models.ConsentRequest, a *models.ConsentArtefact) error
	FindArtefact(ctx context.Context, artefactID id.ConsentArtefactID) (*models.ConsentArtefact, error)
	FindArtefactByRequest(ctx context.Context, requestID id.ConsentRequestID) (*models.ConsentArtefact, error)
	ListArtefactsByPatient(ctx context.Context, patientID id.PatientID) ([]*models.ConsentArtefact, error)

	AppendAccessRecord(ctx context.Context, rec *models.AccessRecord) error
	CountAccessRecords(ctx context.Context, artefactID id.ConsentArtefactID) (int, error)
	ListAccessRecords(ctx context.Context, artefactID id.ConsentArtefactID) ([]*models.AccessRecord, error)
}

// StoreTx provides the per-request transactional boundary. fn runs with
// exclusive access to requestID (and its artefact and ledger) against the
// Store it is handed; implementations may wrap a database transaction with
// a row lock or, in memory, a sharded mutex.
type StoreTx interface {
	RunInTx(ctx context.Context, requestID id.ConsentRequestID, fn func(ctx context.Context, s Store) error) error
}

// PatientDirectory resolves patient identities.
type PatientDirectory interface {
	Exists(ctx context.Context, patientID id.PatientID) (bool, error)
}

// SignatureProvider signs and verifies artefact payloads. The core treats
// signatures as opaque strings.
type SignatureProvider interface {
	Sign(ctx context.Context, payload models.SignaturePayload) (string, error)
	Verify(ctx context.Context, payload models.SignaturePayload, signature string) (bool, error)
}

// Auditor records audit events.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}
