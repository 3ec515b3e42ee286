package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"carebridge/internal/consent/models"
	id "carebridge/pkg/domain"
	"carebridge/pkg/platform/sentinel"
)

// Error contract shared by every store in this package:
//   - sentinel.ErrNotFound when the entity does not exist
//   - sentinel.ErrConflict when a versioned write loses a race or a
//     uniqueness rule (one artefact per request) would be broken
//   - wrapped errors for infrastructure failures
//
// Versioned writes compare the caller's Version with the stored one and,
// on success, increment Version on both the stored copy and the argument.

// InMemoryStore keeps consent requests, artefacts and access records in
// memory. Values are copied on the way in and out.
type InMemoryStore struct {
	mu                sync.RWMutex
	requests          map[id.ConsentRequestID]*models.ConsentRequest
	artefacts         map[id.ConsentArtefactID]*models.ConsentArtefact
	artefactByRequest map[id.ConsentRequestID]id.ConsentArtefactID
	accesses          map[id.ConsentArtefactID][]*models.AccessRecord
}

// New constructs an empty in-memory consent store.
func New() *InMemoryStore {
	return &InMemoryStore{
		requests:          make(map[id.ConsentRequestID]*models.ConsentRequest),
		artefacts:         make(map[id.ConsentArtefactID]*models.ConsentArtefact),
		artefactByRequest: make(map[id.ConsentRequestID]id.ConsentArtefactID),
		accesses:          make(map[id.ConsentArtefactID][]*models.AccessRecord),
	}
}

func (s *InMemoryStore) CreateRequest(_ context.Context, r *models.ConsentRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[r.ID]; exists {
		return sentinel.ErrConflict
	}
	r.Version = 1
	s.requests[r.ID] = r.Clone()
	return nil
}

func (s *InMemoryStore) FindRequest(_ context.Context, requestID id.ConsentRequestID) (*models.ConsentRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *InMemoryStore) UpdateRequest(_ context.Context, r *models.ConsentRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkRequestVersionLocked(r); err != nil {
		return err
	}
	s.putRequestLocked(r)
	return nil
}

func (s *InMemoryStore) DeleteRequest(_ context.Context, requestID id.ConsentRequestID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[requestID]; !ok {
		return sentinel.ErrNotFound
	}
	if _, granted := s.artefactByRequest[requestID]; granted {
		return sentinel.ErrConflict
	}
	delete(s.requests, requestID)
	return nil
}

func (s *InMemoryStore) ListRequestsByPatient(_ context.Context, patientID id.PatientID, filter *models.RequestFilter) ([]*models.ConsentRequest, error) {
	return s.listRequests(func(r *models.ConsentRequest) bool {
		if r.PatientID != patientID {
			return false
		}
		return filter == nil || filter.Status == nil || r.Status == *filter.Status
	}), nil
}

func (s *InMemoryStore) ListRequestsByHIP(_ context.Context, hipID id.HIPID, status models.Status) ([]*models.ConsentRequest, error) {
	return s.listRequests(func(r *models.ConsentRequest) bool {
		return r.HIPID == hipID && r.Status == status
	}), nil
}

func (s *InMemoryStore) listRequests(match func(*models.ConsentRequest) bool) []*models.ConsentRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.ConsentRequest, 0)
	for _, r := range s.requests {
		if match(r) {
			out = append(out, r.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *models.ConsentRequest) int {
		return cmp.Or(a.RequestDate.Compare(b.RequestDate), cmp.Compare(a.ID.String(), b.ID.String()))
	})
	return out
}

// ListExpiryCandidates returns open requests whose expiry date, or whose
// artefact's date range, ended before now.
func (s *InMemoryStore) ListExpiryCandidates(_ context.Context, now time.Time) ([]id.ConsentRequestID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var due []*models.ConsentRequest
	for reqID, r := range s.requests {
		var art *models.ConsentArtefact
		if artID, ok := s.artefactByRequest[reqID]; ok {
			art = s.artefacts[artID]
		}
		if models.IsDueForExpiry(r, art, now) {
			due = append(due, r)
		}
	}
	slices.SortFunc(due, func(a, b *models.ConsentRequest) int {
		return cmp.Or(a.ExpiryDate.Compare(b.ExpiryDate), cmp.Compare(a.ID.String(), b.ID.String()))
	})
	ids := make([]id.ConsentRequestID, len(due))
	for i, r := range due {
		ids[i] = r.ID
	}
	return ids, nil
}

// SaveGrant stores the updated request and its new artefact as one unit.
func (s *InMemoryStore) SaveGrant(_ context.Context, r *models.ConsentRequest, a *models.ConsentArtefact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkRequestVersionLocked(r); err != nil {
		return err
	}
	if _, exists := s.artefactByRequest[a.ConsentRequestID]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.artefacts[a.ID]; exists {
		return sentinel.ErrConflict
	}
	s.putRequestLocked(r)
	a.Version = 1
	s.artefacts[a.ID] = a.Clone()
	s.artefactByRequest[a.ConsentRequestID] = a.ID
	return nil
}

// SaveRevocation stores the revoked request and truncated artefact as one unit.
func (s *InMemoryStore) SaveRevocation(_ context.Context, r *models.ConsentRequest, a *models.ConsentArtefact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkRequestVersionLocked(r); err != nil {
		return err
	}
	stored, ok := s.artefacts[a.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if stored.Version != a.Version {
		return sentinel.ErrConflict
	}
	s.putRequestLocked(r)
	a.Version++
	s.artefacts[a.ID] = a.Clone()
	return nil
}

func (s *InMemoryStore) FindArtefact(_ context.Context, artefactID id.ConsentArtefactID) (*models.ConsentArtefact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.artefacts[artefactID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return a.Clone(), nil
}

func (s *InMemoryStore) FindArtefactByRequest(_ context.Context, requestID id.ConsentRequestID) (*models.ConsentArtefact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	artID, ok := s.artefactByRequest[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.artefacts[artID].Clone(), nil
}

func (s *InMemoryStore) ListArtefactsByPatient(_ context.Context, patientID id.PatientID) ([]*models.ConsentArtefact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.ConsentArtefact, 0)
	for reqID, artID := range s.artefactByRequest {
		if r := s.requests[reqID]; r != nil && r.PatientID == patientID {
			out = append(out, s.artefacts[artID].Clone())
		}
	}
	slices.SortFunc(out, func(a, b *models.ConsentArtefact) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID.String(), b.ID.String()))
	})
	return out, nil
}

func (s *InMemoryStore) AppendAccessRecord(_ context.Context, rec *models.AccessRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.artefacts[rec.ArtefactID]; !ok {
		return sentinel.ErrNotFound
	}
	c := *rec
	c.Categories = slices.Clone(rec.Categories)
	s.accesses[rec.ArtefactID] = append(s.accesses[rec.ArtefactID], &c)
	return nil
}

func (s *InMemoryStore) CountAccessRecords(_ context.Context, artefactID id.ConsentArtefactID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accesses[artefactID]), nil
}

// ListAccessRecords returns the ledger for an artefact, oldest first.
func (s *InMemoryStore) ListAccessRecords(_ context.Context, artefactID id.ConsentArtefactID) ([]*models.AccessRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.accesses[artefactID]
	out := make([]*models.AccessRecord, len(recs))
	for i, r := range recs {
		c := *r
		c.Categories = slices.Clone(r.Categories)
		out[i] = &c
	}
	slices.SortStableFunc(out, func(a, b *models.AccessRecord) int {
		return a.AccessedAt.Compare(b.AccessedAt)
	})
	return out, nil
}

func (s *InMemoryStore) checkRequestVersionLocked(r *models.ConsentRequest) error {
	stored, ok := s.requests[r.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if stored.Version != r.Version {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *InMemoryStore) putRequestLocked(r *models.ConsentRequest) {
	r.Version++
	s.requests[r.ID] = r.Clone()
}
