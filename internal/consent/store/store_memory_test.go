package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"carebridge/internal/consent/models"
	id "carebridge/pkg/domain"
	"carebridge/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
	s.now = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) newRequest(patient id.PatientID, offset time.Duration) *models.ConsentRequest {
	r := &models.ConsentRequest{
		ID:          id.NewConsentRequestID(),
		PatientID:   patient,
		RequesterID: "dr-1",
		Purpose:     "CARE_MGMT",
		HIPID:       "hip-1",
		HIUID:       "hiu-1",
		RequestDate: s.now.Add(offset),
		ExpiryDate:  s.now.Add(offset + 48*time.Hour),
		Status:      models.StatusRequested,
	}
	s.Require().NoError(s.store.CreateRequest(s.ctx, r))
	return r
}

func (s *InMemoryStoreSuite) grant(r *models.ConsentRequest) *models.ConsentArtefact {
	r.Status = models.StatusGranted
	a := &models.ConsentArtefact{
		ID:               id.NewConsentArtefactID(),
		ConsentRequestID: r.ID,
		AccessMode:       models.AccessModeView,
		DateRangeFrom:    s.now,
		DateRangeTo:      s.now.Add(24 * time.Hour),
		DataCategories:   []models.DataCategory{{Category: "OBSERVATION"}},
		CreatedAt:        s.now,
	}
	s.Require().NoError(s.store.SaveGrant(s.ctx, r, a))
	return a
}

func (s *InMemoryStoreSuite) TestCreateAndFindReturnsCopies() {
	r := s.newRequest("p-1", 0)
	s.Equal(int64(1), r.Version)

	found, err := s.store.FindRequest(s.ctx, r.ID)
	s.Require().NoError(err)
	found.Purpose = "mutated"

	again, err := s.store.FindRequest(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal("CARE_MGMT", again.Purpose)

	_, err = s.store.FindRequest(s.ctx, id.NewConsentRequestID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestUpdateRequestRejectsStaleVersion() {
	r := s.newRequest("p-1", 0)
	first, _ := s.store.FindRequest(s.ctx, r.ID)
	second, _ := s.store.FindRequest(s.ctx, r.ID)

	first.Status = models.StatusDenied
	s.Require().NoError(s.store.UpdateRequest(s.ctx, first))
	s.Equal(int64(2), first.Version)

	second.Status = models.StatusGranted
	s.ErrorIs(s.store.UpdateRequest(s.ctx, second), sentinel.ErrConflict)

	stored, _ := s.store.FindRequest(s.ctx, r.ID)
	s.Equal(models.StatusDenied, stored.Status)
}

func (s *InMemoryStoreSuite) TestSaveGrantEnforcesOneArtefactPerRequest() {
	r := s.newRequest("p-1", 0)
	a := s.grant(r)

	dup := a.Clone()
	dup.ID = id.NewConsentArtefactID()
	s.ErrorIs(s.store.SaveGrant(s.ctx, r, dup), sentinel.ErrConflict)

	byReq, err := s.store.FindArtefactByRequest(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(a.ID, byReq.ID)
}

func (s *InMemoryStoreSuite) TestSaveGrantStaleRequestWritesNothing() {
	r := s.newRequest("p-1", 0)
	stale := r.Clone()
	r.Status = models.StatusDenied
	s.Require().NoError(s.store.UpdateRequest(s.ctx, r))

	stale.Status = models.StatusGranted
	a := &models.ConsentArtefact{ID: id.NewConsentArtefactID(), ConsentRequestID: r.ID}
	s.ErrorIs(s.store.SaveGrant(s.ctx, stale, a), sentinel.ErrConflict)

	_, err := s.store.FindArtefact(s.ctx, a.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestSaveRevocation() {
	r := s.newRequest("p-1", 0)
	a := s.grant(r)

	r.Status = models.StatusRevoked
	a.DateRangeTo = s.now.Add(time.Hour)
	s.Require().NoError(s.store.SaveRevocation(s.ctx, r, a))

	storedArt, _ := s.store.FindArtefact(s.ctx, a.ID)
	s.Equal(s.now.Add(time.Hour), storedArt.DateRangeTo)
	s.Equal(int64(2), storedArt.Version)
	storedReq, _ := s.store.FindRequest(s.ctx, r.ID)
	s.Equal(models.StatusRevoked, storedReq.Status)
}

func (s *InMemoryStoreSuite) TestDeleteRequest() {
	plain := s.newRequest("p-1", 0)
	s.Require().NoError(s.store.DeleteRequest(s.ctx, plain.ID))
	s.ErrorIs(s.store.DeleteRequest(s.ctx, plain.ID), sentinel.ErrNotFound)

	granted := s.newRequest("p-1", 0)
	s.grant(granted)
	s.ErrorIs(s.store.DeleteRequest(s.ctx, granted.ID), sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestListRequestsByPatientOrdersAndFilters() {
	later := s.newRequest("p-1", time.Hour)
	earlier := s.newRequest("p-1", 0)
	s.newRequest("p-2", 0)
	s.grant(later)

	all, err := s.store.ListRequestsByPatient(s.ctx, "p-1", nil)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(earlier.ID, all[0].ID)
	s.Equal(later.ID, all[1].ID)

	granted := models.StatusGranted
	filtered, err := s.store.ListRequestsByPatient(s.ctx, "p-1", &models.RequestFilter{Status: &granted})
	s.Require().NoError(err)
	s.Require().Len(filtered, 1)
	s.Equal(later.ID, filtered[0].ID)

	none, err := s.store.ListRequestsByPatient(s.ctx, "nobody", nil)
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}

func (s *InMemoryStoreSuite) TestListRequestsByHIP() {
	r := s.newRequest("p-1", 0)
	s.grant(r)
	s.newRequest("p-2", 0)

	got, err := s.store.ListRequestsByHIP(s.ctx, "hip-1", models.StatusGranted)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(r.ID, got[0].ID)
}

func (s *InMemoryStoreSuite) TestListExpiryCandidates() {
	requestedExpired := s.newRequest("p-1", -72*time.Hour)
	grantedWindowOver := s.newRequest("p-1", 0)
	s.grant(grantedWindowOver)
	s.newRequest("p-1", 0)
	denied := s.newRequest("p-1", -72*time.Hour)
	denied.Status = models.StatusDenied
	s.Require().NoError(s.store.UpdateRequest(s.ctx, denied))

	ids, err := s.store.ListExpiryCandidates(s.ctx, s.now.Add(25*time.Hour))
	s.Require().NoError(err)
	s.Equal([]id.ConsentRequestID{requestedExpired.ID, grantedWindowOver.ID}, ids)
}

func (s *InMemoryStoreSuite) TestAccessLedger() {
	r := s.newRequest("p-1", 0)
	a := s.grant(r)

	for i := range 3 {
		s.Require().NoError(s.store.AppendAccessRecord(s.ctx, &models.AccessRecord{
			ID:         id.AccessRecordID(string(rune('c' - i))),
			ArtefactID: a.ID,
			AccessedAt: s.now.Add(time.Duration(2-i) * time.Minute),
			Categories: []string{"OBSERVATION"},
		}))
	}
	n, err := s.store.CountAccessRecords(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(3, n)

	recs, err := s.store.ListAccessRecords(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Require().Len(recs, 3)
	s.True(recs[0].AccessedAt.Before(recs[2].AccessedAt))

	err = s.store.AppendAccessRecord(s.ctx, &models.AccessRecord{ArtefactID: id.NewConsentArtefactID()})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestListArtefactsByPatient() {
	a := s.grant(s.newRequest("p-1", 0))
	s.grant(s.newRequest("p-2", 0))

	arts, err := s.store.ListArtefactsByPatient(s.ctx, "p-1")
	s.Require().NoError(err)
	s.Require().Len(arts, 1)
	s.Equal(a.ID, arts[0].ID)
}
