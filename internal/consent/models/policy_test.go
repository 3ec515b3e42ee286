package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	id "carebridge/pkg/domain"
)

type PolicySuite struct {
	suite.Suite
	now     time.Time
	request *ConsentRequest
	art     *ConsentArtefact
}

func TestPolicySuite(t *testing.T) {
	suite.Run(t, new(PolicySuite))
}

func (s *PolicySuite) SetupTest() {
	s.now = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	s.request = &ConsentRequest{
		ID:         id.NewConsentRequestID(),
		Status:     StatusGranted,
		ExpiryDate: s.now.Add(24 * time.Hour),
	}
	s.art = &ConsentArtefact{
		ID:               id.NewConsentArtefactID(),
		ConsentRequestID: s.request.ID,
		DateRangeFrom:    s.now.Add(-time.Hour),
		DateRangeTo:      s.now.Add(time.Hour),
		DataCategories:   []DataCategory{{Category: "OBSERVATION"}, {Category: "MEDICATION"}},
	}
}

func (s *PolicySuite) TestCanBeGranted() {
	s.request.Status = StatusRequested
	s.True(CanBeGranted(s.request, s.now))
	s.True(CanBeGranted(s.request, s.request.ExpiryDate), "expiry instant is still grantable")
	s.False(CanBeGranted(s.request, s.request.ExpiryDate.Add(time.Nanosecond)))

	for _, st := range []Status{StatusGranted, StatusDenied, StatusRevoked, StatusExpired} {
		s.request.Status = st
		s.False(CanBeGranted(s.request, s.now), st)
	}
}

func (s *PolicySuite) TestCanBeRevoked() {
	s.True(CanBeRevoked(s.request, s.now))
	s.False(CanBeRevoked(s.request, s.request.ExpiryDate.Add(time.Second)))
	s.request.Status = StatusRequested
	s.False(CanBeRevoked(s.request, s.now))
}

func (s *PolicySuite) TestIsValidIsInclusiveAtBothEnds() {
	from, to := s.art.DateRangeFrom, s.art.DateRangeTo

	s.True(IsValid(s.art, s.request, from))
	s.True(IsValid(s.art, s.request, to))
	s.False(IsValid(s.art, s.request, from.Add(-time.Nanosecond)))
	s.False(IsValid(s.art, s.request, to.Add(time.Nanosecond)))
}

func (s *PolicySuite) TestIsValidRequiresGrantedParent() {
	for _, st := range []Status{StatusRequested, StatusDenied, StatusRevoked, StatusExpired} {
		s.request.Status = st
		s.False(IsValid(s.art, s.request, s.now), st)
	}
	s.request.Status = StatusGranted
	s.False(IsValid(s.art, nil, s.now))

	other := s.request.Clone()
	other.ID = id.NewConsentRequestID()
	s.False(IsValid(s.art, other, s.now), "parent must be the artefact's own request")
}

func (s *PolicySuite) TestAllowsAllIsAllOrNothing() {
	s.True(AllowsAll(s.art, []string{"OBSERVATION"}))
	s.True(AllowsAll(s.art, []string{"MEDICATION", "OBSERVATION"}))

	s.art.DataCategories = []DataCategory{{Category: "OBSERVATION"}}
	s.False(AllowsAll(s.art, []string{"OBSERVATION", "MEDICATION"}))
	s.False(AllowsAll(s.art, nil))
	s.False(AllowsAll(nil, []string{"OBSERVATION"}))
}

func (s *PolicySuite) TestRemainingAccess() {
	s.Nil(RemainingAccess(s.art, 100), "no frequency means unlimited")
	s.True(HasQuota(s.art, 100))

	s.art.Frequency = &Frequency{Unit: FrequencyDay, Value: 1, Repeats: 3}
	s.Equal(3, *RemainingAccess(s.art, 0))
	s.Equal(1, *RemainingAccess(s.art, 2))
	s.Equal(0, *RemainingAccess(s.art, 3))
	s.Equal(0, *RemainingAccess(s.art, 7), "never negative")
	s.True(HasQuota(s.art, 2))
	s.False(HasQuota(s.art, 3))
}

func (s *PolicySuite) TestIsDueForExpiry() {
	s.False(IsDueForExpiry(s.request, s.art, s.now))

	s.True(IsDueForExpiry(s.request, s.art, s.art.DateRangeTo.Add(time.Second)), "artefact window lapsed")
	s.True(IsDueForExpiry(s.request, nil, s.request.ExpiryDate.Add(time.Second)))

	s.request.Status = StatusRequested
	s.False(IsDueForExpiry(s.request, nil, s.now))
	s.True(IsDueForExpiry(s.request, nil, s.request.ExpiryDate.Add(time.Second)))

	for _, st := range []Status{StatusDenied, StatusRevoked, StatusExpired} {
		s.request.Status = st
		s.False(IsDueForExpiry(s.request, s.art, s.request.ExpiryDate.Add(time.Hour)), st)
	}
}

func TestStatusTransitions(t *testing.T) {
	allowed := map[Status][]Status{
		StatusRequested: {StatusGranted, StatusDenied, StatusExpired},
		StatusGranted:   {StatusRevoked, StatusExpired},
	}
	all := []Status{StatusRequested, StatusGranted, StatusDenied, StatusRevoked, StatusExpired}
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.True(t, StatusDenied.IsTerminal())
	assert.True(t, StatusRevoked.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
	assert.False(t, StatusRequested.IsTerminal())
	assert.False(t, Status("BOGUS").IsTerminal())
}
