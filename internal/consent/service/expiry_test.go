package service_test

import (
	"time"

	"carebridge/internal/consent/models"
	"carebridge/pkg/testutil"
)

func (s *ServiceSuite) TestSweepIsIdempotent() {
	staleRequest := s.createRequest(time.Hour)
	lapsedGrant, _ := s.grant(2*time.Hour, 0, "OBSERVATION")
	liveRequest := s.createRequest(30 * 24 * time.Hour)
	liveGrant, _ := s.grant(7*24*time.Hour, 0, "OBSERVATION")

	s.clock.Advance(3 * time.Hour)
	now := s.clock.Now()

	n, err := s.service.Sweep(s.ctx, now)
	s.Require().NoError(err)
	s.Equal(2, n)

	n, err = s.service.Sweep(s.ctx, now)
	s.Require().NoError(err)
	s.Zero(n, "second run finds nothing")

	s.Equal(models.StatusExpired, s.requestStatus(staleRequest))
	s.Equal(models.StatusExpired, s.requestStatus(lapsedGrant))
	s.Equal(models.StatusRequested, s.requestStatus(liveRequest))
	s.Equal(models.StatusGranted, s.requestStatus(liveGrant))
}

func (s *ServiceSuite) TestSweepLeavesTerminalStatesAlone() {
	denied := s.createRequest(time.Hour)
	s.Require().NoError(s.service.DenyRequest(s.ctx, denied.ID))
	revoked, a := s.grant(time.Hour, 0, "OBSERVATION")
	s.Require().NoError(s.service.Revoke(s.ctx, a.ID))

	s.clock.Advance(40 * 24 * time.Hour)
	n, err := s.service.Sweep(s.ctx, s.clock.Now())
	s.Require().NoError(err)
	s.Zero(n)
	s.Equal(models.StatusDenied, s.requestStatus(denied))
	s.Equal(models.StatusRevoked, s.requestStatus(revoked))
}

func (s *ServiceSuite) TestSweepUsesGivenTime() {
	r := s.createRequest(time.Hour)

	n, err := s.service.Sweep(s.ctx, s.clock.Now().Add(30*time.Minute))
	s.Require().NoError(err)
	s.Zero(n)

	n, err = s.service.Sweep(s.ctx, s.clock.Now().Add(2*time.Hour))
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Equal(models.StatusExpired, s.requestStatus(r))
	s.Contains(s.auditActions(), models.AuditActionExpired)
}

func (s *ServiceSuite) TestExpiredGrantDeniesAccess() {
	_, a := s.grant(time.Hour, 0, "OBSERVATION")
	s.clock.Advance(2 * time.Hour)
	_, err := s.service.Sweep(s.ctx, s.clock.Now())
	s.Require().NoError(err)

	// Moving the clock back inside the range does not revive the grant.
	s.clock.Set(testutil.RefTime.Add(30 * time.Minute))
	ok, err := s.service.CheckAccess(s.ctx, a.ID, []string{"OBSERVATION"})
	s.Require().NoError(err)
	s.False(ok)
}
