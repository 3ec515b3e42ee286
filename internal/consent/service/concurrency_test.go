package service_test

import (
	"time"

	"carebridge/internal/consent/models"
	"carebridge/pkg/testutil"
)

func (s *ServiceSuite) TestConcurrentGrantHasOneWinner() {
	const attempts = 20
	r := s.createRequest(30 * 24 * time.Hour)
	now := s.clock.Now()
	params := testutil.NewGrantParams(now, now.Add(time.Hour), 0, "OBSERVATION")

	res := testutil.RunConcurrent(attempts, func(int) error {
		_, err := s.service.Grant(s.ctx, r.ID, params)
		return err
	})

	s.Equal(int32(1), res.Successes)
	s.Equal(int32(attempts-1), res.StateTransitions)
	s.Zero(res.Errors)

	a, err := s.store.FindArtefactByRequest(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(r.ID, a.ConsentRequestID)
}

func (s *ServiceSuite) TestConcurrentRecordAccessRespectsQuota() {
	const (
		repeats  = 5
		attempts = 40
	)
	_, a := s.grant(time.Hour, repeats, "OBSERVATION")

	res := testutil.RunConcurrent(attempts, func(int) error {
		_, err := s.service.RecordAccess(s.ctx, a.ID, []string{"OBSERVATION"}, models.AccessContext{})
		return err
	})

	s.Equal(int32(repeats), res.Successes)
	s.Equal(int32(attempts-repeats), res.Validations)

	n, err := s.store.CountAccessRecords(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(repeats, n)
}

// Revoke and sweep racing on the same grant: exactly one transition lands.
// A revoke that loses inside the lock is a no-op; one that starts after the
// sweep committed sees an invalid artefact.
func (s *ServiceSuite) TestRevokeRacingSweep() {
	r, a := s.grant(time.Hour, 0, "OBSERVATION")
	sweepAt := s.clock.Now().Add(2 * time.Hour)

	res := testutil.RunConcurrent(2, func(idx int) error {
		if idx == 0 {
			return s.service.Revoke(s.ctx, a.ID)
		}
		_, err := s.service.Sweep(s.ctx, sweepAt)
		return err
	})

	s.Equal(int32(2), res.Successes+res.Validations)
	s.Zero(res.Errors)
	status := s.requestStatus(r)
	s.True(status == models.StatusRevoked || status == models.StatusExpired, "got %s", status)
}

func (s *ServiceSuite) TestConcurrentSweepsCountOnce() {
	for range 10 {
		s.createRequest(time.Hour)
	}
	at := s.clock.Now().Add(2 * time.Hour)

	var total int
	counts := make([]int, 4)
	res := testutil.RunConcurrent(len(counts), func(idx int) error {
		n, err := s.service.Sweep(s.ctx, at)
		counts[idx] = n
		return err
	})
	s.Equal(int32(len(counts)), res.Successes)
	for _, n := range counts {
		total += n
	}
	s.Equal(10, total)
}
