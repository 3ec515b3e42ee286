package service_test

import (
	"time"

	"carebridge/internal/consent/models"
	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/testutil"
)

func (s *ServiceSuite) TestGrant() {
	s.Run("creates a signed artefact and flips the request", func() {
		r := s.createRequest(30 * 24 * time.Hour)
		now := s.clock.Now()

		a, err := s.service.Grant(s.ctx, r.ID, testutil.NewGrantParams(now, now.Add(7*24*time.Hour), 3, "OBSERVATION", "MEDICATION"))
		s.Require().NoError(err)
		s.Equal(r.ID, a.ConsentRequestID)
		s.NotEmpty(a.Signature)
		s.Equal(now, a.SignedAt)
		s.Equal([]string{"OBSERVATION", "MEDICATION"}, a.CategoryNames())
		s.Require().NotNil(a.Frequency)
		s.Equal(3, a.Frequency.Repeats)
		s.Equal(models.StatusGranted, s.requestStatus(r))

		valid, err := s.service.VerifySignature(s.ctx, a.ID)
		s.Require().NoError(err)
		s.True(valid)
	})

	s.Run("invalid parameters are validation errors", func() {
		r := s.createRequest(time.Hour)
		now := s.clock.Now()
		cases := map[string]models.GrantParams{
			"reversed range":    testutil.NewGrantParams(now.Add(time.Hour), now, 0, "OBSERVATION"),
			"no categories":     testutil.NewGrantParams(now, now.Add(time.Hour), 0),
			"duplicate":         testutil.NewGrantParams(now, now.Add(time.Hour), 0, "OBSERVATION", "OBSERVATION"),
			"zero repeats":      withFrequency(testutil.NewGrantParams(now, now.Add(time.Hour), 0, "OBSERVATION"), models.Frequency{Unit: models.FrequencyDay, Value: 1}),
			"bad access mode":   withMode(testutil.NewGrantParams(now, now.Add(time.Hour), 0, "OBSERVATION"), "DELETE"),
			"missing date from": withFrom(testutil.NewGrantParams(now, now.Add(time.Hour), 0, "OBSERVATION"), time.Time{}),
		}
		for name, p := range cases {
			_, err := s.service.Grant(s.ctx, r.ID, p)
			s.Require().Error(err, name)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), name)
		}
		s.Equal(models.StatusRequested, s.requestStatus(r))
	})

	s.Run("single-instant range is allowed", func() {
		r := s.createRequest(time.Hour)
		now := s.clock.Now()
		_, err := s.service.Grant(s.ctx, r.ID, testutil.NewGrantParams(now, now, 0, "OBSERVATION"))
		s.NoError(err)
	})

	s.Run("missing request is not found", func() {
		now := s.clock.Now()
		_, err := s.service.Grant(s.ctx, testutil.TestIDs.RequestID2, testutil.NewGrantParams(now, now.Add(time.Hour), 0, "OBSERVATION"))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("REQUESTED past its expiry cannot be granted", func() {
		r := s.createRequest(time.Hour)
		s.clock.Advance(time.Hour + time.Second)
		now := s.clock.Now()
		_, err := s.service.Grant(s.ctx, r.ID, testutil.NewGrantParams(now, now.Add(time.Hour), 0, "OBSERVATION"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})
}

// Granting fails with an invalid state transition from every state other
// than REQUESTED.
func (s *ServiceSuite) TestGrantFromEveryOtherState() {
	now := s.clock.Now()
	params := testutil.NewGrantParams(now, now.Add(time.Hour), 0, "OBSERVATION")

	granted, _ := s.grant(24*time.Hour, 0, "OBSERVATION")

	denied := s.createRequest(time.Hour)
	s.Require().NoError(s.service.DenyRequest(s.ctx, denied.ID))

	revoked, a := s.grant(time.Hour, 0, "OBSERVATION")
	s.Require().NoError(s.service.Revoke(s.ctx, a.ID))

	expired := s.createRequest(time.Hour)
	s.clock.Advance(2 * time.Hour)
	_, err := s.service.Sweep(s.ctx, s.clock.Now())
	s.Require().NoError(err)
	s.Require().Equal(models.StatusExpired, s.requestStatus(expired))

	for _, r := range []*models.ConsentRequest{granted, denied, revoked, expired} {
		_, err := s.service.Grant(s.ctx, r.ID, params)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition), "from %s", s.requestStatus(r))
	}
}

func (s *ServiceSuite) TestRevoke() {
	s.Run("truncates the range and revokes the request", func() {
		r, a := s.grant(7*24*time.Hour, 0, "OBSERVATION")
		s.clock.Advance(time.Hour)
		revokedAt := s.clock.Now()

		s.Require().NoError(s.service.Revoke(s.ctx, a.ID))
		s.Equal(models.StatusRevoked, s.requestStatus(r))

		got, err := s.service.GetArtefact(s.ctx, a.ID)
		s.Require().NoError(err)
		s.Equal(revokedAt, got.DateRangeTo)
		s.Equal(a.DateRangeFrom, got.DateRangeFrom)
		s.Contains(s.auditActions(), models.AuditActionRevoked)
	})

	s.Run("elapsed date range is a validation error", func() {
		r, a := s.grant(time.Hour, 0, "OBSERVATION")
		s.clock.Advance(time.Hour + time.Second)

		err := s.service.Revoke(s.ctx, a.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(models.StatusGranted, s.requestStatus(r))
	})

	s.Run("revoking twice is a validation error", func() {
		_, a := s.grant(time.Hour, 0, "OBSERVATION")
		s.Require().NoError(s.service.Revoke(s.ctx, a.ID))
		err := s.service.Revoke(s.ctx, a.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("revoking after the sweep expired the request is a validation error", func() {
		r, a := s.grant(60*24*time.Hour, 0, "OBSERVATION")
		s.clock.Advance(31 * 24 * time.Hour)
		n, err := s.service.Sweep(s.ctx, s.clock.Now())
		s.Require().NoError(err)
		s.Require().Positive(n)
		s.Require().Equal(models.StatusExpired, s.requestStatus(r))

		err = s.service.Revoke(s.ctx, a.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(models.StatusExpired, s.requestStatus(r))
	})

	s.Run("missing artefact is not found", func() {
		err := s.service.Revoke(s.ctx, testutil.TestIDs.ArtefactID2)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestVerifySignatureDetectsTampering() {
	_, a := s.grant(time.Hour, 0, "OBSERVATION")

	stored, err := s.store.FindArtefact(s.ctx, a.ID)
	s.Require().NoError(err)
	r, err := s.store.FindRequest(s.ctx, a.ConsentRequestID)
	s.Require().NoError(err)

	// Re-sign with a different signing time and write it back under the
	// request's version.
	forged := stored.Clone()
	forged.Signature, err = s.signer.Sign(s.ctx, models.PayloadFor(r, stored.SignedAt.Add(time.Second)))
	s.Require().NoError(err)
	s.Require().NoError(s.store.SaveRevocation(s.ctx, r, forged))

	valid, err := s.service.VerifySignature(s.ctx, a.ID)
	s.Require().NoError(err)
	s.False(valid)
}

func (s *ServiceSuite) TestListValidArtefactsByPatient() {
	_, live := s.grant(7*24*time.Hour, 0, "OBSERVATION")
	_, revoked := s.grant(7*24*time.Hour, 0, "OBSERVATION")
	s.Require().NoError(s.service.Revoke(s.ctx, revoked.ID))
	_, short := s.grant(time.Minute, 0, "OBSERVATION")

	s.clock.Advance(time.Hour)

	got, err := s.service.ListValidArtefactsByPatient(s.ctx, testutil.TestIDs.PatientID1)
	s.Require().NoError(err)
	ids := make([]string, 0, len(got))
	for _, a := range got {
		ids = append(ids, a.ID.String())
	}
	s.Equal([]string{live.ID.String()}, ids)
	s.NotContains(ids, short.ID.String())
}

func withFrequency(p models.GrantParams, f models.Frequency) models.GrantParams {
	p.Frequency = &f
	return p
}

func withMode(p models.GrantParams, mode models.AccessMode) models.GrantParams {
	p.AccessMode = mode
	return p
}

func withFrom(p models.GrantParams, from time.Time) models.GrantParams {
	p.DateRangeFrom = from
	return p
}
