package service_test

import (
	"time"

	"carebridge/internal/consent/models"
	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/requestcontext"
	"carebridge/pkg/testutil"
)

func (s *ServiceSuite) TestCheckAccess() {
	_, a := s.grant(7*24*time.Hour, 0, "OBSERVATION")

	cases := []struct {
		name       string
		categories []string
		want       bool
	}{
		{"covered category", []string{"OBSERVATION"}, true},
		{"one uncovered category denies the whole set", []string{"OBSERVATION", "MEDICATION"}, false},
		{"uncovered category", []string{"MEDICATION"}, false},
		{"empty set", nil, false},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			ok, err := s.service.CheckAccess(s.ctx, a.ID, tc.categories)
			s.Require().NoError(err)
			s.Equal(tc.want, ok)
		})
	}

	s.Run("missing artefact is a denial, not an error", func() {
		ok, err := s.service.CheckAccess(s.ctx, testutil.TestIDs.ArtefactID2, []string{"OBSERVATION"})
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("every decision is audited", func() {
		s.Contains(s.auditActions(), models.AuditActionAccessAllowed)
		s.Contains(s.auditActions(), models.AuditActionAccessDenied)
	})
}

// Validity is the closed interval [dateRangeFrom, dateRangeTo].
func (s *ServiceSuite) TestCheckAccessDateRangeBoundaries() {
	r := s.createRequest(30 * 24 * time.Hour)
	from := s.clock.Now().Add(time.Hour)
	to := from.Add(24 * time.Hour)
	a, err := s.service.Grant(s.ctx, r.ID, testutil.NewGrantParams(from, to, 0, "OBSERVATION"))
	s.Require().NoError(err)

	at := func(t time.Time) bool {
		s.clock.Set(t)
		ok, err := s.service.CheckAccess(s.ctx, a.ID, []string{"OBSERVATION"})
		s.Require().NoError(err)
		return ok
	}

	s.False(at(from.Add(-time.Microsecond)), "just before from")
	s.True(at(from), "at from")
	s.True(at(to), "at to")
	s.False(at(to.Add(time.Microsecond)), "just after to")
}

func (s *ServiceSuite) TestRecordAccessQuota() {
	const repeats = 3
	_, a := s.grant(7*24*time.Hour, repeats, "OBSERVATION")
	cats := []string{"OBSERVATION"}

	remaining, err := s.service.RemainingAccess(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Require().NotNil(remaining)
	s.Equal(repeats, *remaining)

	for i := range repeats {
		_, err := s.service.RecordAccess(s.ctx, a.ID, cats, models.AccessContext{})
		s.Require().NoError(err, "access %d", i+1)
	}

	ok, err := s.service.CheckAccess(s.ctx, a.ID, cats)
	s.Require().NoError(err)
	s.False(ok, "quota exhausted while the range is still open")

	_, err = s.service.RecordAccess(s.ctx, a.ID, cats, models.AccessContext{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	remaining, err = s.service.RemainingAccess(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(0, *remaining)

	recs, err := s.service.ListAccessRecords(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Len(recs, repeats)
	for i := 1; i < len(recs); i++ {
		s.Less(recs[i-1].ID.String(), recs[i].ID.String(), "ledger ids sort by creation")
	}
}

func (s *ServiceSuite) TestRecordAccessWithoutQuota() {
	_, a := s.grant(7*24*time.Hour, 0, "OBSERVATION")

	remaining, err := s.service.RemainingAccess(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Nil(remaining, "nil means unlimited")

	for range 10 {
		_, err := s.service.RecordAccess(s.ctx, a.ID, []string{"OBSERVATION"}, models.AccessContext{})
		s.Require().NoError(err)
	}
}

func (s *ServiceSuite) TestRecordAccessRejections() {
	s.Run("uncovered category", func() {
		_, a := s.grant(time.Hour, 0, "OBSERVATION")
		_, err := s.service.RecordAccess(s.ctx, a.ID, []string{"MEDICATION"}, models.AccessContext{})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("revoked artefact", func() {
		_, a := s.grant(time.Hour, 0, "OBSERVATION")
		s.Require().NoError(s.service.Revoke(s.ctx, a.ID))
		_, err := s.service.RecordAccess(s.ctx, a.ID, []string{"OBSERVATION"}, models.AccessContext{})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing artefact", func() {
		_, err := s.service.RecordAccess(s.ctx, testutil.TestIDs.ArtefactID2, []string{"OBSERVATION"}, models.AccessContext{})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("remaining and ledger of a missing artefact", func() {
		_, err := s.service.RemainingAccess(s.ctx, testutil.TestIDs.ArtefactID2)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		_, err = s.service.ListAccessRecords(s.ctx, testutil.TestIDs.ArtefactID2)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestRecordAccessCapturesClientMetadata() {
	_, a := s.grant(time.Hour, 0, "OBSERVATION")
	ctx := requestcontext.WithClientMetadata(s.ctx, "203.0.113.77",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	ctx = requestcontext.WithDeviceID(ctx, "device-42")

	rec, err := s.service.RecordAccess(ctx, a.ID, []string{"OBSERVATION"}, models.AccessContext{
		AccessedBy: "dr-lee",
		Purpose:    "CARE_MGMT",
	})
	s.Require().NoError(err)
	s.Equal("dr-lee", rec.AccessedBy)
	s.Equal("203.0.113.0", rec.ClientIP)
	s.Equal("device-42", rec.DeviceID)
	s.Contains(rec.ClientDescription, "Chrome on Windows")
	s.Equal(s.clock.Now(), rec.AccessedAt)
	s.Equal(a.ID, rec.ArtefactID)
}

func (s *ServiceSuite) TestValidateAndRecord() {
	_, a := s.grant(time.Hour, 1, "OBSERVATION")
	cats := []string{"OBSERVATION"}

	d, rec, err := s.service.ValidateAndRecord(s.ctx, a.ID, cats, models.AccessContext{})
	s.Require().NoError(err)
	s.True(d.Allowed)
	s.Require().NotNil(rec)
	s.Require().NotNil(d.Remaining)
	s.Equal(0, *d.Remaining)

	d, rec, err = s.service.ValidateAndRecord(s.ctx, a.ID, cats, models.AccessContext{})
	s.Require().NoError(err)
	s.False(d.Allowed)
	s.Equal(models.AuditReasonQuotaExhausted, d.Reason)
	s.Nil(rec)

	d, _, err = s.service.ValidateAndRecord(s.ctx, testutil.TestIDs.ArtefactID2, cats, models.AccessContext{})
	s.Require().NoError(err)
	s.False(d.Allowed)
	s.Equal(models.AuditReasonArtefactMissing, d.Reason)
}
