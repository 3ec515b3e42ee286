package service_test

import (
	"time"

	"carebridge/internal/consent/models"
	"carebridge/pkg/testutil"
)

// TestConsentLifecycle walks one request from creation through quota
// exhaustion to revocation.
func (s *ServiceSuite) TestConsentLifecycle() {
	now := s.clock.Now()
	req, err := s.service.CreateRequest(s.ctx, models.NewConsentRequestParams{
		PatientID:   testutil.TestIDs.PatientID1,
		RequesterID: testutil.TestIDs.RequesterID,
		Purpose:     "CARE_MGMT",
		HIPID:       testutil.TestIDs.HIPID1,
		HIUID:       testutil.TestIDs.HIUID1,
		ExpiryDate:  now.Add(30 * 24 * time.Hour),
	})
	s.Require().NoError(err)

	art, err := s.service.Grant(s.ctx, req.ID, models.GrantParams{
		AccessMode:     models.AccessModeView,
		DateRangeFrom:  now,
		DateRangeTo:    now.Add(30 * 24 * time.Hour),
		Frequency:      &models.Frequency{Unit: models.FrequencyDay, Value: 1, Repeats: 3},
		DataCategories: testutil.Categories("OBSERVATION", "MEDICATION"),
	})
	s.Require().NoError(err)

	observation := []string{"OBSERVATION"}
	ok, err := s.service.CheckAccess(s.ctx, art.ID, observation)
	s.Require().NoError(err)
	s.True(ok)

	for range 3 {
		s.clock.Advance(time.Minute)
		_, err := s.service.RecordAccess(s.ctx, art.ID, observation, models.AccessContext{})
		s.Require().NoError(err)
	}

	ok, err = s.service.CheckAccess(s.ctx, art.ID, observation)
	s.Require().NoError(err)
	s.False(ok, "quota exhausted")

	s.Require().NoError(s.service.Revoke(s.ctx, art.ID))
	s.Equal(models.StatusRevoked, s.requestStatus(req))

	ok, err = s.service.CheckAccess(s.ctx, art.ID, observation)
	s.Require().NoError(err)
	s.False(ok, "revoked")

	s.Equal([]string{
		models.AuditActionRequestCreated,
		models.AuditActionGranted,
		models.AuditActionAccessAllowed,
		models.AuditActionAccessAllowed, models.AuditActionAccessRecorded,
		models.AuditActionAccessAllowed, models.AuditActionAccessRecorded,
		models.AuditActionAccessAllowed, models.AuditActionAccessRecorded,
		models.AuditActionAccessDenied,
		models.AuditActionRevoked,
		models.AuditActionAccessDenied,
	}, s.auditActions())
}
