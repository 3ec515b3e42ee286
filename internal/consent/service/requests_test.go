package service_test

import (
	"fmt"
	"time"

	"carebridge/internal/consent/models"
	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/platform/validation"
	"carebridge/pkg/testutil"
)

func (s *ServiceSuite) TestCreateRequest() {
	s.Run("opens a REQUESTED request dated now", func() {
		r := s.createRequest(24 * time.Hour)
		s.Equal(models.StatusRequested, r.Status)
		s.Equal(s.clock.Now(), r.RequestDate)
		s.Equal(testutil.TestIDs.PatientID1, r.PatientID)
		s.Contains(s.auditActions(), models.AuditActionRequestCreated)
	})

	s.Run("expiry at or before now is a validation error", func() {
		for _, ttl := range []time.Duration{0, -time.Second, -24 * time.Hour} {
			_, err := s.service.CreateRequest(s.ctx, testutil.NewCreateParams(testutil.TestIDs.PatientID1, s.clock.Now(), ttl))
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "ttl %s", ttl)
		}
	})

	s.Run("unknown patient is not found", func() {
		_, err := s.service.CreateRequest(s.ctx, testutil.NewCreateParams("patient-unknown@carebridge", s.clock.Now(), time.Hour))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("validation runs before the directory lookup", func() {
		p := testutil.NewCreateParams("patient-unknown@carebridge", s.clock.Now(), time.Hour)
		p.Purpose = ""
		_, err := s.service.CreateRequest(s.ctx, p)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("metadata is copied", func() {
		p := testutil.NewCreateParams(testutil.TestIDs.PatientID1, s.clock.Now(), time.Hour)
		p.Metadata = map[string]string{models.MetadataDoctor: "dr-lee"}
		r, err := s.service.CreateRequest(s.ctx, p)
		s.Require().NoError(err)
		p.Metadata[models.MetadataDoctor] = "changed"

		got, err := s.service.GetRequest(s.ctx, r.ID)
		s.Require().NoError(err)
		s.Equal("dr-lee", got.Metadata[models.MetadataDoctor])
	})
}

func (s *ServiceSuite) TestDenyRequest() {
	s.Run("REQUESTED becomes DENIED", func() {
		r := s.createRequest(time.Hour)
		s.Require().NoError(s.service.DenyRequest(s.ctx, r.ID))
		s.Equal(models.StatusDenied, s.requestStatus(r))
	})

	s.Run("a past-expiry request can still be denied", func() {
		r := s.createRequest(time.Hour)
		s.clock.Advance(2 * time.Hour)
		s.Require().NoError(s.service.DenyRequest(s.ctx, r.ID))
		s.Equal(models.StatusDenied, s.requestStatus(r))
	})

	s.Run("terminal and granted requests cannot be denied", func() {
		denied := s.createRequest(time.Hour)
		s.Require().NoError(s.service.DenyRequest(s.ctx, denied.ID))
		granted, _ := s.grant(time.Hour, 0, "OBSERVATION")

		for _, r := range []*models.ConsentRequest{denied, granted} {
			err := s.service.DenyRequest(s.ctx, r.ID)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
		}
	})

	s.Run("unknown request is not found", func() {
		err := s.service.DenyRequest(s.ctx, testutil.TestIDs.RequestID2)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestUpdateRequest() {
	s.Run("merges metadata and replaces purpose", func() {
		p := testutil.NewCreateParams(testutil.TestIDs.PatientID1, s.clock.Now(), time.Hour)
		p.Metadata = map[string]string{models.MetadataDoctor: "dr-lee", models.MetadataDepartment: "cardio"}
		r, err := s.service.CreateRequest(s.ctx, p)
		s.Require().NoError(err)

		purpose := "DISEASE_SPECIFIC_HEALTHCARE_RESEARCH"
		updated, err := s.service.UpdateRequest(s.ctx, r.ID, models.RequestUpdate{
			Purpose:  &purpose,
			Metadata: map[string]string{models.MetadataDoctor: "", models.MetadataSpeciality: "oncology"},
		})
		s.Require().NoError(err)
		s.Equal(purpose, updated.Purpose)
		s.Equal(map[string]string{models.MetadataDepartment: "cardio", models.MetadataSpeciality: "oncology"}, updated.Metadata)
	})

	s.Run("empty purpose is rejected", func() {
		r := s.createRequest(time.Hour)
		empty := ""
		_, err := s.service.UpdateRequest(s.ctx, r.ID, models.RequestUpdate{Purpose: &empty})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("merge that overflows the metadata limit is rejected", func() {
		p := testutil.NewCreateParams(testutil.TestIDs.PatientID1, s.clock.Now(), time.Hour)
		p.Metadata = make(map[string]string, validation.MaxMetadataEntries)
		for i := range validation.MaxMetadataEntries {
			p.Metadata[fmt.Sprintf("k%02d", i)] = "v"
		}
		r, err := s.service.CreateRequest(s.ctx, p)
		s.Require().NoError(err)

		_, err = s.service.UpdateRequest(s.ctx, r.ID, models.RequestUpdate{Metadata: map[string]string{"extra": "v"}})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		got, err := s.service.GetRequest(s.ctx, r.ID)
		s.Require().NoError(err)
		s.Len(got.Metadata, validation.MaxMetadataEntries)
		s.NotContains(got.Metadata, "extra")

		_, err = s.service.UpdateRequest(s.ctx, r.ID, models.RequestUpdate{Metadata: map[string]string{"k00": "", "extra": "v"}})
		s.NoError(err)
	})

	s.Run("only REQUESTED requests can be edited", func() {
		r, _ := s.grant(time.Hour, 0, "OBSERVATION")
		_, err := s.service.UpdateRequest(s.ctx, r.ID, models.RequestUpdate{Metadata: map[string]string{"k": "v"}})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})
}

func (s *ServiceSuite) TestDeleteRequest() {
	s.Run("removes a REQUESTED request", func() {
		r := s.createRequest(time.Hour)
		s.Require().NoError(s.service.DeleteRequest(s.ctx, r.ID))
		_, err := s.service.GetRequest(s.ctx, r.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("removes a DENIED request", func() {
		r := s.createRequest(time.Hour)
		s.Require().NoError(s.service.DenyRequest(s.ctx, r.ID))
		s.Require().NoError(s.service.DeleteRequest(s.ctx, r.ID))
	})

	s.Run("refuses GRANTED", func() {
		r, _ := s.grant(time.Hour, 0, "OBSERVATION")
		err := s.service.DeleteRequest(s.ctx, r.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})

	s.Run("refuses a revoked request that still has an artefact", func() {
		r, a := s.grant(time.Hour, 0, "OBSERVATION")
		s.Require().NoError(s.service.Revoke(s.ctx, a.ID))
		err := s.service.DeleteRequest(s.ctx, r.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})

	s.Run("unknown request is not found", func() {
		err := s.service.DeleteRequest(s.ctx, testutil.TestIDs.RequestID2)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestListRequestsByPatient() {
	open := s.createRequest(time.Hour)
	denied := s.createRequest(time.Hour)
	s.Require().NoError(s.service.DenyRequest(s.ctx, denied.ID))
	before := len(s.auditStore.All())

	all, err := s.service.ListRequestsByPatient(s.ctx, testutil.TestIDs.PatientID1, nil)
	s.Require().NoError(err)
	s.Len(all, 2)

	status := models.StatusDenied
	onlyDenied, err := s.service.ListRequestsByPatient(s.ctx, testutil.TestIDs.PatientID1, &status)
	s.Require().NoError(err)
	s.Require().Len(onlyDenied, 1)
	s.Equal(denied.ID, onlyDenied[0].ID)

	other, err := s.service.ListRequestsByPatient(s.ctx, testutil.TestIDs.PatientID2, nil)
	s.Require().NoError(err)
	s.Empty(other)

	bogus := models.Status("PENDING")
	_, err = s.service.ListRequestsByPatient(s.ctx, testutil.TestIDs.PatientID1, &bogus)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	s.Len(s.auditStore.All(), before, "listing must not emit events")
	s.Equal(models.StatusRequested, s.requestStatus(open))
}

func (s *ServiceSuite) TestListActiveRequestsByHIP() {
	active, _ := s.grant(time.Hour, 0, "OBSERVATION")
	s.createRequest(time.Hour)

	got, err := s.service.ListActiveRequestsByHIP(s.ctx, testutil.TestIDs.HIPID1)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(active.ID, got[0].ID)

	s.clock.Advance(31 * 24 * time.Hour)
	got, err = s.service.ListActiveRequestsByHIP(s.ctx, testutil.TestIDs.HIPID1)
	s.Require().NoError(err)
	s.Empty(got)
}
