package testutil

import (
	"time"

	"github.com/google/uuid"

	"carebridge/internal/consent/models"
	id "carebridge/pkg/domain"
)

// TestIDs provides convenient pre-generated IDs for tests.
// Use these for deterministic test data.
var TestIDs = struct {
	RequestID1  id.ConsentRequestID
	RequestID2  id.ConsentRequestID
	ArtefactID1 id.ConsentArtefactID
	ArtefactID2 id.ConsentArtefactID
	PatientID1  id.PatientID
	PatientID2  id.PatientID
	HIPID1      id.HIPID
	HIUID1      id.HIUID
	RequesterID id.RequesterID
}{
	RequestID1:  id.ConsentRequestID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	RequestID2:  id.ConsentRequestID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	ArtefactID1: id.ConsentArtefactID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000001")),
	ArtefactID2: id.ConsentArtefactID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000002")),
	PatientID1:  "patient-0001@carebridge",
	PatientID2:  "patient-0002@carebridge",
	HIPID1:      "hip-city-hospital",
	HIUID1:      "hiu-family-clinic",
	RequesterID: "dr-meera",
}

// RefTime is the default "now" used by fixtures.
var RefTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// RequestBuilder provides a fluent interface for building consent requests.
type RequestBuilder struct {
	req *models.ConsentRequest
}

// NewRequestBuilder creates a REQUESTED consent request dated RefTime and
// expiring 30 days later.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		req: &models.ConsentRequest{
			ID:          id.NewConsentRequestID(),
			PatientID:   TestIDs.PatientID1,
			RequesterID: TestIDs.RequesterID,
			Purpose:     "CARE_MGMT",
			HIPID:       TestIDs.HIPID1,
			HIUID:       TestIDs.HIUID1,
			RequestDate: RefTime,
			ExpiryDate:  RefTime.AddDate(0, 0, 30),
			Status:      models.StatusRequested,
			UpdatedAt:   RefTime,
		},
	}
}

func (b *RequestBuilder) WithID(requestID id.ConsentRequestID) *RequestBuilder {
	b.req.ID = requestID
	return b
}

func (b *RequestBuilder) WithPatient(patientID id.PatientID) *RequestBuilder {
	b.req.PatientID = patientID
	return b
}

func (b *RequestBuilder) WithHIP(hipID id.HIPID) *RequestBuilder {
	b.req.HIPID = hipID
	return b
}

func (b *RequestBuilder) WithPurpose(purpose string) *RequestBuilder {
	b.req.Purpose = purpose
	return b
}

func (b *RequestBuilder) WithStatus(status models.Status) *RequestBuilder {
	b.req.Status = status
	return b
}

func (b *RequestBuilder) RequestedAt(t time.Time) *RequestBuilder {
	b.req.RequestDate = t
	b.req.UpdatedAt = t
	return b
}

func (b *RequestBuilder) ExpiresAt(t time.Time) *RequestBuilder {
	b.req.ExpiryDate = t
	return b
}

func (b *RequestBuilder) WithMetadata(key, value string) *RequestBuilder {
	if b.req.Metadata == nil {
		b.req.Metadata = map[string]string{}
	}
	b.req.Metadata[key] = value
	return b
}

func (b *RequestBuilder) Build() *models.ConsentRequest {
	return b.req.Clone()
}

// ArtefactBuilder provides a fluent interface for building consent artefacts.
type ArtefactBuilder struct {
	art *models.ConsentArtefact
}

// NewArtefactBuilder creates a VIEW artefact for requestID covering
// OBSERVATION over [RefTime, RefTime+7d] with no quota.
func NewArtefactBuilder(requestID id.ConsentRequestID) *ArtefactBuilder {
	return &ArtefactBuilder{
		art: &models.ConsentArtefact{
			ID:               id.NewConsentArtefactID(),
			ConsentRequestID: requestID,
			Signature:        "test-signature",
			SignedAt:         RefTime,
			AccessMode:       models.AccessModeView,
			DateRangeFrom:    RefTime,
			DateRangeTo:      RefTime.AddDate(0, 0, 7),
			DataCategories:   []models.DataCategory{{Category: "OBSERVATION"}},
			CreatedAt:        RefTime,
		},
	}
}

func (b *ArtefactBuilder) WithID(artefactID id.ConsentArtefactID) *ArtefactBuilder {
	b.art.ID = artefactID
	return b
}

func (b *ArtefactBuilder) WithRange(from, to time.Time) *ArtefactBuilder {
	b.art.DateRangeFrom = from
	b.art.DateRangeTo = to
	return b
}

func (b *ArtefactBuilder) WithCategories(names ...string) *ArtefactBuilder {
	b.art.DataCategories = Categories(names...)
	return b
}

func (b *ArtefactBuilder) WithQuota(repeats int) *ArtefactBuilder {
	b.art.Frequency = &models.Frequency{Unit: models.FrequencyDay, Value: 1, Repeats: repeats}
	return b
}

func (b *ArtefactBuilder) WithAccessMode(mode models.AccessMode) *ArtefactBuilder {
	b.art.AccessMode = mode
	return b
}

func (b *ArtefactBuilder) Build() *models.ConsentArtefact {
	return b.art.Clone()
}

// Quick helper functions for simple test cases

// Categories builds data categories from bare names.
func Categories(names ...string) []models.DataCategory {
	out := make([]models.DataCategory, len(names))
	for i, n := range names {
		out[i] = models.DataCategory{Category: n}
	}
	return out
}

// NewGrantParams returns valid grant parameters over [from, to] for the
// given categories, with an optional lifetime quota (repeats <= 0 means none).
func NewGrantParams(from, to time.Time, repeats int, categories ...string) models.GrantParams {
	p := models.GrantParams{
		AccessMode:     models.AccessModeView,
		DateRangeFrom:  from,
		DateRangeTo:    to,
		DataCategories: Categories(categories...),
	}
	if repeats > 0 {
		p.Frequency = &models.Frequency{Unit: models.FrequencyDay, Value: 1, Repeats: repeats}
	}
	return p
}

// NewCreateParams returns valid creation parameters expiring ttl after now.
func NewCreateParams(patientID id.PatientID, now time.Time, ttl time.Duration) models.NewConsentRequestParams {
	return models.NewConsentRequestParams{
		PatientID:   patientID,
		RequesterID: TestIDs.RequesterID,
		Purpose:     "CARE_MGMT",
		HIPID:       TestIDs.HIPID1,
		HIUID:       TestIDs.HIUID1,
		ExpiryDate:  now.Add(ttl),
	}
}
