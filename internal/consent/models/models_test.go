package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
)

var baseTime = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func validRequestParams() NewConsentRequestParams {
	return NewConsentRequestParams{
		PatientID:   "patient-1",
		RequesterID: "dr-smith",
		Purpose:     "CARE_MGMT",
		HIPID:       "hip-1",
		HIUID:       "hiu-1",
		ExpiryDate:  baseTime.Add(30 * 24 * time.Hour),
		Metadata:    map[string]string{MetadataDepartment: "cardiology"},
	}
}

func TestNewConsentRequest(t *testing.T) {
	t.Run("creates REQUESTED request", func(t *testing.T) {
		params := validRequestParams()
		r, err := NewConsentRequest(id.NewConsentRequestID(), params, baseTime)
		require.NoError(t, err)
		assert.Equal(t, StatusRequested, r.Status)
		assert.Equal(t, baseTime, r.RequestDate)

		params.Metadata["doctor"] = "mutated"
		assert.NotContains(t, r.Metadata, "doctor", "metadata must be copied")
	})

	t.Run("expiry must be strictly after now", func(t *testing.T) {
		for _, expiry := range []time.Time{baseTime, baseTime.Add(-time.Second)} {
			p := validRequestParams()
			p.ExpiryDate = expiry
			_, err := NewConsentRequest(id.NewConsentRequestID(), p, baseTime)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		}
	})

	t.Run("required identifiers", func(t *testing.T) {
		mutations := map[string]func(*NewConsentRequestParams){
			"patient":   func(p *NewConsentRequestParams) { p.PatientID = "" },
			"requester": func(p *NewConsentRequestParams) { p.RequesterID = "" },
			"hip":       func(p *NewConsentRequestParams) { p.HIPID = "" },
			"hiu":       func(p *NewConsentRequestParams) { p.HIUID = "" },
			"purpose":   func(p *NewConsentRequestParams) { p.Purpose = "" },
		}
		for name, mutate := range mutations {
			t.Run(name, func(t *testing.T) {
				p := validRequestParams()
				mutate(&p)
				_, err := NewConsentRequest(id.NewConsentRequestID(), p, baseTime)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			})
		}
	})
}

func validGrant() GrantParams {
	return GrantParams{
		AccessMode:     AccessModeView,
		DateRangeFrom:  baseTime,
		DateRangeTo:    baseTime.Add(7 * 24 * time.Hour),
		Frequency:      &Frequency{Unit: FrequencyDay, Value: 1, Repeats: 3},
		DataCategories: []DataCategory{{Category: "OBSERVATION", HITypes: []string{"DiagnosticReport"}}},
	}
}

func TestGrantParamsValidate(t *testing.T) {
	require.NoError(t, validGrant().Validate())

	p := validGrant()
	p.DateRangeFrom, p.DateRangeTo = baseTime, baseTime
	assert.NoError(t, p.Validate(), "single-instant range is allowed")

	cases := map[string]func(*GrantParams){
		"inverted range":     func(p *GrantParams) { p.DateRangeFrom = p.DateRangeTo.Add(time.Second) },
		"no categories":      func(p *GrantParams) { p.DataCategories = nil },
		"blank category":     func(p *GrantParams) { p.DataCategories = []DataCategory{{}} },
		"duplicate category": func(p *GrantParams) { p.DataCategories = append(p.DataCategories, p.DataCategories[0]) },
		"bad access mode":    func(p *GrantParams) { p.AccessMode = "DELETE" },
		"zero repeats":       func(p *GrantParams) { p.Frequency.Repeats = 0 },
		"bad unit":           func(p *GrantParams) { p.Frequency.Unit = "FORTNIGHT" },
		"missing range":      func(p *GrantParams) { p.DateRangeTo = time.Time{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := validGrant()
			mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestArtefactCloneIsDeep(t *testing.T) {
	a, err := NewConsentArtefact(id.NewConsentArtefactID(), id.NewConsentRequestID(), validGrant(), baseTime)
	require.NoError(t, err)

	c := a.Clone()
	c.Frequency.Repeats = 99
	c.DataCategories[0].HITypes[0] = "changed"

	assert.Equal(t, 3, a.Frequency.Repeats)
	assert.Equal(t, "DiagnosticReport", a.DataCategories[0].HITypes[0])
	assert.Equal(t, []string{"OBSERVATION"}, a.CategoryNames())
}

func TestRequestUpdateApply(t *testing.T) {
	r := &ConsentRequest{Purpose: "CARE_MGMT", Metadata: map[string]string{"doctor": "a", "department": "x"}}
	purpose := "DISEASE_SPECIFIC_HEALTHCARE_RESEARCH"
	RequestUpdate{Purpose: &purpose, Metadata: map[string]string{"doctor": "b", "department": ""}}.Apply(r)

	assert.Equal(t, purpose, r.Purpose)
	assert.Equal(t, map[string]string{"doctor": "b"}, r.Metadata)

	empty := &ConsentRequest{}
	RequestUpdate{Metadata: map[string]string{"speciality": "oncology"}}.Apply(empty)
	assert.Equal(t, "oncology", empty.Metadata["speciality"])
}

func TestParseEnums(t *testing.T) {
	st, err := ParseStatus("granted")
	require.NoError(t, err)
	assert.Equal(t, StatusGranted, st)
	_, err = ParseStatus("pending")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	m, err := ParseAccessMode(" view ")
	require.NoError(t, err)
	assert.Equal(t, AccessModeView, m)

	u, err := ParseFrequencyUnit("week")
	require.NoError(t, err)
	assert.Equal(t, FrequencyWeek, u)
	_, err = ParseFrequencyUnit("decade")
	assert.Error(t, err)
}
