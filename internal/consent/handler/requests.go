package handler

import (
	"strings"
	"time"

	"carebridge/internal/consent/models"
	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
	pstrings "carebridge/pkg/platform/strings"
	"carebridge/pkg/platform/validation"
)

// CreateConsentRequest opens a consent request on behalf of an HIU.
type CreateConsentRequest struct {
	PatientID   string            `json:"patientId" validate:"required,notblank,max=128"`
	RequesterID string            `json:"requesterId" validate:"required,notblank,max=128"`
	Purpose     string            `json:"purpose" validate:"required,notblank,max=256"`
	HIPID       string            `json:"hipId" validate:"required,notblank,max=128"`
	HIUID       string            `json:"hiuId" validate:"required,notblank,max=128"`
	ExpiryDate  time.Time         `json:"expiryDate" validate:"required"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func (r *CreateConsentRequest) Sanitize() {
	r.PatientID = strings.TrimSpace(r.PatientID)
	r.RequesterID = strings.TrimSpace(r.RequesterID)
	r.Purpose = strings.TrimSpace(r.Purpose)
	r.HIPID = strings.TrimSpace(r.HIPID)
	r.HIUID = strings.TrimSpace(r.HIUID)
}

func (r *CreateConsentRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	return validation.CheckMetadata(r.Metadata)
}

func (r *CreateConsentRequest) ToParams() models.NewConsentRequestParams {
	return models.NewConsentRequestParams{
		PatientID:   id.PatientID(r.PatientID),
		RequesterID: id.RequesterID(r.RequesterID),
		Purpose:     r.Purpose,
		HIPID:       id.HIPID(r.HIPID),
		HIUID:       id.HIUID(r.HIUID),
		ExpiryDate:  r.ExpiryDate.UTC(),
		Metadata:    r.Metadata,
	}
}

// UpdateConsentRequest edits a pending request. Absent fields are kept;
// a metadata key mapped to "" is removed.
type UpdateConsentRequest struct {
	Purpose  *string           `json:"purpose,omitempty" validate:"omitnil,notblank,max=256"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (r *UpdateConsentRequest) Sanitize() {
	r.Purpose = pstrings.TrimSpacePtr(r.Purpose)
}

func (r *UpdateConsentRequest) Validate() error {
	if r.Purpose == nil && len(r.Metadata) == 0 {
		return dErrors.New(dErrors.CodeValidation, "purpose or metadata is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	return validation.CheckMetadata(r.Metadata)
}

func (r *UpdateConsentRequest) ToUpdate() models.RequestUpdate {
	return models.RequestUpdate{Purpose: r.Purpose, Metadata: r.Metadata}
}

// DateRange is an inclusive time window.
type DateRange struct {
	From time.Time `json:"from" validate:"required"`
	To   time.Time `json:"to" validate:"required"`
}

// Frequency is a lifetime access quota.
type Frequency struct {
	Unit    string `json:"unit" validate:"required,oneof=HOUR DAY WEEK MONTH YEAR"`
	Value   int    `json:"value" validate:"min=1"`
	Repeats int    `json:"repeats" validate:"min=1"`
}

// DataCategory names one class of health information.
type DataCategory struct {
	Category    string   `json:"category" validate:"required,notblank,max=64"`
	Description string   `json:"description,omitempty" validate:"max=512"`
	HITypes     []string `json:"hiTypes,omitempty" validate:"max=32,dive,notblank,max=64"`
}

// GrantConsentRequest carries the patient's chosen grant parameters.
type GrantConsentRequest struct {
	AccessMode     string         `json:"accessMode" validate:"required,oneof=VIEW STORE QUERY STREAM"`
	DateRange      DateRange      `json:"dateRange" validate:"required"`
	Frequency      *Frequency     `json:"frequency,omitempty" validate:"omitnil"`
	DataCategories []DataCategory `json:"dataCategories" validate:"required,min=1,max=32,dive"`
}

func (r *GrantConsentRequest) Normalize() {
	r.AccessMode = strings.ToUpper(strings.TrimSpace(r.AccessMode))
	if r.Frequency != nil {
		r.Frequency.Unit = strings.ToUpper(strings.TrimSpace(r.Frequency.Unit))
	}
	for i := range r.DataCategories {
		r.DataCategories[i].Category = strings.ToUpper(strings.TrimSpace(r.DataCategories[i].Category))
	}
}

func (r *GrantConsentRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	if r.DateRange.From.After(r.DateRange.To) {
		return dErrors.New(dErrors.CodeValidation, "dateRange.from must not be after dateRange.to")
	}
	return nil
}

func (r *GrantConsentRequest) ToParams() models.GrantParams {
	p := models.GrantParams{
		AccessMode:     models.AccessMode(r.AccessMode),
		DateRangeFrom:  r.DateRange.From.UTC(),
		DateRangeTo:    r.DateRange.To.UTC(),
		DataCategories: make([]models.DataCategory, len(r.DataCategories)),
	}
	if r.Frequency != nil {
		p.Frequency = &models.Frequency{
			Unit:    models.FrequencyUnit(r.Frequency.Unit),
			Value:   r.Frequency.Value,
			Repeats: r.Frequency.Repeats,
		}
	}
	for i, dc := range r.DataCategories {
		p.DataCategories[i] = models.DataCategory{
			Category:    dc.Category,
			Description: dc.Description,
			HITypes:     dc.HITypes,
		}
	}
	return p
}

// CheckAccessRequest asks whether categories may be read. An empty list
// is answered with allowed=false rather than rejected.
type CheckAccessRequest struct {
	Categories []string `json:"categories" validate:"max=32,dive,notblank,max=64"`
}

func (r *CheckAccessRequest) Normalize() {
	r.Categories = pstrings.DedupeAndTrimUpper(r.Categories)
}

func (r *CheckAccessRequest) Validate() error {
	return validation.Validate(r)
}

// RecordAccessRequest logs a read under an artefact.
type RecordAccessRequest struct {
	Categories []string `json:"categories" validate:"required,min=1,max=32,dive,notblank,max=64"`
	AccessedBy string   `json:"accessedBy,omitempty" validate:"max=128"`
	Purpose    string   `json:"purpose,omitempty" validate:"max=256"`
	DeviceID   string   `json:"deviceId,omitempty" validate:"max=128"`
}

func (r *RecordAccessRequest) Normalize() {
	r.Categories = pstrings.DedupeAndTrimUpper(r.Categories)
	r.AccessedBy = strings.TrimSpace(r.AccessedBy)
	r.Purpose = strings.TrimSpace(r.Purpose)
	r.DeviceID = strings.TrimSpace(r.DeviceID)
}

func (r *RecordAccessRequest) Validate() error {
	return validation.Validate(r)
}

func (r *RecordAccessRequest) ToAccessContext() models.AccessContext {
	return models.AccessContext{
		AccessedBy: r.AccessedBy,
		Purpose:    r.Purpose,
		DeviceID:   r.DeviceID,
	}
}
