package models

import (
	"maps"
	"slices"
	"time"

	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
)

// Well-known metadata keys carried on a consent request.
const (
	MetadataDepartment  = "department"
	MetadataDoctor      = "doctor"
	MetadataSpeciality  = "speciality"
	MetadataCareContext = "careContextReference"
)

// ConsentRequest is a requester's ask for access to a patient's records.
// It changes only through the state machine in value_objects.go.
type ConsentRequest struct {
	ID          id.ConsentRequestID
	PatientID   id.PatientID
	RequesterID id.RequesterID
	Purpose     string
	HIPID       id.HIPID
	HIUID       id.HIUID
	RequestDate time.Time
	ExpiryDate  time.Time
	Status      Status
	Metadata    map[string]string
	UpdatedAt   time.Time
	// Version is bumped on every write; stores reject stale writes.
	Version int64
}

// NewConsentRequestParams groups the inputs of NewConsentRequest.
type NewConsentRequestParams struct {
	PatientID   id.PatientID
	RequesterID id.RequesterID
	Purpose     string
	HIPID       id.HIPID
	HIUID       id.HIUID
	ExpiryDate  time.Time
	Metadata    map[string]string
}

// NewConsentRequest builds a REQUESTED request dated now.
func NewConsentRequest(requestID id.ConsentRequestID, p NewConsentRequestParams, now time.Time) (*ConsentRequest, error) {
	switch {
	case requestID.IsNil():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "consent request ID required")
	case p.PatientID.IsNil():
		return nil, dErrors.New(dErrors.CodeValidation, "patient ID required")
	case p.RequesterID.IsNil():
		return nil, dErrors.New(dErrors.CodeValidation, "requester ID required")
	case p.HIPID.IsNil():
		return nil, dErrors.New(dErrors.CodeValidation, "HIP ID required")
	case p.HIUID.IsNil():
		return nil, dErrors.New(dErrors.CodeValidation, "HIU ID required")
	case p.Purpose == "":
		return nil, dErrors.New(dErrors.CodeValidation, "purpose required")
	case !p.ExpiryDate.After(now):
		return nil, dErrors.New(dErrors.CodeValidation, "expiry date must be in the future")
	}
	return &ConsentRequest{
		ID:          requestID,
		PatientID:   p.PatientID,
		RequesterID: p.RequesterID,
		Purpose:     p.Purpose,
		HIPID:       p.HIPID,
		HIUID:       p.HIUID,
		RequestDate: now,
		ExpiryDate:  p.ExpiryDate,
		Status:      StatusRequested,
		Metadata:    maps.Clone(p.Metadata),
		UpdatedAt:   now,
	}, nil
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (r *ConsentRequest) Clone() *ConsentRequest {
	if r == nil {
		return nil
	}
	c := *r
	c.Metadata = maps.Clone(r.Metadata)
	return &c
}

// Frequency is a usage quota: Repeats accesses in total. Unit and Value
// label the intended cadence and are carried for the requester's benefit.
type Frequency struct {
	Unit    FrequencyUnit `json:"unit"`
	Value   int           `json:"value"`
	Repeats int           `json:"repeats"`
}

func (f Frequency) validate() error {
	if !f.Unit.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid frequency unit")
	}
	if f.Value < 1 {
		return dErrors.New(dErrors.CodeValidation, "frequency value must be at least 1")
	}
	if f.Repeats < 1 {
		return dErrors.New(dErrors.CodeValidation, "frequency repeats must be at least 1")
	}
	return nil
}

// DataCategory is a class of health information covered by a grant.
type DataCategory struct {
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	HITypes     []string `json:"hiTypes,omitempty"`
}

// ConsentArtefact is the signed grant produced when a request is granted.
// Only DateRangeTo ever changes after creation (truncated on revoke).
type ConsentArtefact struct {
	ID               id.ConsentArtefactID
	ConsentRequestID id.ConsentRequestID
	Signature        string
	// SignedAt is the timestamp embedded in the signed payload.
	SignedAt       time.Time
	AccessMode     AccessMode
	DateRangeFrom  time.Time
	DateRangeTo    time.Time
	Frequency      *Frequency
	DataCategories []DataCategory
	CreatedAt      time.Time
	Version        int64
}

// GrantParams are the grant parameters chosen by the patient.
type GrantParams struct {
	AccessMode     AccessMode
	DateRangeFrom  time.Time
	DateRangeTo    time.Time
	Frequency      *Frequency
	DataCategories []DataCategory
}

// Validate checks the invariants every artefact must hold.
func (p GrantParams) Validate() error {
	if !p.AccessMode.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid access mode")
	}
	if p.DateRangeFrom.IsZero() || p.DateRangeTo.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "date range is required")
	}
	if p.DateRangeFrom.After(p.DateRangeTo) {
		return dErrors.New(dErrors.CodeValidation, "dateRangeFrom must not be after dateRangeTo")
	}
	if len(p.DataCategories) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one data category is required")
	}
	seen := make(map[string]struct{}, len(p.DataCategories))
	for _, dc := range p.DataCategories {
		if dc.Category == "" {
			return dErrors.New(dErrors.CodeValidation, "data category name is required")
		}
		if _, dup := seen[dc.Category]; dup {
			return dErrors.New(dErrors.CodeValidation, "duplicate data category: "+dc.Category)
		}
		seen[dc.Category] = struct{}{}
	}
	if p.Frequency != nil {
		return p.Frequency.validate()
	}
	return nil
}

// NewConsentArtefact builds an unsigned artefact for requestID.
func NewConsentArtefact(artefactID id.ConsentArtefactID, requestID id.ConsentRequestID, p GrantParams, now time.Time) (*ConsentArtefact, error) {
	if artefactID.IsNil() || requestID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "artefact and request IDs required")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	a := &ConsentArtefact{
		ID:               artefactID,
		ConsentRequestID: requestID,
		AccessMode:       p.AccessMode,
		DateRangeFrom:    p.DateRangeFrom,
		DateRangeTo:      p.DateRangeTo,
		DataCategories:   cloneCategories(p.DataCategories),
		CreatedAt:        now,
		SignedAt:         now,
	}
	if p.Frequency != nil {
		f := *p.Frequency
		a.Frequency = &f
	}
	return a, nil
}

// Clone returns a deep copy.
func (a *ConsentArtefact) Clone() *ConsentArtefact {
	if a == nil {
		return nil
	}
	c := *a
	if a.Frequency != nil {
		f := *a.Frequency
		c.Frequency = &f
	}
	c.DataCategories = cloneCategories(a.DataCategories)
	return &c
}

// CategoryNames lists the covered categories in grant order.
func (a *ConsentArtefact) CategoryNames() []string {
	out := make([]string, len(a.DataCategories))
	for i, dc := range a.DataCategories {
		out[i] = dc.Category
	}
	return out
}

func cloneCategories(in []DataCategory) []DataCategory {
	if in == nil {
		return nil
	}
	out := make([]DataCategory, len(in))
	for i, dc := range in {
		out[i] = DataCategory{Category: dc.Category, Description: dc.Description, HITypes: slices.Clone(dc.HITypes)}
	}
	return out
}

// AccessContext describes who is reading data under an artefact. All fields
// are optional.
type AccessContext struct {
	AccessedBy        string
	Purpose           string
	ClientIP          string
	UserAgent         string
	ClientDescription string
	DeviceID          string
}

// AccessRecord is an immutable usage ledger entry.
type AccessRecord struct {
	ID         id.AccessRecordID
	ArtefactID id.ConsentArtefactID
	AccessedAt time.Time
	Categories []string
	AccessContext
}

// RequestFilter narrows request listings.
type RequestFilter struct {
	Status *Status
}

// RequestUpdate is a partial update of a REQUESTED consent request. Nil
// fields are left untouched; Metadata is merged key by key and an empty
// value deletes the key.
type RequestUpdate struct {
	Purpose  *string
	Metadata map[string]string
}

// Apply merges u into r.
func (u RequestUpdate) Apply(r *ConsentRequest) {
	if u.Purpose != nil {
		r.Purpose = *u.Purpose
	}
	if len(u.Metadata) == 0 {
		return
	}
	if r.Metadata == nil {
		r.Metadata = make(map[string]string, len(u.Metadata))
	}
	for k, v := range u.Metadata {
		if v == "" {
			delete(r.Metadata, k)
			continue
		}
		r.Metadata[k] = v
	}
}

// SignaturePayload is the canonical content signed into an artefact.
type SignaturePayload struct {
	RequestID id.ConsentRequestID
	PatientID id.PatientID
	HIUID     id.HIUID
	HIPID     id.HIPID
	Timestamp time.Time
}

// PayloadFor builds the signature payload from a request at signing time t.
func PayloadFor(r *ConsentRequest, t time.Time) SignaturePayload {
	return SignaturePayload{
		RequestID: r.ID,
		PatientID: r.PatientID,
		HIUID:     r.HIUID,
		HIPID:     r.HIPID,
		Timestamp: t,
	}
}
