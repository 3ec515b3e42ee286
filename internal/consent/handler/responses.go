package handler

import (
	"time"

	"carebridge/internal/audit"
	"carebridge/internal/consent/models"
	"carebridge/internal/consent/service"
)

// ConsentRequestResponse is the wire form of a consent request.
type ConsentRequestResponse struct {
	ID          string            `json:"id"`
	PatientID   string            `json:"patientId"`
	RequesterID string            `json:"requesterId"`
	Purpose     string            `json:"purpose"`
	HIPID       string            `json:"hipId"`
	HIUID       string            `json:"hiuId"`
	RequestDate time.Time         `json:"requestDate"`
	ExpiryDate  time.Time         `json:"expiryDate"`
	Status      string            `json:"status"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ConsentArtefactResponse is the wire form of a consent artefact.
type ConsentArtefactResponse struct {
	ID               string         `json:"id"`
	ConsentRequestID string         `json:"consentRequestId"`
	Signature        string         `json:"signature"`
	SignedAt         time.Time      `json:"signedAt"`
	AccessMode       string         `json:"accessMode"`
	DateRange        DateRange      `json:"dateRange"`
	Frequency        *Frequency     `json:"frequency,omitempty"`
	DataCategories   []DataCategory `json:"dataCategories"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// AccessRecordResponse is one usage ledger entry.
type AccessRecordResponse struct {
	ID                string    `json:"id"`
	ArtefactID        string    `json:"artefactId"`
	AccessedAt        time.Time `json:"accessedAt"`
	Categories        []string  `json:"categories"`
	AccessedBy        string    `json:"accessedBy,omitempty"`
	Purpose           string    `json:"purpose,omitempty"`
	ClientIP          string    `json:"clientIp,omitempty"`
	ClientDescription string    `json:"clientDescription,omitempty"`
	DeviceID          string    `json:"deviceId,omitempty"`
}

type RequestListResponse struct {
	Requests []*ConsentRequestResponse `json:"requests"`
}

type ArtefactListResponse struct {
	Artefacts []*ConsentArtefactResponse `json:"artefacts"`
}

type AccessListResponse struct {
	Accesses []*AccessRecordResponse `json:"accesses"`
}

type CheckAccessResponse struct {
	Allowed bool `json:"allowed"`
}

// ValidateAccessResponse reports a combined check-and-record decision.
type ValidateAccessResponse struct {
	Allowed        bool   `json:"allowed"`
	Reason         string `json:"reason,omitempty"`
	Remaining      *int   `json:"remaining"`
	AccessRecordID string `json:"accessRecordId,omitempty"`
}

// RemainingAccessResponse carries the quota left; null means unlimited.
type RemainingAccessResponse struct {
	Remaining *int `json:"remaining"`
}

type SignatureResponse struct {
	Valid bool `json:"valid"`
}

type SweepResponse struct {
	Expired int `json:"expired"`
}

// AuditEventResponse is one audit trail entry. Patients appear only as a
// hash.
type AuditEventResponse struct {
	Timestamp       time.Time `json:"timestamp"`
	Action          string    `json:"action"`
	Decision        string    `json:"decision"`
	Reason          string    `json:"reason,omitempty"`
	Purpose         string    `json:"purpose,omitempty"`
	RequestingParty string    `json:"requestingParty,omitempty"`
	PatientHash     string    `json:"patientHash,omitempty"`
	RequestID       string    `json:"requestId,omitempty"`
}

type AuditTrailResponse struct {
	Events []AuditEventResponse `json:"events"`
}

func toAuditTrailResponse(events []audit.Event) AuditTrailResponse {
	out := AuditTrailResponse{Events: make([]AuditEventResponse, 0, len(events))}
	for _, e := range events {
		out.Events = append(out.Events, AuditEventResponse{
			Timestamp:       e.Timestamp,
			Action:          e.Action,
			Decision:        e.Decision,
			Reason:          e.Reason,
			Purpose:         e.Purpose,
			RequestingParty: e.RequestingParty,
			PatientHash:     e.PatientHash,
			RequestID:       e.RequestID,
		})
	}
	return out
}

type StatusResponse struct {
	Status string `json:"status"`
}

func toRequestResponse(r *models.ConsentRequest) *ConsentRequestResponse {
	return &ConsentRequestResponse{
		ID:          r.ID.String(),
		PatientID:   r.PatientID.String(),
		RequesterID: r.RequesterID.String(),
		Purpose:     r.Purpose,
		HIPID:       r.HIPID.String(),
		HIUID:       r.HIUID.String(),
		RequestDate: r.RequestDate,
		ExpiryDate:  r.ExpiryDate,
		Status:      r.Status.String(),
		Metadata:    r.Metadata,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toRequestList(rs []*models.ConsentRequest) *RequestListResponse {
	out := &RequestListResponse{Requests: make([]*ConsentRequestResponse, 0, len(rs))}
	for _, r := range rs {
		out.Requests = append(out.Requests, toRequestResponse(r))
	}
	return out
}

func toArtefactResponse(a *models.ConsentArtefact) *ConsentArtefactResponse {
	resp := &ConsentArtefactResponse{
		ID:               a.ID.String(),
		ConsentRequestID: a.ConsentRequestID.String(),
		Signature:        a.Signature,
		SignedAt:         a.SignedAt,
		AccessMode:       string(a.AccessMode),
		DateRange:        DateRange{From: a.DateRangeFrom, To: a.DateRangeTo},
		DataCategories:   make([]DataCategory, len(a.DataCategories)),
		CreatedAt:        a.CreatedAt,
	}
	if a.Frequency != nil {
		resp.Frequency = &Frequency{
			Unit:    string(a.Frequency.Unit),
			Value:   a.Frequency.Value,
			Repeats: a.Frequency.Repeats,
		}
	}
	for i, dc := range a.DataCategories {
		resp.DataCategories[i] = DataCategory{Category: dc.Category, Description: dc.Description, HITypes: dc.HITypes}
	}
	return resp
}

func toArtefactList(as []*models.ConsentArtefact) *ArtefactListResponse {
	out := &ArtefactListResponse{Artefacts: make([]*ConsentArtefactResponse, 0, len(as))}
	for _, a := range as {
		out.Artefacts = append(out.Artefacts, toArtefactResponse(a))
	}
	return out
}

func toAccessRecordResponse(r *models.AccessRecord) *AccessRecordResponse {
	return &AccessRecordResponse{
		ID:                r.ID.String(),
		ArtefactID:        r.ArtefactID.String(),
		AccessedAt:        r.AccessedAt,
		Categories:        r.Categories,
		AccessedBy:        r.AccessedBy,
		Purpose:           r.Purpose,
		ClientIP:          r.ClientIP,
		ClientDescription: r.ClientDescription,
		DeviceID:          r.DeviceID,
	}
}

func toAccessList(rs []*models.AccessRecord) *AccessListResponse {
	out := &AccessListResponse{Accesses: make([]*AccessRecordResponse, 0, len(rs))}
	for _, r := range rs {
		out.Accesses = append(out.Accesses, toAccessRecordResponse(r))
	}
	return out
}

func toValidateResponse(d service.Decision, rec *models.AccessRecord) *ValidateAccessResponse {
	resp := &ValidateAccessResponse{Allowed: d.Allowed, Reason: d.Reason, Remaining: d.Remaining}
	if rec != nil {
		resp.AccessRecordID = rec.ID.String()
	}
	return resp
}
