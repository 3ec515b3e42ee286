// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "carebridge/pkg/domain-errors"
)

// Identifiers minted by this service are UUIDs.
type (
	ConsentRequestID  uuid.UUID
	ConsentArtefactID uuid.UUID
)

// Identifiers issued by external registries (patient directory, HIP/HIU registry,
// requester identity) are opaque strings.
type (
	PatientID   string
	RequesterID string
	HIPID       string
	HIUID       string
)

// AccessRecordID is a ULID so ledger entries sort by creation time.
type AccessRecordID string

func NewConsentRequestID() ConsentRequestID   { return ConsentRequestID(uuid.New()) }
func NewConsentArtefactID() ConsentArtefactID { return ConsentArtefactID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseConsentRequestID(s string) (ConsentRequestID, error) {
	id, err := parseUUID(s, "consent request ID")
	return ConsentRequestID(id), err
}

func ParseConsentArtefactID(s string) (ConsentArtefactID, error) {
	id, err := parseUUID(s, "consent artefact ID")
	return ConsentArtefactID(id), err
}

func ParsePatientID(s string) (PatientID, error) {
	v, err := parseOpaque(s, "patient ID")
	return PatientID(v), err
}

func ParseHIPID(s string) (HIPID, error) {
	v, err := parseOpaque(s, "HIP ID")
	return HIPID(v), err
}

// String methods - for logging and debugging.

func (id ConsentRequestID) String() string  { return uuid.UUID(id).String() }
func (id ConsentArtefactID) String() string { return uuid.UUID(id).String() }
func (id PatientID) String() string         { return string(id) }
func (id RequesterID) String() string       { return string(id) }
func (id HIPID) String() string             { return string(id) }
func (id HIUID) String() string             { return string(id) }
func (id AccessRecordID) String() string    { return string(id) }

// IsNil checks - used for service-layer validation.

func (id ConsentRequestID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ConsentArtefactID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id PatientID) IsNil() bool         { return id == "" }
func (id RequesterID) IsNil() bool       { return id == "" }
func (id HIPID) IsNil() bool             { return id == "" }
func (id HIUID) IsNil() bool             { return id == "" }

// parseUUID is the shared validation logic.
// Nil UUIDs are allowed here so store lookups can return a proper not-found.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid "+label+" format")
	}
	return id, nil
}

func parseOpaque(s, label string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, label+" cannot be empty")
	}
	return s, nil
}
