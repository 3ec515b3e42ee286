package models

import (
	"strings"

	dErrors "carebridge/pkg/domain-errors"
)

// Status is the lifecycle state of a consent request.
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusGranted   Status = "GRANTED"
	StatusDenied    Status = "DENIED"
	StatusRevoked   Status = "REVOKED"
	StatusExpired   Status = "EXPIRED"
)

// transitions is the complete edge set of the request state machine.
// EXPIRED edges are reserved for the expiry sweep.
var transitions = map[Status][]Status{
	StatusRequested: {StatusGranted, StatusDenied, StatusExpired},
	StatusGranted:   {StatusRevoked, StatusExpired},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusRequested, StatusGranted, StatusDenied, StatusRevoked, StatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

// CanTransitionTo reports whether from -> to is an edge of the state machine.
func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }

// ParseStatus accepts any casing.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid consent status: "+raw)
	}
	return s, nil
}

// AccessMode is what the requester may do with the released data.
type AccessMode string

const (
	AccessModeView   AccessMode = "VIEW"
	AccessModeStore  AccessMode = "STORE"
	AccessModeQuery  AccessMode = "QUERY"
	AccessModeStream AccessMode = "STREAM"
)

func (m AccessMode) IsValid() bool {
	switch m {
	case AccessModeView, AccessModeStore, AccessModeQuery, AccessModeStream:
		return true
	}
	return false
}

func ParseAccessMode(raw string) (AccessMode, error) {
	m := AccessMode(strings.ToUpper(strings.TrimSpace(raw)))
	if !m.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid access mode: "+raw)
	}
	return m, nil
}

// FrequencyUnit is the period label attached to a usage quota.
type FrequencyUnit string

const (
	FrequencyHour  FrequencyUnit = "HOUR"
	FrequencyDay   FrequencyUnit = "DAY"
	FrequencyWeek  FrequencyUnit = "WEEK"
	FrequencyMonth FrequencyUnit = "MONTH"
	FrequencyYear  FrequencyUnit = "YEAR"
)

func (u FrequencyUnit) IsValid() bool {
	switch u {
	case FrequencyHour, FrequencyDay, FrequencyWeek, FrequencyMonth, FrequencyYear:
		return true
	}
	return false
}

func ParseFrequencyUnit(raw string) (FrequencyUnit, error) {
	u := FrequencyUnit(strings.ToUpper(strings.TrimSpace(raw)))
	if !u.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid frequency unit: "+raw)
	}
	return u, nil
}
