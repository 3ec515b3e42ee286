package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
//
// PatientHash carries a hashed patient identifier; raw patient ids never
// leave the consent service through the audit trail.
type Event struct {
	Timestamp       time.Time `json:"timestamp"`
	RequestID       string    `json:"request_id,omitempty"`
	PatientHash     string    `json:"patient_hash,omitempty"`
	Subject         string    `json:"subject"`
	Action          string    `json:"action"`
	Purpose         string    `json:"purpose,omitempty"`
	RequestingParty string    `json:"requesting_party,omitempty"`
	Decision        string    `json:"decision"`
	Reason          string    `json:"reason,omitempty"`
}
