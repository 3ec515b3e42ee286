// Package tracer is the span API the consent service codes against. OTel
// backs it in the server; Noop is the default for tests and tools.
package tracer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Span ends with the operation's error, which marks it failed when non-nil.
type Span interface {
	SetAttributes(attrs ...Attribute)
	End(err error)
}

type Attribute = attribute.KeyValue

func String(key, value string) Attribute   { return attribute.String(key, value) }
func Bool(key string, value bool) Attribute { return attribute.Bool(key, value) }
func Int(key string, value int) Attribute   { return attribute.Int(key, value) }

const (
	SpanCreateRequest = "consent.create_request"
	SpanUpdateRequest = "consent.update_request"
	SpanDeleteRequest = "consent.delete_request"
	SpanGrant         = "consent.grant"
	SpanDeny          = "consent.deny"
	SpanRevoke        = "consent.revoke"
	SpanCheckAccess   = "consent.check_access"
	SpanRecordAccess  = "consent.record_access"
	SpanSweep         = "consent.sweep"
	SpanPatientLookup = "patient_directory.exists"
)

const (
	AttrRequestID   = "consent.request_id"
	AttrArtefactID  = "consent.artefact_id"
	AttrPatientHash = "consent.patient_hash"
	AttrAllowed     = "consent.allowed"
	AttrExpired     = "consent.expired_count"
)
