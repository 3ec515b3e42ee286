package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNoopKeepsContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), struct{}{}, "marker")
	got, span := NewNoop().Start(ctx, SpanGrant, String(AttrRequestID, "r-1"))

	assert.Equal(t, ctx, got)
	span.SetAttributes(Bool(AttrAllowed, true))
	span.End(errors.New("ignored"))
}

func TestOTelCarriesSpanInContext(t *testing.T) {
	tr := NewOTel(noop.NewTracerProvider().Tracer("test"))

	ctx, span := tr.Start(context.Background(), SpanCheckAccess, String(AttrArtefactID, "a-1"))
	require.NotNil(t, span)
	assert.NotNil(t, trace.SpanFromContext(ctx))

	span.SetAttributes(Int(AttrExpired, 2), Bool(AttrAllowed, false))
	span.End(errors.New("quota exhausted"))
}

func TestAttributesAreOTelKeyValues(t *testing.T) {
	a := Int(AttrExpired, 3)
	assert.Equal(t, AttrExpired, string(a.Key))
	assert.Equal(t, int64(3), a.Value.AsInt64())
	assert.Equal(t, "a-1", String(AttrArtefactID, "a-1").Value.AsString())
	assert.True(t, Bool(AttrAllowed, true).Value.AsBool())
}

func TestNewOTelFallsBackToGlobal(t *testing.T) {
	assert.NotNil(t, NewOTel(nil).tracer)
}
