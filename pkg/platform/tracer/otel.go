package tracer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTel starts real OpenTelemetry spans.
type OTel struct {
	tracer trace.Tracer
}

// NewOTel wraps t, falling back to the global provider's consent tracer.
func NewOTel(t trace.Tracer) *OTel {
	if t == nil {
		t = otel.Tracer("carebridge/consent")
	}
	return &OTel{tracer: t}
}

func (o *OTel) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, s := o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, otelSpan{s}
}

type otelSpan struct{ trace.Span }

func (s otelSpan) SetAttributes(attrs ...Attribute) { s.Span.SetAttributes(attrs...) }

func (s otelSpan) End(err error) {
	if err != nil {
		s.Span.RecordError(err)
		s.Span.SetStatus(codes.Error, err.Error())
	}
	s.Span.End()
}
