package tracer

import "context"

// Noop hands back the caller's context and a span that records nothing.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) SetAttributes(...Attribute) {}
func (noopSpan) End(error)                  {}
