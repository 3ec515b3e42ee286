package audit

import "context"

// Sink receives audit events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a queryable Sink.
type Store interface {
	Sink
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
