// Package outbox stores audit events in the consent database and relays
// them to Kafka from a background worker, so an event is never lost when
// the broker is down at the moment the consent decision is made.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one pending or relayed event in the outbox table.
type Entry struct {
	ID          uuid.UUID
	AggregateID string // consent request or artefact id
	EventType   string // audit action, e.g. "consent_granted"
	Payload     []byte // JSON-encoded audit event
	CreatedAt   time.Time
	ProcessedAt *time.Time // nil until relayed to Kafka
}

// IsPending reports whether the entry has not been relayed yet.
func (e *Entry) IsPending() bool {
	return e.ProcessedAt == nil
}

func NewEntry(aggregateID, eventType string, payload []byte, createdAt time.Time) *Entry {
	return &Entry{
		ID:          uuid.New(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Payload:     payload,
		CreatedAt:   createdAt,
	}
}

// Store defines the outbox persistence operations. Implementations must be
// safe for concurrent use.
type Store interface {
	Append(ctx context.Context, entry *Entry) error

	// FetchUnprocessed returns up to limit pending entries, oldest first.
	FetchUnprocessed(ctx context.Context, limit int) ([]*Entry, error)

	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error

	// ListByAggregate returns every entry for one subject, oldest first,
	// whether relayed or not.
	ListByAggregate(ctx context.Context, aggregateID string) ([]*Entry, error)

	CountPending(ctx context.Context) (int64, error)
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
