package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"carebridge/internal/audit/outbox"
)

// OutboxStore writes events to the transactional outbox, from which the
// relay forwards them to Kafka. The outbox doubles as the queryable trail.
type OutboxStore struct {
	outbox outbox.Store
}

func NewOutboxStore(s outbox.Store) *OutboxStore {
	return &OutboxStore{outbox: s}
}

func (s *OutboxStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	return s.outbox.Append(ctx, outbox.NewEntry(event.Subject, event.Action, payload, event.Timestamp))
}

func (s *OutboxStore) ListBySubject(ctx context.Context, subject string) ([]Event, error) {
	entries, err := s.outbox.ListByAggregate(ctx, subject)
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(entries))
	for _, e := range entries {
		var event Event
		if err := json.Unmarshal(e.Payload, &event); err != nil {
			return nil, fmt.Errorf("decode audit event %s: %w", e.ID, err)
		}
		events = append(events, event)
	}
	return events, nil
}
