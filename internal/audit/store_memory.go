package audit

import (
	"context"
	"slices"
	"sync"
)

// InMemoryStore keeps the audit trail in process memory, oldest first.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subject string) ([]Event, error) {
	return s.filter(func(e Event) bool { return e.Subject == subject }), nil
}

func (s *InMemoryStore) ListByPatient(_ context.Context, patientHash string) ([]Event, error) {
	return s.filter(func(e Event) bool { return e.PatientHash == patientHash }), nil
}

// All returns every recorded event.
func (s *InMemoryStore) All() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

func (s *InMemoryStore) filter(keep func(Event) bool) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Event{}
	for _, e := range s.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
