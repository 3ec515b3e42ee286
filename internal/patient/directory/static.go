// Package directory provides PatientDirectory adapters: a static in-memory
// registry, an HTTP client for an external directory, and a redis-backed
// existence cache that wraps either.
package directory

import (
	"context"
	"sync"

	id "carebridge/pkg/domain"
)

// Static answers from a fixed set of known patients.
type Static struct {
	mu       sync.RWMutex
	patients map[id.PatientID]struct{}
}

func NewStatic(patients ...id.PatientID) *Static {
	s := &Static{patients: make(map[id.PatientID]struct{}, len(patients))}
	for _, p := range patients {
		s.patients[p] = struct{}{}
	}
	return s
}

// Add registers more patients.
func (s *Static) Add(patients ...id.PatientID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range patients {
		s.patients[p] = struct{}{}
	}
}

func (s *Static) Exists(_ context.Context, patientID id.PatientID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.patients[patientID]
	return ok, nil
}
