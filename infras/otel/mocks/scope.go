package mocks

import (
	"sync"

	"pms/infras/otel"
)

// Scope is a no-op otel.Scope that remembers traced errors.
type Scope struct {
	mu     sync.Mutex
	errors []error
}

func (s *Scope) End() {}

func (s *Scope) AddEvent(_ string) {}

func (s *Scope) SetAttribute(_ string, _ any) {}

func (s *Scope) SetAttributes(_ map[string]any) {}

func (s *Scope) TraceError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errors = append(s.errors, err)
}

func (s *Scope) TraceIfError(err error) {
	if err != nil {
		s.TraceError(err)
	}
}

// Errors returns the errors traced so far.
func (s *Scope) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]error(nil), s.errors...)
}

func NewScope() otel.Scope {
	return &Scope{}
}
