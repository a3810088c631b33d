package testsupport

import (
	"context"
	"fmt"
	"sync"
)

// StubResolver maps source references to playable URLs synchronously.
// References listed in Fail resolve with an error; unknown references
// resolve to "resolved://<ref>".
type StubResolver struct {
	mu    sync.Mutex
	URLs  map[string]string
	Fail  map[string]bool
	calls []string
	// Gate, when set, is received from before every resolution completes,
	// letting tests hold resolutions in flight.
	Gate chan struct{}
}

// NewStubResolver returns an empty stub.
func NewStubResolver() *StubResolver {
	return &StubResolver{URLs: make(map[string]string), Fail: make(map[string]bool)}
}

// Resolve implements the reconciler's Resolver dependency.
func (s *StubResolver) Resolve(ctx context.Context, ref string) (string, error) {
	if s.Gate != nil {
		select {
		case <-s.Gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, ref)
	if s.Fail[ref] {
		return "", fmt.Errorf("resolve %s: unavailable", ref)
	}
	if url, ok := s.URLs[ref]; ok {
		return url, nil
	}
	return "resolved://" + ref, nil
}

// Calls returns the references resolved so far, in completion order.
func (s *StubResolver) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}
