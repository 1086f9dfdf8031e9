// api/oracle/stub.go
package oracle

import (
	"context"
	"sync"
	"time"
)

// StubOracle is a deterministic oracle for tests. Each Evaluate call consumes
// the next scripted step; the final step repeats once the script is exhausted.
// An optional Delay simulates a slow oracle for timeout and back-pressure
// tests.
type StubOracle struct {
	mu    sync.Mutex
	Steps []StubStep
	Delay time.Duration
	calls int
}

// StubStep is one scripted oracle interaction.
type StubStep struct {
	Response *Response
	Err      error
}

func (s *StubOracle) Evaluate(ctx context.Context, req *Request) (*Response, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	idx := s.calls
	s.calls++
	if idx >= len(s.Steps) {
		idx = len(s.Steps) - 1
	}
	step := s.Steps[idx]
	s.mu.Unlock()

	return step.Response, step.Err
}

// Calls reports how many times Evaluate ran.
func (s *StubOracle) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// StubReviewer is a deterministic reviewer for oversight tests.
type StubReviewer struct {
	mu       sync.Mutex
	Response *ReviewResponse
	Err      error
	Delay    time.Duration
	Block    chan struct{} // when set, Review waits on it (or ctx)
	calls    int
}

func (s *StubReviewer) Review(ctx context.Context, req *ReviewRequest) (*ReviewResponse, error) {
	if s.Block != nil {
		select {
		case <-s.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.Response, s.Err
}

func (s *StubReviewer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
