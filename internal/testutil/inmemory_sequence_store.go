package testutil

import (
	"context"
	"sync"

	"github.com/agencyops/agencyops/internal/domain/sequence"
	ierr "github.com/agencyops/agencyops/internal/errors"
)

var _ sequence.Repository = (*InMemorySequenceStore)(nil)

// InMemorySequenceStore implements sequence.Repository
type InMemorySequenceStore struct {
	mu       sync.Mutex
	counters map[string]int64
	failWith error
}

func NewInMemorySequenceStore() *InMemorySequenceStore {
	return &InMemorySequenceStore{counters: make(map[string]int64)}
}

func (s *InMemorySequenceStore) Next(_ context.Context, key string) (int64, error) {
	if err := sequence.ValidateKey(key); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return 0, ierr.WithError(s.failWith).
			WithHint("Counter increment failed").
			Mark(ierr.ErrDatabase)
	}
	s.counters[key]++
	return s.counters[key], nil
}

func (s *InMemorySequenceStore) Current(_ context.Context, key string) (int64, error) {
	if err := sequence.ValidateKey(key); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[key], nil
}

// Set forces a counter value, e.g. to simulate a reset
func (s *InMemorySequenceStore) Set(key string, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key] = value
}

// FailWith makes every subsequent Next fail until cleared with nil
func (s *InMemorySequenceStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *InMemorySequenceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = make(map[string]int64)
	s.failWith = nil
}
