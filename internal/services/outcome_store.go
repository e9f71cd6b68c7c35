package services

import (
	"sync"

	"apiadventures/internal/domain"
)

// OutcomeStore holds the current Outcome and notifies subscribers when it is
// replaced. Set is meant to be called from a single goroutine.
type OutcomeStore struct {
	mu      sync.Mutex
	current domain.Outcome
	subs    map[int]func(domain.Outcome)
	nextID  int
}

func NewOutcomeStore() *OutcomeStore {
	return &OutcomeStore{
		current: domain.ProductsNotLoaded{},
		subs:    map[int]func(domain.Outcome){},
	}
}

func (s *OutcomeStore) Current() domain.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set replaces the outcome and calls every subscriber before returning.
func (s *OutcomeStore) Set(o domain.Outcome) {
	s.mu.Lock()
	s.current = o
	subs := make([]func(domain.Outcome), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(o)
	}
}

// Subscribe calls fn with the current outcome, then on every Set until the
// returned func is called.
func (s *OutcomeStore) Subscribe(fn func(domain.Outcome)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	current := s.current
	s.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *OutcomeStore) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
