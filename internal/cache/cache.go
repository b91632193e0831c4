package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[T any] struct {
	payload   T
	fetchedAt time.Time
}

// Store is a time-boxed memoization wrapper keyed by scope. The payload is
// replaced atomically as a whole after a successful fetch; a failed refresh
// leaves any existing entry untouched.
type Store[T any] struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]entry[T]
	group   singleflight.Group
}

// New creates a store whose entries expire after ttl.
func New[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		ttl:     ttl,
		entries: make(map[string]entry[T]),
	}
}

// Get returns the cached payload for scope when it is fresh and force is
// false; otherwise it invokes fetch. Concurrent callers for the same scope
// share one in-flight fetch.
func (s *Store[T]) Get(scope string, force bool, fetch func() (T, error)) (T, error) {
	if !force {
		if payload, ok := s.fresh(scope); ok {
			return payload, nil
		}
	}

	value, err, _ := s.group.Do(scope, func() (interface{}, error) {
		if !force {
			// A waiter may have refreshed the entry while we queued.
			if payload, ok := s.fresh(scope); ok {
				return payload, nil
			}
		}
		payload, err := fetch()
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.entries[scope] = entry[T]{payload: payload, fetchedAt: time.Now()}
		s.mu.Unlock()
		return payload, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}

// Peek returns the cached payload for scope regardless of age.
func (s *Store[T]) Peek(scope string) (T, bool) {
	s.mu.RLock()
	e, ok := s.entries[scope]
	s.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	return e.payload, true
}

// Clear drops the entry for scope.
func (s *Store[T]) Clear(scope string) {
	s.mu.Lock()
	delete(s.entries, scope)
	s.mu.Unlock()
}

// Reset drops every entry.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	s.entries = make(map[string]entry[T])
	s.mu.Unlock()
}

func (s *Store[T]) fresh(scope string) (T, bool) {
	s.mu.RLock()
	e, ok := s.entries[scope]
	s.mu.RUnlock()
	if !ok || time.Since(e.fetchedAt) >= s.ttl {
		var zero T
		return zero, false
	}
	return e.payload, true
}
