package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// MapStore keys entries by (scope, id) with independent per-id freshness.
// Adding or refreshing one id never invalidates sibling ids, which lets
// batched queries refetch only the stale subset.
type MapStore[T any] struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]map[string]entry[T]
	group   singleflight.Group
}

// NewMap creates a map store whose per-id entries expire after ttl.
func NewMap[T any](ttl time.Duration) *MapStore[T] {
	return &MapStore[T]{
		ttl:     ttl,
		entries: make(map[string]map[string]entry[T]),
	}
}

// Get returns the cached payload for (scope, id) when fresh and force is
// false; otherwise it invokes fetch for just that id.
func (s *MapStore[T]) Get(scope, id string, force bool, fetch func() (T, error)) (T, error) {
	if !force {
		if payload, ok := s.fresh(scope, id); ok {
			return payload, nil
		}
	}

	key := scope + "\x00" + id
	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		if !force {
			if payload, ok := s.fresh(scope, id); ok {
				return payload, nil
			}
		}
		payload, err := fetch()
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		ids, ok := s.entries[scope]
		if !ok {
			ids = make(map[string]entry[T])
			s.entries[scope] = ids
		}
		ids[id] = entry[T]{payload: payload, fetchedAt: time.Now()}
		s.mu.Unlock()
		return payload, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}

// Peek returns the cached payload for (scope, id) regardless of age.
func (s *MapStore[T]) Peek(scope, id string) (T, bool) {
	s.mu.RLock()
	e, ok := s.entries[scope][id]
	s.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	return e.payload, true
}

// ClearScope drops every id under scope.
func (s *MapStore[T]) ClearScope(scope string) {
	s.mu.Lock()
	delete(s.entries, scope)
	s.mu.Unlock()
}

// Reset drops every entry.
func (s *MapStore[T]) Reset() {
	s.mu.Lock()
	s.entries = make(map[string]map[string]entry[T])
	s.mu.Unlock()
}

func (s *MapStore[T]) fresh(scope, id string) (T, bool) {
	s.mu.RLock()
	e, ok := s.entries[scope][id]
	s.mu.RUnlock()
	if !ok || time.Since(e.fetchedAt) >= s.ttl {
		var zero T
		return zero, false
	}
	return e.payload, true
}
