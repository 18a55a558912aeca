package repository

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrForbidden       = errors.New("forbidden")
)

// Closer is implemented by the per-session state machines.
type Closer interface {
	Close()
}

type sessionEntry[T Closer] struct {
	owner   string
	value   T
	touched time.Time
}

// SessionStore keeps live sessions in memory, keyed by session id and owned by
// one merchant. Removed sessions are closed outside the store lock.
type SessionStore[T Closer] struct {
	mu    sync.Mutex
	items map[string]*sessionEntry[T]
	now   func() time.Time
}

func NewSessionStore[T Closer]() *SessionStore[T] {
	return &SessionStore[T]{
		items: make(map[string]*sessionEntry[T]),
		now:   time.Now,
	}
}

func (s *SessionStore[T]) Put(id, owner string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[id] = &sessionEntry[T]{owner: owner, value: value, touched: s.now()}
}

// Get returns the session and marks it as used.
func (s *SessionStore[T]) Get(id, owner string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	e, ok := s.items[id]
	if !ok {
		return zero, ErrSessionNotFound
	}
	if e.owner != owner {
		return zero, ErrForbidden
	}
	e.touched = s.now()
	return e.value, nil
}

// Remove deletes the session and closes it.
func (s *SessionStore[T]) Remove(id, owner string) error {
	s.mu.Lock()
	e, ok := s.items[id]
	switch {
	case !ok:
		s.mu.Unlock()
		return ErrSessionNotFound
	case e.owner != owner:
		s.mu.Unlock()
		return ErrForbidden
	}
	delete(s.items, id)
	s.mu.Unlock()

	e.value.Close()
	return nil
}

// Sweep closes every session idle for longer than idle and returns how many
// were removed.
func (s *SessionStore[T]) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)
	return s.removeWhere(func(e *sessionEntry[T]) bool {
		return e.touched.Before(cutoff)
	})
}

// CloseOwnedBy closes every session of owner.
func (s *SessionStore[T]) CloseOwnedBy(owner string) int {
	return s.removeWhere(func(e *sessionEntry[T]) bool {
		return e.owner == owner
	})
}

func (s *SessionStore[T]) CloseAll() int {
	return s.removeWhere(func(*sessionEntry[T]) bool { return true })
}

func (s *SessionStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *SessionStore[T]) removeWhere(match func(*sessionEntry[T]) bool) int {
	s.mu.Lock()
	var removed []T
	for id, e := range s.items {
		if match(e) {
			removed = append(removed, e.value)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	for _, v := range removed {
		v.Close()
	}
	return len(removed)
}
