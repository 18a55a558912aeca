package observable

import "sync"

// Slot holds at most one pending value that is consumed exactly once.
// A new Put replaces a value nobody took yet.
type Slot[T any] struct {
	mu      sync.Mutex
	value   T
	present bool
}

func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{}
}

func (s *Slot[T]) Put(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	s.present = true
}

// Take returns the pending value and clears the slot.
func (s *Slot[T]) Take() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if !s.present {
		return zero, false
	}
	v := s.value
	s.value = zero
	s.present = false
	return v, true
}

// Pending reports whether a value is waiting without consuming it.
func (s *Slot[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.present
}
