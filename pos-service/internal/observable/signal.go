package observable

import "sync"

// Signal fans a notification out to its current subscribers. Nothing is
// replayed to subscribers that join later.
type Signal[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(T)
}

func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{subs: make(map[int]func(T))}
}

// Subscribe registers fn and returns a function that removes it.
func (s *Signal[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Fire calls every subscriber with value on the caller's goroutine.
func (s *Signal[T]) Fire(value T) {
	s.mu.Lock()
	subs := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
}

// Invalidation tells subscribers that merchant credentials are no longer
// valid. An empty MerchantID means the terminal's own credentials.
type Invalidation struct {
	MerchantID string
	Reason     string
}

// CredentialSignal is the notifier passed to components that must react to
// revoked or expired merchant credentials.
type CredentialSignal = Signal[Invalidation]

func NewCredentialSignal() *CredentialSignal {
	return NewSignal[Invalidation]()
}
