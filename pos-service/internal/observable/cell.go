// Package observable holds the small state-publication primitives the session
// state machines are built on: a snapshot cell, a take-once slot and a signal.
package observable

import "sync"

// Cell holds the latest snapshot of a value and notifies subscribers on every
// replacement. Values are replaced whole; callers must treat what they read as
// immutable.
type Cell[T any] struct {
	mu     sync.Mutex
	value  T
	nextID int
	subs   map[int]func(T)
}

func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial, subs: make(map[int]func(T))}
}

// Current returns the latest snapshot.
func (c *Cell[T]) Current() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set replaces the snapshot and calls every subscriber with it. Subscribers run
// on the caller's goroutine after the cell lock is released.
func (c *Cell[T]) Set(value T) {
	c.mu.Lock()
	c.value = value
	subs := make([]func(T), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
}

// Subscribe registers fn, immediately delivers the current snapshot to it and
// returns a function that removes the subscription.
func (c *Cell[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	current := c.value
	c.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (c *Cell[T]) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}
