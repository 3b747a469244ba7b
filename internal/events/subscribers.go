// Package events implements the listener-set-with-dispose-handle pattern
// used across the core state types: a component exposes an on_x
// subscription point, callers register a callback and get back a handle
// that detaches it, and kind replacement can tear down a whole batch of
// subscriptions at once without tracking them individually.
package events

import "sync"

// Subscription detaches a previously registered listener. Calling Unsubscribe
// more than once is a no-op.
type Subscription struct {
	once sync.Once
	fn   func()
}

// Unsubscribe removes the associated listener from its Subscribers set.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.fn != nil {
			s.fn()
		}
	})
}

// Subscribers is a set of listeners of type T, safe for concurrent use.
// Listeners are held in a map, so the order in which they are called is
// not defined. The zero value is ready to use.
type Subscribers[T any] struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]func(T)
}

// Subscribe registers fn and returns a handle to detach it later.
func (s *Subscribers[T]) Subscribe(fn func(T)) *Subscription {
	s.mu.Lock()
	if s.listeners == nil {
		s.listeners = make(map[uint64]func(T))
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return &Subscription{fn: func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}}
}

// Emit calls every currently registered listener with v. Listeners
// registered or removed by a callback mid-emit do not affect the current
// pass; Emit snapshots the set first.
func (s *Subscribers[T]) Emit(v T) {
	s.mu.Lock()
	snapshot := make([]func(T), 0, len(s.listeners))
	for _, fn := range s.listeners {
		snapshot = append(snapshot, fn)
	}
	s.mu.Unlock()

	for _, fn := range snapshot {
		fn(v)
	}
}

// Len reports the number of currently registered listeners.
func (s *Subscribers[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// UnsubscribeAll detaches every currently registered listener. Used when a
// Proc's live kind is replaced and its whole batch of subscriptions must be
// torn down at once.
func (s *Subscribers[T]) UnsubscribeAll() {
	s.mu.Lock()
	s.listeners = make(map[uint64]func(T))
	s.mu.Unlock()
}

// DisposeBag collects Subscriptions made against a live kind so they can
// all be torn down together when the kind is replaced.
type DisposeBag struct {
	mu   sync.Mutex
	subs []*Subscription
}

// Add tracks sub for later disposal.
func (b *DisposeBag) Add(sub *Subscription) {
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
}

// Dispose unsubscribes every tracked Subscription and clears the bag.
func (b *DisposeBag) Dispose() {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
