// Package render implements the coalescing render scheduler: damage from
// any number of procs in a single cooperative tick collapses into at most
// one repaint.
package render

import (
	"sync"

	"github.com/dshills/ravel/internal/events"
)

// Scheduler coalesces repeated Schedule calls within one tick into a
// single on_render emission when Flush runs.
type Scheduler struct {
	mu       sync.Mutex
	pending  bool
	onRender events.Subscribers[struct{}]
	waiters  []chan struct{}
}

// Schedule marks a render as pending. Idempotent: repeated calls before
// the next Flush have no additional effect.
func (s *Scheduler) Schedule() {
	s.mu.Lock()
	s.pending = true
	s.mu.Unlock()
}

// Pending reports whether a render is queued for the next Flush.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Flush clears the pending flag and then fires on_render exactly once if a
// render was pending. Called once per cooperative tick by the engine's run
// loop. Returns whether a render actually fired.
func (s *Scheduler) Flush() bool {
	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return false
	}
	s.pending = false
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()

	s.onRender.Emit(struct{}{})
	for _, w := range waiters {
		close(w)
	}
	return true
}

// OnRender registers a listener invoked on every render that actually
// fires, returning a handle to detach it.
func (s *Scheduler) OnRender(fn func()) *events.Subscription {
	return s.onRender.Subscribe(func(struct{}) { fn() })
}

// NextRender returns a channel closed on the next render that fires after
// this call, regardless of whether one is already pending.
func (s *Scheduler) NextRender() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{})
	s.waiters = append(s.waiters, ch)
	return ch
}
