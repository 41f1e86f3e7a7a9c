// Package debounce delays propagation of a rapidly changing value until it settles.
package debounce

import (
	"sync"
	"time"
)

// Ticket identifies one scheduled emission. Zero is never issued.
type Ticket uint64

// Timer stops a scheduled callback.
type Timer interface {
	Stop() bool
}

// AfterFunc arranges for f to run after d and returns a handle to cancel it.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Scheduler emits only the last value scheduled within a delay window.
// Every Schedule call supersedes the pending one and restarts the delay.
type Scheduler[T any] struct {
	delay     time.Duration
	emit      func(Ticket, T)
	afterFunc AfterFunc

	mu      sync.Mutex
	timer   Timer
	current Ticket
	pending bool
	stopped bool
}

// Option configures the Scheduler.
type Option[T any] func(*Scheduler[T])

// WithAfterFunc replaces the timer source, used by tests to drive time by hand.
func WithAfterFunc[T any](fn AfterFunc) Option[T] {
	return func(s *Scheduler[T]) {
		if fn != nil {
			s.afterFunc = fn
		}
	}
}

// New creates a scheduler calling emit with the ticket returned by the
// Schedule call that produced the value.
func New[T any](delay time.Duration, emit func(Ticket, T), opts ...Option[T]) *Scheduler[T] {
	s := &Scheduler[T]{
		delay:     delay,
		emit:      emit,
		afterFunc: realAfterFunc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule arms the timer for value, cancelling any pending emission.
// It returns zero after Stop.
func (s *Scheduler[T]) Schedule(value T) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return 0
	}
	if s.timer != nil {
		s.timer.Stop()
	}

	s.current++
	ticket := s.current
	s.pending = true
	s.timer = s.afterFunc(s.delay, func() { s.fire(ticket, value) })

	return ticket
}

func (s *Scheduler[T]) fire(ticket Ticket, value T) {
	s.mu.Lock()
	if !s.pending || ticket != s.current {
		// superseded after the timer already started running
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.timer = nil
	s.mu.Unlock()

	s.emit(ticket, value)
}

// Cancel drops the pending emission, if any.
func (s *Scheduler[T]) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
}

// Pending reports whether an emission is scheduled.
func (s *Scheduler[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Stop cancels the pending emission and refuses further schedules.
func (s *Scheduler[T]) Stop() {
	s.Cancel()

	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}
