package game

import "sync/atomic"

// Shared hands a value from one loop to the other. Store publishes a new
// snapshot and Load returns the latest one; a reader may still see the
// previous value for a frame. The zero value loads the zero T.
type Shared[T any] struct {
	p atomic.Pointer[T]
}

func (s *Shared[T]) Store(v T) {
	s.p.Store(&v)
}

func (s *Shared[T]) Load() T {
	if p := s.p.Load(); p != nil {
		return *p
	}
	var zero T
	return zero
}
