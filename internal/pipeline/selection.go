package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/wibaek/soma-hands-on-2/internal/domain"
)

// Selection fans a selected station out to registered listeners and keeps
// the most recent selection.
type Selection struct {
	mu        sync.Mutex
	listeners map[int]func(domain.StationReading)
	nextID    int
	last      atomic.Pointer[domain.StationReading]
}

// NewSelection creates an empty Selection.
func NewSelection() *Selection {
	return &Selection{listeners: make(map[int]func(domain.StationReading))}
}

// OnStationSelected registers fn and returns a function that unregisters it.
func (s *Selection) OnStationSelected(fn func(domain.StationReading)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Notify records r as the current selection and calls every listener in
// registration order. Listeners run on the caller's goroutine.
func (s *Selection) Notify(r domain.StationReading) {
	s.last.Store(&r)

	s.mu.Lock()
	fns := make([]func(domain.StationReading), 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(r)
	}
}

// Current returns the most recently selected station.
func (s *Selection) Current() (domain.StationReading, bool) {
	r := s.last.Load()
	if r == nil {
		return domain.StationReading{}, false
	}
	return *r, true
}
