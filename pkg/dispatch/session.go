package dispatch

import (
	"sync"
	"sync/atomic"

	"github.com/entrhq/voxbrowse/pkg/command"
)

// Confirmation is a yes/no question the assistant is waiting on.
type Confirmation struct {
	Action   command.Kind
	Position int
}

// Session is the mutable conversation state shared between command handling
// and the read-aloud goroutine.
type Session struct {
	mu      sync.Mutex
	pending *Confirmation

	reading       atomic.Bool
	stopRequested atomic.Bool
}

// SetPending records a question awaiting yes or no, replacing any earlier one.
func (s *Session) SetPending(c Confirmation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &c
}

// Pending returns the outstanding question, if any.
func (s *Session) Pending() (Confirmation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Confirmation{}, false
	}
	return *s.pending, true
}

// ClearPending drops the outstanding question.
func (s *Session) ClearPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// Reading reports whether a read-aloud is in progress.
func (s *Session) Reading() bool {
	return s.reading.Load()
}

// StopRequested reports whether the current read-aloud was asked to stop.
func (s *Session) StopRequested() bool {
	return s.stopRequested.Load()
}

// RequestStop asks the reader to stop at its next chunk boundary.
func (s *Session) RequestStop() {
	s.stopRequested.Store(true)
}

func (s *Session) beginReading() {
	s.stopRequested.Store(false)
	s.reading.Store(true)
}

func (s *Session) endReading() {
	s.reading.Store(false)
}
