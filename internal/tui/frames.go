package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameMsg delivers a scheduled drag frame back into the update loop.
type frameMsg struct {
	gen int
}

// frameScheduler implements drag.Scheduler on top of tea.Tick, so frame
// callbacks run inside Update like every other event. Scheduling replaces
// any pending frame; a stale tick is recognised by its generation.
type frameScheduler struct {
	interval time.Duration
	gen      int
	pending  func()
	armed    bool
}

func newFrameScheduler(interval time.Duration) *frameScheduler {
	return &frameScheduler{interval: interval}
}

// Schedule implements drag.Scheduler.
func (s *frameScheduler) Schedule(fn func()) func() {
	s.gen++
	gen := s.gen
	s.pending = fn
	s.armed = true
	return func() {
		if s.gen == gen {
			s.pending = nil
		}
	}
}

// cmd returns the tick for a frame scheduled since the last call.
func (s *frameScheduler) cmd() tea.Cmd {
	if !s.armed {
		return nil
	}
	s.armed = false
	gen := s.gen
	return tea.Tick(s.interval, func(time.Time) tea.Msg {
		return frameMsg{gen: gen}
	})
}

// fire runs the pending callback if msg belongs to the latest frame.
func (s *frameScheduler) fire(msg frameMsg) {
	if msg.gen != s.gen {
		return
	}
	s.flush()
}

// flush runs the pending callback now.
func (s *frameScheduler) flush() {
	if s.pending == nil {
		return
	}
	fn := s.pending
	s.pending = nil
	fn()
}
