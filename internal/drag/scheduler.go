package drag

import (
	"sync"
	"time"
)

// DefaultFrameInterval approximates one display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// TimerScheduler schedules frames on timers. Callbacks run while holding
// Lock, so hosts that deliver events from another goroutine share the same
// lock to keep the controller single-threaded.
type TimerScheduler struct {
	Interval time.Duration
	Lock     sync.Locker
}

// NewTimerScheduler returns a scheduler firing after interval.
func NewTimerScheduler(interval time.Duration, lock sync.Locker) *TimerScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TimerScheduler{Interval: interval, Lock: lock}
}

// Schedule implements Scheduler.
func (s *TimerScheduler) Schedule(fn func()) func() {
	var (
		mu        sync.Mutex
		cancelled bool
	)
	t := time.AfterFunc(s.Interval, func() {
		if s.Lock != nil {
			s.Lock.Lock()
			defer s.Lock.Unlock()
		}
		mu.Lock()
		skip := cancelled
		mu.Unlock()
		if !skip {
			fn()
		}
	})
	return func() {
		mu.Lock()
		cancelled = true
		mu.Unlock()
		t.Stop()
	}
}
