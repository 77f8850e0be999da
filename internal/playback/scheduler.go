package playback

import (
	"sync"
	"time"
)

// Scheduler invokes a callback once per display frame until stopped.
type Scheduler interface {
	Start(tick func())
	Stop()
}

// TickerScheduler drives the callback from a time.Ticker in its own
// goroutine.
type TickerScheduler struct {
	Interval time.Duration

	mu   sync.Mutex
	done chan struct{}
}

func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = 30
	}
	return &TickerScheduler{Interval: time.Second / time.Duration(fps)}
}

func (s *TickerScheduler) Start(tick func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	done := make(chan struct{})
	s.done = done

	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// Stop may race with a pending tick.
				select {
				case <-done:
					return
				default:
				}
				tick()
			}
		}
	}()
}

// Stop may be called from inside the callback.
func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return
	}
	close(s.done)
	s.done = nil
}

func (s *TickerScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

// ManualScheduler runs the callback only when Step is called.
type ManualScheduler struct {
	mu   sync.Mutex
	tick func()
}

func (s *ManualScheduler) Start(tick func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tick == nil {
		s.tick = tick
	}
}

func (s *ManualScheduler) Stop() {
	s.mu.Lock()
	s.tick = nil
	s.mu.Unlock()
}

func (s *ManualScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick != nil
}

// Step runs up to n frames and returns how many actually ran.
func (s *ManualScheduler) Step(n int) int {
	ran := 0
	for i := 0; i < n; i++ {
		s.mu.Lock()
		tick := s.tick
		s.mu.Unlock()
		if tick == nil {
			break
		}
		tick()
		ran++
	}
	return ran
}
