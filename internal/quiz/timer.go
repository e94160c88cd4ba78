package quiz

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Timer calls tick once per interval while started. It holds no quiz state.
type Timer struct {
	interval time.Duration

	mu sync.Mutex
	s  *gocron.Scheduler
}

func NewTimer(interval time.Duration) *Timer {
	if interval <= 0 {
		interval = time.Second
	}
	return &Timer{interval: interval}
}

// Start schedules tick; the first call happens one interval from now. A
// running timer is left as it is.
func (t *Timer) Start(tick func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.s != nil {
		return nil
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if _, err := s.Every(t.interval).WaitForSchedule().Do(tick); err != nil {
		return err
	}
	s.StartAsync()
	t.s = s
	return nil
}

// Stop never blocks, so it is safe to call from inside tick. A tick that is
// already due may still be delivered; callers must tolerate it.
func (t *Timer) Stop() {
	t.mu.Lock()
	s := t.s
	t.s = nil
	t.mu.Unlock()
	if s != nil {
		go s.Stop()
	}
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.s != nil
}
