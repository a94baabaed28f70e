package session

import (
	"sync"
	"time"
)

// TimerState is the countdown clock state
type TimerState int

const (
	TimerStopped TimerState = iota
	TimerRunning
	TimerExpired
)

func (s TimerState) String() string {
	switch s {
	case TimerRunning:
		return "running"
	case TimerExpired:
		return "expired"
	default:
		return "stopped"
	}
}

// Timer drives the session's remaining time budget. It decrements by exactly
// one unit per tick, clamped at zero, and fires the expiry callback exactly
// once the instant the budget reaches zero. Ticks after expiry are no-ops.
type Timer struct {
	mu        sync.Mutex
	state     TimerState
	remaining int
	interval  time.Duration
	stop      chan struct{}
	stopOnce  sync.Once
	onTick    func(remaining int)
	onExpire  func()
}

// NewTimer creates a countdown starting at remaining seconds with the standard
// one-second tick. Callbacks may be nil.
func NewTimer(remaining int, onTick func(remaining int), onExpire func()) *Timer {
	return NewTimerWithInterval(remaining, time.Second, onTick, onExpire)
}

// NewTimerWithInterval is NewTimer with an injectable tick interval, so tests
// are not bound to wall-clock seconds.
func NewTimerWithInterval(remaining int, interval time.Duration, onTick func(remaining int), onExpire func()) *Timer {
	if remaining < 0 {
		remaining = 0
	}
	return &Timer{
		state:     TimerStopped,
		remaining: remaining,
		interval:  interval,
		stop:      make(chan struct{}),
		onTick:    onTick,
		onExpire:  onExpire,
	}
}

// Start transitions the timer to Running and begins ticking in a background
// goroutine. A timer created with a zero budget expires immediately.
func (t *Timer) Start() {
	t.mu.Lock()
	if t.state != TimerStopped {
		t.mu.Unlock()
		return
	}
	if t.remaining <= 0 {
		t.state = TimerExpired
		t.mu.Unlock()
		if t.onExpire != nil {
			t.onExpire()
		}
		return
	}
	t.state = TimerRunning
	t.mu.Unlock()

	go t.run()
}

func (t *Timer) run() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			if !t.Tick() {
				return
			}
		}
	}
}

// Tick advances the countdown by one unit. It returns false once the timer is
// no longer running. Exported so tests can drive the clock deterministically.
func (t *Timer) Tick() bool {
	t.mu.Lock()
	if t.state != TimerRunning {
		t.mu.Unlock()
		return false
	}
	t.remaining--
	if t.remaining <= 0 {
		t.remaining = 0
		t.state = TimerExpired
	}
	remaining := t.remaining
	expired := t.state == TimerExpired
	t.mu.Unlock()

	if t.onTick != nil {
		t.onTick(remaining)
	}
	if expired {
		if t.onExpire != nil {
			t.onExpire()
		}
		return false
	}
	return true
}

// Stop cancels the countdown. Safe to call multiple times and after expiry;
// it never re-fires callbacks.
func (t *Timer) Stop() {
	t.mu.Lock()
	if t.state == TimerRunning {
		t.state = TimerStopped
	}
	t.mu.Unlock()

	t.stopOnce.Do(func() { close(t.stop) })
}

// Remaining returns the seconds left on the budget
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// State returns the current timer state
func (t *Timer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
