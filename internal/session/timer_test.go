package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newManualTimer starts a timer whose background ticker effectively never
// fires, so tests drive the clock through Tick directly.
func newManualTimer(remaining int, onTick func(int), onExpire func()) *Timer {
	timer := NewTimerWithInterval(remaining, time.Hour, onTick, onExpire)
	timer.Start()
	return timer
}

func TestTimerCountsDownToExpiry(t *testing.T) {
	var expirations int32
	var lastRemaining int32 = -1

	timer := newManualTimer(3,
		func(remaining int) { atomic.StoreInt32(&lastRemaining, int32(remaining)) },
		func() { atomic.AddInt32(&expirations, 1) })
	defer timer.Stop()

	require.Equal(t, TimerRunning, timer.State())

	require.True(t, timer.Tick())
	require.Equal(t, 2, timer.Remaining())
	require.True(t, timer.Tick())
	require.False(t, timer.Tick()) // third tick reaches zero

	require.Equal(t, TimerExpired, timer.State())
	require.Equal(t, 0, timer.Remaining())
	require.Equal(t, int32(1), atomic.LoadInt32(&expirations))
	require.Equal(t, int32(0), atomic.LoadInt32(&lastRemaining))
}

func TestTimerTicksAfterExpiryAreNoOps(t *testing.T) {
	var expirations int32
	timer := newManualTimer(1, nil, func() { atomic.AddInt32(&expirations, 1) })
	defer timer.Stop()

	timer.Tick()
	for i := 0; i < 5; i++ {
		require.False(t, timer.Tick())
	}

	require.Equal(t, int32(1), atomic.LoadInt32(&expirations))
	require.Equal(t, 0, timer.Remaining())
}

func TestTimerStopCancelsCountdown(t *testing.T) {
	var expirations int32
	timer := newManualTimer(10, nil, func() { atomic.AddInt32(&expirations, 1) })

	timer.Stop()

	require.Equal(t, TimerStopped, timer.State())
	require.False(t, timer.Tick())
	require.Equal(t, 10, timer.Remaining())
	require.Equal(t, int32(0), atomic.LoadInt32(&expirations))

	// Stop is idempotent
	timer.Stop()
}

func TestTimerZeroBudgetExpiresImmediately(t *testing.T) {
	var expirations int32
	timer := NewTimerWithInterval(0, time.Hour, nil, func() { atomic.AddInt32(&expirations, 1) })
	timer.Start()
	defer timer.Stop()

	require.Equal(t, TimerExpired, timer.State())
	require.Equal(t, int32(1), atomic.LoadInt32(&expirations))
}

func TestTimerRealTicking(t *testing.T) {
	var expired = make(chan struct{})
	timer := NewTimerWithInterval(3, 5*time.Millisecond, nil, func() { close(expired) })
	timer.Start()
	defer timer.Stop()

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not expire")
	}
	require.Equal(t, 0, timer.Remaining())
}
