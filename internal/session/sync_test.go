package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mohit-sharma-1733/testing-platform/internal/models"
	"github.com/mohit-sharma-1733/testing-platform/internal/utils"
)

const testQuiet = 20 * time.Millisecond

// saveRecorder captures persistence calls and can hold them open or fail them
type saveRecorder struct {
	mu      sync.Mutex
	calls   []models.ProgressUpdate
	block   chan struct{}
	failing bool
}

func (r *saveRecorder) save(ctx context.Context, progress models.ProgressUpdate) error {
	r.mu.Lock()
	r.calls = append(r.calls, progress)
	block := r.block
	failing := r.failing
	r.mu.Unlock()

	if block != nil {
		<-block
	}
	if failing {
		return errors.New("backend unreachable")
	}
	return nil
}

func (r *saveRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *saveRecorder) last() models.ProgressUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

type mutableProgress struct {
	mu       sync.Mutex
	progress models.ProgressUpdate
}

func (m *mutableProgress) set(index, remaining int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = models.ProgressUpdate{CurrentQuestionIndex: index, RemainingTime: remaining}
}

func (m *mutableProgress) snapshot() models.ProgressUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

func newTestSynchronizer(state *mutableProgress, recorder *saveRecorder, onSaving func(bool), onResult func(error)) *Synchronizer {
	return NewSynchronizer(testQuiet, state.snapshot, recorder.save, onSaving, onResult, utils.NewDevelopmentLogger())
}

func TestSynchronizerCoalescesBursts(t *testing.T) {
	state := &mutableProgress{}
	recorder := &saveRecorder{}
	s := newTestSynchronizer(state, recorder, nil, nil)
	defer s.Close()

	// a burst of changes within one quiet period
	for i := 0; i < 5; i++ {
		state.set(i, 100-i)
		s.Trigger()
	}

	require.Eventually(t, func() bool { return recorder.count() == 1 }, time.Second, time.Millisecond)

	// the call carries the state as of fire time, not first-trigger time
	last := recorder.last()
	require.Equal(t, 4, last.CurrentQuestionIndex)
	require.Equal(t, 96, last.RemainingTime)

	// no further calls without further triggers
	time.Sleep(3 * testQuiet)
	require.Equal(t, 1, recorder.count())
}

func TestSynchronizerNeverOverlapsCalls(t *testing.T) {
	state := &mutableProgress{}
	recorder := &saveRecorder{block: make(chan struct{})}
	s := newTestSynchronizer(state, recorder, nil, nil)
	defer s.Close()

	state.set(1, 50)
	s.Trigger()
	require.Eventually(t, func() bool { return recorder.count() == 1 }, time.Second, time.Millisecond)

	// trigger while the first call is still on the wire
	state.set(2, 49)
	s.Trigger()
	time.Sleep(3 * testQuiet)
	require.Equal(t, 1, recorder.count(), "second call must wait for the first to finish")

	close(recorder.block)
	recorder.mu.Lock()
	recorder.block = nil
	recorder.mu.Unlock()

	require.Eventually(t, func() bool { return recorder.count() == 2 }, time.Second, time.Millisecond)
	require.Equal(t, 2, recorder.last().CurrentQuestionIndex)
}

func TestSynchronizerFailureIsNotRetried(t *testing.T) {
	state := &mutableProgress{}
	recorder := &saveRecorder{failing: true}

	var results []error
	var resultMu sync.Mutex
	s := newTestSynchronizer(state, recorder, nil, func(err error) {
		resultMu.Lock()
		results = append(results, err)
		resultMu.Unlock()
	})
	defer s.Close()

	s.Trigger()
	require.Eventually(t, func() bool { return recorder.count() == 1 }, time.Second, time.Millisecond)

	time.Sleep(3 * testQuiet)
	require.Equal(t, 1, recorder.count(), "failed persistence must not be retried")

	resultMu.Lock()
	defer resultMu.Unlock()
	require.Len(t, results, 1)
	require.Error(t, results[0])
}

func TestSynchronizerSavingObservable(t *testing.T) {
	state := &mutableProgress{}
	recorder := &saveRecorder{block: make(chan struct{})}

	var transitions []bool
	var mu sync.Mutex
	s := newTestSynchronizer(state, recorder, func(saving bool) {
		mu.Lock()
		transitions = append(transitions, saving)
		mu.Unlock()
	}, nil)
	defer s.Close()

	s.Trigger()
	require.Eventually(t, func() bool { return s.Saving() }, time.Second, time.Millisecond)

	close(recorder.block)
	require.Eventually(t, func() bool { return !s.Saving() }, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []bool{true, false}, transitions)
}

func TestSynchronizerPokeDoesNotPostponePending(t *testing.T) {
	state := &mutableProgress{}
	recorder := &saveRecorder{}
	s := newTestSynchronizer(state, recorder, nil, nil)
	defer s.Close()

	state.set(3, 30)
	s.Trigger()

	// passive ticks must not starve the pending debounced call
	deadline := time.Now().Add(testQuiet / 2)
	for time.Now().Before(deadline) {
		s.Poke()
		time.Sleep(time.Millisecond)
	}

	require.Eventually(t, func() bool { return recorder.count() >= 1 }, time.Second, time.Millisecond)
	require.Equal(t, 3, recorder.last().CurrentQuestionIndex)
}

func TestSynchronizerSuspendDiscardsPending(t *testing.T) {
	state := &mutableProgress{}
	recorder := &saveRecorder{}
	s := newTestSynchronizer(state, recorder, nil, nil)
	defer s.Close()

	s.Trigger()
	s.Suspend()

	time.Sleep(3 * testQuiet)
	require.Zero(t, recorder.count(), "suspended synchronizer must not fire")

	// triggers while suspended are ignored
	s.Trigger()
	time.Sleep(3 * testQuiet)
	require.Zero(t, recorder.count())

	s.Resume()
	s.Trigger()
	require.Eventually(t, func() bool { return recorder.count() == 1 }, time.Second, time.Millisecond)
}

func TestSynchronizerCloseDiscardsPending(t *testing.T) {
	state := &mutableProgress{}
	recorder := &saveRecorder{}
	s := newTestSynchronizer(state, recorder, nil, nil)

	s.Trigger()
	s.Close()

	time.Sleep(3 * testQuiet)
	require.Zero(t, recorder.count())
}
