package session

import (
	"context"
	"sync"
	"time"

	"github.com/mohit-sharma-1733/testing-platform/internal/models"
	"github.com/mohit-sharma-1733/testing-platform/internal/utils"
)

// DefaultQuietPeriod is the trailing debounce window for progress autosave
const DefaultQuietPeriod = 1500 * time.Millisecond

// SnapshotFunc captures the state to persist at call time, not at schedule
// time. It runs on the autosave goroutine.
type SnapshotFunc func() models.ProgressUpdate

// SaveFunc performs one persistence call against the backend
type SaveFunc func(ctx context.Context, progress models.ProgressUpdate) error

// Synchronizer coalesces bursts of local state changes into a single outbound
// persistence call per quiet period (trailing-edge debounce). Persistence is
// fire-and-forget: a failed call is reported to the observer and never
// retried; concurrent calls are never issued.
type Synchronizer struct {
	mu        sync.Mutex
	quiet     time.Duration
	snapshot  SnapshotFunc
	save      SaveFunc
	onSaving  func(saving bool)
	onResult  func(err error)
	logger    utils.Logger
	pending   *time.Timer
	inFlight  bool
	rearm     bool
	suspended bool
	closed    bool
	saving    bool
}

// NewSynchronizer builds a synchronizer. onSaving and onResult may be nil;
// they are invoked without internal locks held.
func NewSynchronizer(quiet time.Duration, snapshot SnapshotFunc, save SaveFunc, onSaving func(bool), onResult func(error), logger utils.Logger) *Synchronizer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Synchronizer{
		quiet:    quiet,
		snapshot: snapshot,
		save:     save,
		onSaving: onSaving,
		onResult: onResult,
		logger:   logger,
	}
}

// Trigger records a local state change. Each trigger cancels any pending
// scheduled call and reschedules one quiet period from now, so a burst of
// changes produces exactly one call after activity stops.
func (s *Synchronizer) Trigger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.suspended {
		return
	}
	s.armLocked(true)
}

// Poke records a passive change (a timer tick). It arms the quiet period only
// when nothing is already scheduled, so the running clock yields periodic
// saves without starving a pending debounced call.
func (s *Synchronizer) Poke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.suspended {
		return
	}
	s.armLocked(false)
}

func (s *Synchronizer) armLocked(reset bool) {
	if s.pending != nil {
		if !reset {
			return
		}
		s.pending.Stop()
	}
	s.pending = time.AfterFunc(s.quiet, s.fire)
}

func (s *Synchronizer) fire() {
	s.mu.Lock()
	s.pending = nil
	if s.closed || s.suspended {
		s.mu.Unlock()
		return
	}
	if s.inFlight {
		// a call is already on the wire; queue for the next quiet period
		// instead of overlapping
		s.rearm = true
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	s.saving = true
	s.mu.Unlock()

	if s.onSaving != nil {
		s.onSaving(true)
	}

	progress := s.snapshot()
	err := s.save(context.Background(), progress)

	s.mu.Lock()
	s.inFlight = false
	s.saving = false
	rearm := s.rearm && !s.closed && !s.suspended
	s.rearm = false
	if rearm {
		s.armLocked(true)
	}
	s.mu.Unlock()

	if s.onSaving != nil {
		s.onSaving(false)
	}
	if err != nil {
		// silent loss: the session continues and the next trigger tries again
		s.logger.Error("Failed to save progress",
			"current_question_index", progress.CurrentQuestionIndex,
			"remaining_time", progress.RemainingTime,
			"error", err)
	}
	if s.onResult != nil {
		s.onResult(err)
	}
}

// Saving reports whether a persistence call is currently in flight
func (s *Synchronizer) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// Suspend discards any pending scheduled call and ignores new triggers until
// Resume. An in-flight call is allowed to drain. Used while a submission is in
// progress so a stale write cannot race it.
func (s *Synchronizer) Suspend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suspended = true
	s.rearm = false
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// Resume re-enables triggers after a Suspend
func (s *Synchronizer) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.suspended = false
	}
}

// Close permanently stops the synchronizer, discarding any pending scheduled
// call. It does not cancel a call already in flight; that call completes or
// fails silently.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.rearm = false
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}
