package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mohit-sharma-1733/testing-platform/internal/models"
	"github.com/mohit-sharma-1733/testing-platform/internal/utils"
)

// Backend is the slice of the Backend Session API the controller consumes.
// internal/backend provides the production implementation; tests substitute
// fakes.
type Backend interface {
	GetTest(ctx context.Context, testID int64) (*models.Test, error)
	GetTestQuestions(ctx context.Context, testID int64) (*models.SessionBootstrap, error)
	UpdateProgress(ctx context.Context, testID int64, progress models.ProgressUpdate) error
	SubmitTest(ctx context.Context, testID int64, submission models.Submission) (*models.SubmitResult, error)
}

// Option configures a Controller
type Option func(*Controller)

// WithQuietPeriod overrides the autosave debounce window
func WithQuietPeriod(quiet time.Duration) Option {
	return func(c *Controller) { c.quiet = quiet }
}

// WithTickInterval overrides the countdown tick interval (tests only)
func WithTickInterval(interval time.Duration) Option {
	return func(c *Controller) { c.tickInterval = interval }
}

// WithListener attaches a state-change listener at construction time
func WithListener(l Listener) Option {
	return func(c *Controller) { c.listeners = append(c.listeners, l) }
}

// Controller orchestrates one user's taking session for one test: it owns the
// current question position, the answer store, the countdown timer and the
// progress synchronizer, and drives the submit protocol.
//
// All state transitions are serialized by an internal mutex; no transition is
// observable mid-update.
type Controller struct {
	mu sync.Mutex

	backend      Backend
	logger       utils.Logger
	testID       int64
	quiet        time.Duration
	tickInterval time.Duration

	test      *models.Test
	questions []models.Question
	sessionID int64
	index     int
	answers   *AnswerStore
	timer     *Timer
	sync      *Synchronizer

	state      State
	confirming bool
	saving     bool
	resultID   int64
	failure    string
	closed     bool

	listenerMu sync.Mutex
	listeners  []Listener
}

// NewController builds a controller for the given test. Call Start to fetch
// the session and begin the countdown.
func NewController(backend Backend, logger utils.Logger, testID int64, opts ...Option) *Controller {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	c := &Controller{
		backend:      backend,
		logger:       logger.With("component", "session", "test_id", testID),
		testID:       testID,
		quiet:        DefaultQuietPeriod,
		tickInterval: time.Second,
		state:        StateInitializing,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ===== LIFECYCLE =====

// Start fetches the test definition and the session bootstrap (saved answers,
// position, remaining time), then transitions to Active and starts the
// countdown. Initialization failure is fatal to the session: the controller
// lands in Failed and no retry is attempted.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateInitializing || c.timer != nil {
		c.mu.Unlock()
		return ErrSessionAlreadyStarted
	}
	c.mu.Unlock()

	c.logger.Info("Initializing test session")

	test, err := c.backend.GetTest(ctx, c.testID)
	if err != nil {
		return c.failInit(fmt.Errorf("failed to fetch test: %w", err))
	}
	boot, err := c.backend.GetTestQuestions(ctx, c.testID)
	if err != nil {
		return c.failInit(fmt.Errorf("failed to fetch session: %w", err))
	}

	remaining := boot.RemainingTime
	if remaining <= 0 {
		remaining = test.DurationSeconds()
	}

	c.mu.Lock()
	c.test = test
	c.questions = boot.Questions
	c.sessionID = boot.SessionID
	c.answers = NewAnswerStore(boot.Questions, boot.SavedAnswers)
	c.index = clampIndex(boot.CurrentQuestionIndex, len(boot.Questions))
	c.state = StateActive
	c.timer = NewTimerWithInterval(remaining, c.tickInterval, c.onTick, c.onExpire)
	c.sync = NewSynchronizer(c.quiet, c.progressSnapshot, c.saveProgress, c.onSaving, c.onSaveResult, c.logger)
	c.mu.Unlock()

	c.logger.Info("Test session active",
		"session_id", boot.SessionID,
		"questions", len(boot.Questions),
		"remaining_time", remaining)

	c.notifyChanged()
	c.timer.Start()
	return nil
}

func (c *Controller) failInit(err error) error {
	c.mu.Lock()
	c.state = StateFailed
	c.failure = err.Error()
	c.mu.Unlock()

	c.logger.LogError(err, "Test session initialization failed")
	c.notifyChanged()
	c.notify(NoticeError, err.Error())
	return fmt.Errorf("%w: %v", ErrInitializationFailed, err)
}

// Close tears the session down: the countdown stops and any pending, not yet
// fired autosave is discarded. An autosave already in flight is left to
// complete or fail silently. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	timer, synchronizer := c.timer, c.sync
	c.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if synchronizer != nil {
		synchronizer.Close()
	}
	c.logger.Info("Test session closed")
}

// ===== NAVIGATION =====

// Next advances to the following question; a no-op on the last index
func (c *Controller) Next() {
	c.goTo(func(i, count int) int { return i + 1 })
}

// Previous steps back one question; a no-op at index zero
func (c *Controller) Previous() {
	c.goTo(func(i, count int) int { return i - 1 })
}

// GoTo jumps to the given index, clamped to the valid range
func (c *Controller) GoTo(index int) {
	c.goTo(func(i, count int) int { return index })
}

func (c *Controller) goTo(next func(current, count int) int) {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return
	}
	target := clampIndex(next(c.index, len(c.questions)), len(c.questions))
	if target == c.index {
		c.mu.Unlock()
		return
	}
	c.index = target
	c.mu.Unlock()

	c.notifyChanged()
	c.sync.Trigger()
}

// ===== ANSWERS =====

// SetAnswer records the raw value from the question-rendering collaborator,
// coerced to the target question's type. Unknown question ids are ignored.
func (c *Controller) SetAnswer(questionID int64, raw any) {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return
	}
	recorded := c.answers.Set(questionID, raw)
	c.mu.Unlock()

	if !recorded {
		return
	}
	c.notifyChanged()
	c.sync.Trigger()
}

// Answer returns the stored value for a question, defaulted per its type
func (c *Controller) Answer(questionID int64) models.Answer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.answers == nil {
		return models.NoAnswer()
	}
	return c.answers.Get(questionID)
}

// ===== SUBMISSION =====

// RequestSubmit opens the submit-confirmation prompt. Manual submission
// always goes through confirmation; only timer expiry skips it.
func (c *Controller) RequestSubmit() {
	c.mu.Lock()
	if c.state != StateActive || c.confirming {
		c.mu.Unlock()
		return
	}
	c.confirming = true
	c.mu.Unlock()
	c.notifyChanged()
}

// CancelSubmit dismisses the confirmation prompt
func (c *Controller) CancelSubmit() {
	c.mu.Lock()
	if !c.confirming {
		c.mu.Unlock()
		return
	}
	c.confirming = false
	c.mu.Unlock()
	c.notifyChanged()
}

// ConfirmSubmit performs the user-confirmed submission
func (c *Controller) ConfirmSubmit(ctx context.Context) error {
	c.mu.Lock()
	if !c.confirming {
		c.mu.Unlock()
		return ErrSubmitNotConfirmed
	}
	c.mu.Unlock()
	return c.submit(ctx, false)
}

// onExpire is the forced-submission path: time exhaustion submits without
// confirmation. Runs on the timer goroutine.
func (c *Controller) onExpire() {
	c.logger.Info("Session time expired, forcing submission")
	if err := c.submit(context.Background(), true); err != nil {
		c.logger.LogError(err, "Forced submission failed")
	}
}

func (c *Controller) submit(ctx context.Context, forced bool) error {
	c.mu.Lock()
	switch c.state {
	case StateSubmitting:
		c.mu.Unlock()
		return ErrSubmitInProgress
	case StateDone:
		c.mu.Unlock()
		return ErrSessionAlreadySubmitted
	case StateActive:
		// proceed
	default:
		c.mu.Unlock()
		return ErrSessionNotActive
	}
	c.state = StateSubmitting
	c.confirming = false
	// suppress autosave so a stale progress write cannot race the submission
	c.sync.Suspend()

	remaining := c.timer.Remaining()
	submission := models.Submission{
		Answers:   c.answers.EncodeSubmission(),
		TimeSpent: c.test.DurationSeconds() - remaining,
	}
	answered := c.answers.Answered()
	c.mu.Unlock()

	c.notifyChanged()
	c.logger.Info("Submitting test session",
		"forced", forced,
		"answered", answered,
		"time_spent", submission.TimeSpent)

	result, err := c.backend.SubmitTest(ctx, c.testID, submission)
	if err != nil {
		// recoverable: roll back to Active, dismiss the prompt, let the user
		// retry manually
		c.mu.Lock()
		c.state = StateActive
		c.sync.Resume()
		c.mu.Unlock()

		c.logger.LogError(err, "Test submission failed")
		c.notifyChanged()
		c.notify(NoticeError, "Failed to submit test")
		return fmt.Errorf("failed to submit test: %w", err)
	}

	c.mu.Lock()
	c.state = StateDone
	c.resultID = result.SessionID
	timer, synchronizer := c.timer, c.sync
	c.mu.Unlock()

	timer.Stop()
	synchronizer.Close()

	c.logger.Info("Test session submitted", "result_session_id", result.SessionID)
	c.notifyChanged()
	return nil
}

// ===== AUTOSAVE PLUMBING =====

func (c *Controller) onTick(remaining int) {
	c.notifyChanged()
	c.mu.Lock()
	synchronizer := c.sync
	c.mu.Unlock()
	if synchronizer != nil {
		synchronizer.Poke()
	}
}

func (c *Controller) progressSnapshot() models.ProgressUpdate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.ProgressUpdate{
		CurrentQuestionIndex: c.index,
		RemainingTime:        c.timer.Remaining(),
		Answers:              c.answers.Snapshot(),
	}
}

func (c *Controller) saveProgress(ctx context.Context, progress models.ProgressUpdate) error {
	return c.backend.UpdateProgress(ctx, c.testID, progress)
}

func (c *Controller) onSaving(saving bool) {
	c.mu.Lock()
	c.saving = saving
	c.mu.Unlock()
	c.notifyChanged()
}

func (c *Controller) onSaveResult(err error) {
	if err != nil {
		c.notify(NoticeError, "Failed to save progress")
		return
	}
	c.notify(NoticeSuccess, "Progress saved")
}

// ===== OBSERVATION =====

// Subscribe attaches a listener and returns a function that detaches it
func (c *Controller) Subscribe(l Listener) func() {
	c.listenerMu.Lock()
	c.listeners = append(c.listeners, l)
	c.listenerMu.Unlock()

	return func() {
		c.listenerMu.Lock()
		defer c.listenerMu.Unlock()
		for i, existing := range c.listeners {
			if existing == l {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

func (c *Controller) notifyChanged() {
	snap := c.Snapshot()
	c.listenerMu.Lock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.listenerMu.Unlock()
	for _, l := range listeners {
		l.SessionChanged(snap)
	}
}

func (c *Controller) notify(level NoticeLevel, message string) {
	c.listenerMu.Lock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.listenerMu.Unlock()
	for _, l := range listeners {
		l.Notice(level, message)
	}
}

// Snapshot assembles a consistent render-ready view of the session
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:            c.state,
		TestID:           c.testID,
		SessionID:        c.sessionID,
		CurrentIndex:     c.index,
		QuestionCount:    len(c.questions),
		Saving:           c.saving,
		ConfirmingSubmit: c.confirming,
		ResultSessionID:  c.resultID,
		Error:            c.failure,
		Answer:           models.NoAnswer(),
	}
	if c.test != nil {
		snap.TestTitle = c.test.Title
	}
	if c.timer != nil {
		snap.RemainingSeconds = c.timer.Remaining()
	}
	snap.RemainingDisplay = FormatRemaining(snap.RemainingSeconds)
	if len(c.questions) > 0 {
		q := c.questions[c.index].Sanitized()
		snap.Question = &q
		snap.Answer = c.answers.Get(q.ID)
		snap.ProgressPercent = float64(c.index+1) / float64(len(c.questions)) * 100
	}
	return snap
}

// State returns the controller lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active reports whether the session can still accept input
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateActive || c.state == StateSubmitting
}

func clampIndex(index, count int) int {
	if count == 0 {
		return 0
	}
	if index < 0 {
		return 0
	}
	if index > count-1 {
		return count - 1
	}
	return index
}
