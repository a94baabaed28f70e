package session

import (
	"fmt"

	"github.com/mohit-sharma-1733/testing-platform/internal/models"
)

// State is the controller lifecycle state
type State string

const (
	StateInitializing State = "initializing"
	StateActive       State = "active"
	StateSubmitting   State = "submitting"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// NoticeLevel classifies transient user-facing notifications
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Listener receives state-change notifications from a Controller. The engine
// is renderer-agnostic; whatever rendering layer is attached consumes these
// callbacks instead of observing mutations directly.
//
// Callbacks are invoked without internal locks held but may arrive from timer
// or autosave goroutines; implementations must be safe for concurrent use.
type Listener interface {
	// SessionChanged delivers a fresh snapshot after every observable transition
	SessionChanged(snap Snapshot)
	// Notice delivers transient, non-blocking user feedback (toasts)
	Notice(level NoticeLevel, message string)
}

// Snapshot is a consistent, render-ready view of the session state. All render
// hooks the surrounding UI needs are derived fields here.
type Snapshot struct {
	State            State            `json:"state"`
	TestID           int64            `json:"test_id"`
	TestTitle        string           `json:"test_title"`
	SessionID        int64            `json:"session_id"`
	CurrentIndex     int              `json:"current_index"`
	QuestionCount    int              `json:"question_count"`
	Question         *models.Question `json:"question,omitempty"`
	Answer           models.Answer    `json:"answer"`
	ProgressPercent  float64          `json:"progress_percent"`
	RemainingSeconds int              `json:"remaining_seconds"`
	RemainingDisplay string           `json:"remaining_display"`
	Saving           bool             `json:"saving"`
	ConfirmingSubmit bool             `json:"confirming_submit"`
	ResultSessionID  int64            `json:"result_session_id,omitempty"`
	Error            string           `json:"error,omitempty"`
}

// FormatRemaining renders a second count as M:SS for the countdown display
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
