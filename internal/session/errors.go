package session

import "errors"

// ===== SESSION ENGINE ERRORS =====

var (
	ErrSessionNotActive        = errors.New("session is not active")
	ErrSessionAlreadyStarted   = errors.New("session already started")
	ErrSessionNotStarted       = errors.New("session not started")
	ErrSessionAlreadySubmitted = errors.New("session already submitted")
	ErrSubmitNotConfirmed      = errors.New("submission requires confirmation")
	ErrSubmitInProgress        = errors.New("submission already in progress")
	ErrSessionClosed           = errors.New("session is closed")
	ErrInitializationFailed    = errors.New("failed to initialize test session")
)

// IsTerminal reports whether the error leaves the session unusable
func IsTerminal(err error) bool {
	return errors.Is(err, ErrSessionAlreadySubmitted) ||
		errors.Is(err, ErrSessionClosed) ||
		errors.Is(err, ErrInitializationFailed)
}
