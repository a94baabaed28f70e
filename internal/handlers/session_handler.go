package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mohit-sharma-1733/testing-platform/internal/backend"
	"github.com/mohit-sharma-1733/testing-platform/internal/session"
	"github.com/mohit-sharma-1733/testing-platform/internal/utils"
)

// SessionHandler exposes the taking-session engine to the browser: start and
// resume, the render-ready snapshot, answers, navigation, the submit protocol
// and a WebSocket stream that pushes a fresh snapshot on every state change.
type SessionHandler struct {
	BaseHandler
	client    *backend.Client
	registry  *session.Registry
	quietWait time.Duration
	upgrader  websocket.Upgrader
}

func NewSessionHandler(client *backend.Client, registry *session.Registry, quietWait time.Duration, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(logger),
		client:      client,
		registry:    registry,
		quietWait:   quietWait,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// the session cookie is the auth boundary; allow the SPA origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start creates or resumes the caller's session for the test. At most one
// live controller exists per user and test; hitting Start again while one is
// live returns its current snapshot.
func (h *SessionHandler) Start(c *gin.Context) {
	testID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
		return
	}
	ts, ok := tokenSource(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
		return
	}

	ctrl, err := h.registry.Acquire(c.Request.Context(), user.ID, testID, func() *session.Controller {
		return session.NewController(h.client.Bound(ts), h.logger, testID,
			session.WithQuietPeriod(h.quietWait))
	})
	if err != nil {
		if errors.Is(err, session.ErrInitializationFailed) {
			h.RespondWithError(c, http.StatusBadGateway, "Failed to initialize test session", err)
			return
		}
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to start test session", err)
		return
	}

	c.JSON(http.StatusOK, ctrl.Snapshot())
}

// Snapshot returns the current render-ready view of the session
func (h *SessionHandler) Snapshot(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

// AnswerRequest is the payload from the question-rendering collaborator
type AnswerRequest struct {
	QuestionID int64 `json:"question_id" binding:"required"`
	Value      any   `json:"value"`
}

// Answer records an answer value for a question
func (h *SessionHandler) Answer(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	ctrl.SetAnswer(req.QuestionID, req.Value)
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

// Next advances to the following question (clamped)
func (h *SessionHandler) Next(c *gin.Context) {
	h.navigate(c, func(ctrl *session.Controller) { ctrl.Next() })
}

// Previous steps back one question (clamped)
func (h *SessionHandler) Previous(c *gin.Context) {
	h.navigate(c, func(ctrl *session.Controller) { ctrl.Previous() })
}

// GoToRequest targets an absolute question index
type GoToRequest struct {
	Index int `json:"index"`
}

// GoTo jumps to a question index (clamped)
func (h *SessionHandler) GoTo(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	var req GoToRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}
	ctrl.GoTo(req.Index)
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

func (h *SessionHandler) navigate(c *gin.Context, move func(*session.Controller)) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	move(ctrl)
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

// RequestSubmit opens the submit-confirmation prompt
func (h *SessionHandler) RequestSubmit(c *gin.Context) {
	h.navigate(c, func(ctrl *session.Controller) { ctrl.RequestSubmit() })
}

// CancelSubmit dismisses the submit-confirmation prompt
func (h *SessionHandler) CancelSubmit(c *gin.Context) {
	h.navigate(c, func(ctrl *session.Controller) { ctrl.CancelSubmit() })
}

// ConfirmSubmit performs the confirmed submission and returns the terminal
// snapshot carrying the result session reference for the results view.
func (h *SessionHandler) ConfirmSubmit(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	if err := ctrl.ConfirmSubmit(c.Request.Context()); err != nil {
		switch {
		case errors.Is(err, session.ErrSubmitNotConfirmed):
			c.JSON(http.StatusConflict, ErrorResponse{Message: "Submission was not requested"})
		case errors.Is(err, session.ErrSubmitInProgress), errors.Is(err, session.ErrSessionAlreadySubmitted):
			c.JSON(http.StatusConflict, ErrorResponse{Message: "Submission already in progress"})
		default:
			// recoverable: the controller rolled back to Active, the user can retry
			h.LogError(c, err, "Test submission failed")
			c.JSON(http.StatusBadGateway, gin.H{
				"message":  "Failed to submit test",
				"snapshot": ctrl.Snapshot(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, ctrl.Snapshot())
}

// Close tears the session down (navigation away / unmount)
func (h *SessionHandler) Close(c *gin.Context) {
	testID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
		return
	}
	h.registry.Release(user.ID, testID)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Session closed"})
}

// ===== LIVE STREAM =====

// streamEvent is one message on the session WebSocket
type streamEvent struct {
	Type     string            `json:"type"` // "snapshot" or "notice"
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
	Level    string            `json:"level,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// streamListener forwards controller events into the socket writer channel.
// Events are dropped rather than blocking the engine on a slow client.
type streamListener struct {
	events chan streamEvent
}

func (l *streamListener) SessionChanged(snap session.Snapshot) {
	select {
	case l.events <- streamEvent{Type: "snapshot", Snapshot: &snap}:
	default:
	}
}

func (l *streamListener) Notice(level session.NoticeLevel, message string) {
	select {
	case l.events <- streamEvent{Type: "notice", Level: string(level), Message: message}:
	default:
	}
}

// Stream upgrades to a WebSocket and pushes a snapshot on every state change
// until the session ends or the client disconnects.
func (h *SessionHandler) Stream(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.LogError(c, err, "WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	listener := &streamListener{events: make(chan streamEvent, 16)}
	unsubscribe := ctrl.Subscribe(listener)
	defer unsubscribe()

	// reader goroutine: we never expect client messages, but reading is what
	// surfaces the close frame
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// initial snapshot so the client renders without waiting for a change
	snap := ctrl.Snapshot()
	if err := conn.WriteJSON(streamEvent{Type: "snapshot", Snapshot: &snap}); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case event := <-listener.events:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
			if event.Snapshot != nil &&
				(event.Snapshot.State == session.StateDone || event.Snapshot.State == session.StateFailed) {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(time.Second))
				return
			}
		}
	}
}

// controller looks up the caller's live session for the test in the path
func (h *SessionHandler) controller(c *gin.Context) (*session.Controller, bool) {
	testID, ok := h.parseIDParam(c, "id")
	if !ok {
		return nil, false
	}
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
		return nil, false
	}
	ctrl := h.registry.Get(user.ID, testID)
	if ctrl == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "No active session for this test"})
		return nil, false
	}
	return ctrl, true
}
