package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mohit-sharma-1733/testing-platform/internal/backend"
	"github.com/mohit-sharma-1733/testing-platform/internal/models"
	"github.com/mohit-sharma-1733/testing-platform/internal/store"
	"github.com/mohit-sharma-1733/testing-platform/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and response helpers for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogError logs error details with request context
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	if user, ok := currentUser(c); ok {
		fields = append(fields, "user_id", user.ID)
	}
	fields = append(fields, additionalFields...)
	h.logger.LogError(err, message, fields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error) {
	if err != nil {
		h.LogError(c, err, message, "status_code", statusCode)
	}
	c.JSON(statusCode, ErrorResponse{Message: message})
}

// RespondWithBackendError maps a backend call failure onto this service's
// response, preserving the backend's status where it is meaningful.
func (h *BaseHandler) RespondWithBackendError(c *gin.Context, err error) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		h.LogError(c, err, "Backend call failed", "backend_status", apiErr.StatusCode)
		c.JSON(apiErr.StatusCode, ErrorResponse{Message: apiErr.Message})
		return
	}
	h.RespondWithError(c, http.StatusBadGateway, "Backend unavailable", err)
}

// parseIDParam parses a numeric path parameter, responding 400 on failure
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
		})
		return 0, false
	}
	return id, true
}

// ===== AUTH CONTEXT ACCESSORS =====

const (
	ctxUserKey        = "auth_user"
	ctxTokenSourceKey = "token_source"
	ctxWebSessionKey  = "web_session_id"
)

func currentUser(c *gin.Context) (models.User, bool) {
	value, exists := c.Get(ctxUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}

func tokenSource(c *gin.Context) (*store.TokenSource, bool) {
	value, exists := c.Get(ctxTokenSourceKey)
	if !exists {
		return nil, false
	}
	ts, ok := value.(*store.TokenSource)
	return ts, ok
}

// requestToken resolves the caller's backend bearer token, responding 401 if
// the web session cannot produce one.
func (h *BaseHandler) requestToken(c *gin.Context) (string, bool) {
	ts, ok := tokenSource(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
		return "", false
	}
	token, err := ts.Token(c.Request.Context())
	if err != nil {
		h.LogError(c, err, "Failed to resolve backend token")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Session expired"})
		return "", false
	}
	return token, true
}
