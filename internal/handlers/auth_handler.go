package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mohit-sharma-1733/testing-platform/internal/backend"
	"github.com/mohit-sharma-1733/testing-platform/internal/config"
	"github.com/mohit-sharma-1733/testing-platform/internal/store"
	"github.com/mohit-sharma-1733/testing-platform/internal/utils"
)

// AuthHandler owns the auth-cookie plumbing: it exchanges credentials with
// the backend, keeps the token pair server-side in the session store, and
// hands the browser only an opaque HttpOnly cookie.
type AuthHandler struct {
	BaseHandler
	client    *backend.Client
	sessions  *store.Sessions
	validator *utils.Validator
	cfg       *config.Config
}

func NewAuthHandler(client *backend.Client, sessions *store.Sessions, validator *utils.Validator, cfg *config.Config, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		client:      client,
		sessions:    sessions,
		validator:   validator,
		cfg:         cfg,
	}
}

// Login authenticates against the backend and establishes a web session
func (h *AuthHandler) Login(c *gin.Context) {
	var creds backend.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := h.validator.Validate(creds); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
		return
	}

	auth, err := h.client.Login(c.Request.Context(), creds)
	if err != nil {
		h.RespondWithBackendError(c, err)
		return
	}

	h.establishSession(c, auth)
}

// Register creates an account on the backend and logs the new user in
func (h *AuthHandler) Register(c *gin.Context) {
	var req backend.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := h.validator.Validate(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
		return
	}

	auth, err := h.client.Register(c.Request.Context(), req)
	if err != nil {
		h.RespondWithBackendError(c, err)
		return
	}

	h.establishSession(c, auth)
}

func (h *AuthHandler) establishSession(c *gin.Context, auth *backend.AuthResponse) {
	ws, err := h.sessions.Create(c.Request.Context(), auth.AccessToken, auth.RefreshToken, auth.User)
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to establish session", err)
		return
	}

	h.setSessionCookie(c, ws.ID, int(h.cfg.SessionTTL.Seconds()))
	h.logger.Info("User logged in", "user_id", auth.User.ID, "role", auth.User.Role)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Successfully logged in", Data: auth.User})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	token, ok := h.requestToken(c)
	if !ok {
		return
	}
	user, err := h.client.Me(c.Request.Context(), token)
	if err != nil {
		h.RespondWithBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout drops the web session and clears the cookie. The backend logout is
// best effort; the local session dies regardless.
func (h *AuthHandler) Logout(c *gin.Context) {
	if ts, ok := tokenSource(c); ok {
		if token, err := ts.Token(c.Request.Context()); err == nil {
			if err := h.client.Logout(c.Request.Context(), token); err != nil {
				h.logger.Warn("Backend logout failed", "error", err)
			}
		}
	}
	if id, exists := c.Get(ctxWebSessionKey); exists {
		if webID, ok := id.(string); ok {
			if err := h.sessions.Delete(c.Request.Context(), webID); err != nil {
				h.logger.Warn("Failed to delete web session", "error", err)
			}
		}
	}

	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Logged out"})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, value, maxAge, "/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
}
