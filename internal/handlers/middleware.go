package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mohit-sharma-1733/testing-platform/internal/backend"
	"github.com/mohit-sharma-1733/testing-platform/internal/store"
	"github.com/mohit-sharma-1733/testing-platform/internal/utils"
)

// SessionCookieName is the browser cookie carrying the web session id
const SessionCookieName = "web_session"

// RequireAuth resolves the web-session cookie into an authenticated user and
// a backend token source for downstream proxy calls. Requests without a valid
// session get 401.
func RequireAuth(sessions *store.Sessions, client *backend.Client, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookieName)
		if err != nil || cookie == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
			return
		}

		ws, err := sessions.Get(c.Request.Context(), cookie)
		if err != nil {
			if !errors.Is(err, store.ErrSessionNotFound) {
				logger.LogError(err, "Failed to load web session")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Session expired"})
			return
		}

		c.Set(ctxUserKey, ws.User)
		c.Set(ctxWebSessionKey, ws.ID)
		c.Set(ctxTokenSourceKey, store.NewTokenSource(sessions, client, logger, ws.ID))
		c.Next()
	}
}

// RequireAdmin gates admin-only surfaces (user management, admin stats)
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok || user.Role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Admin access required"})
			return
		}
		c.Next()
	}
}
