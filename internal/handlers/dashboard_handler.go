package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mohit-sharma-1733/testing-platform/internal/backend"
	"github.com/mohit-sharma-1733/testing-platform/internal/export"
	"github.com/mohit-sharma-1733/testing-platform/internal/utils"
)

// DashboardHandler serves the dashboard surfaces: stats, leaderboard (with
// XLSX download) and the admin user directory, all proxied from the backend.
type DashboardHandler struct {
	BaseHandler
	client *backend.Client
}

func NewDashboardHandler(client *backend.Client, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		client:      client,
	}
}

// Stats returns role-appropriate dashboard statistics
func (h *DashboardHandler) Stats(c *gin.Context) {
	token, ok := h.requestToken(c)
	if !ok {
		return
	}
	stats, err := h.client.GetDashboardStats(c.Request.Context(), token)
	if err != nil {
		h.RespondWithBackendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", stats)
}

// Leaderboard returns the ranked leaderboard
func (h *DashboardHandler) Leaderboard(c *gin.Context) {
	token, ok := h.requestToken(c)
	if !ok {
		return
	}
	entries, err := h.client.GetLeaderboard(c.Request.Context(), token)
	if err != nil {
		h.RespondWithBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// ExportLeaderboard streams the leaderboard as an XLSX download
func (h *DashboardHandler) ExportLeaderboard(c *gin.Context) {
	token, ok := h.requestToken(c)
	if !ok {
		return
	}
	entries, err := h.client.GetLeaderboard(c.Request.Context(), token)
	if err != nil {
		h.RespondWithBackendError(c, err)
		return
	}

	workbook, err := export.LeaderboardWorkbook(entries)
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to build export", err)
		return
	}
	defer workbook.Close()

	c.Header("Content-Disposition", `attachment; filename="leaderboard.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		h.LogError(c, err, "Failed to stream export")
	}
}

// ListUsers returns a page of the user directory (admin only)
func (h *DashboardHandler) ListUsers(c *gin.Context) {
	token, ok := h.requestToken(c)
	if !ok {
		return
	}
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 10)

	users, err := h.client.ListUsers(c.Request.Context(), token, page, perPage, c.Query("search"))
	if err != nil {
		h.RespondWithBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser returns one user profile (admin only)
func (h *DashboardHandler) GetUser(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	token, ok := h.requestToken(c)
	if !ok {
		return
	}

	user, err := h.client.GetUser(c.Request.Context(), token, id)
	if err != nil {
		h.RespondWithBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
