package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mohit-sharma-1733/testing-platform/internal/backend"
	"github.com/mohit-sharma-1733/testing-platform/internal/utils"
)

// TestHandler proxies test CRUD and results reads to the backend, which owns
// the durable data.
type TestHandler struct {
	BaseHandler
	client *backend.Client
}

func NewTestHandler(client *backend.Client, logger utils.Logger) *TestHandler {
	return &TestHandler{
		BaseHandler: NewBaseHandler(logger),
		client:      client,
	}
}

// ListTests returns a page of tests
func (h *TestHandler) ListTests(c *gin.Context) {
	token, ok := h.requestToken(c)
	if !ok {
		return
	}
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 10)

	list, err := h.client.ListTests(c.Request.Context(), token, page, perPage)
	if err != nil {
		h.RespondWithBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetTest returns one test definition
func (h *TestHandler) GetTest(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	token, ok := h.requestToken(c)
	if !ok {
		return
	}

	test, err := h.client.GetTest(c.Request.Context(), token, id)
	if err != nil {
		h.RespondWithBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, test)
}

// CreateTest forwards a test definition to the backend
func (h *TestHandler) CreateTest(c *gin.Context) {
	token, ok := h.requestToken(c)
	if !ok {
		return
	}
	payload, ok := h.readRawBody(c)
	if !ok {
		return
	}

	created, err := h.client.CreateTest(c.Request.Context(), token, payload)
	if err != nil {
		h.RespondWithBackendError(c, err)
		return
	}
	c.Data(http.StatusCreated, "application/json", created)
}

// UpdateTest forwards an edited test definition to the backend
func (h *TestHandler) UpdateTest(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	token, ok := h.requestToken(c)
	if !ok {
		return
	}
	payload, ok := h.readRawBody(c)
	if !ok {
		return
	}

	updated, err := h.client.UpdateTest(c.Request.Context(), token, id, payload)
	if err != nil {
		h.RespondWithBackendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", updated)
}

// DeleteTest removes a test on the backend
func (h *TestHandler) DeleteTest(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	token, ok := h.requestToken(c)
	if !ok {
		return
	}

	if err := h.client.DeleteTest(c.Request.Context(), token, id); err != nil {
		h.RespondWithBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Test deleted"})
}

// GetResults returns the scored result view for a finished session
func (h *TestHandler) GetResults(c *gin.Context) {
	testID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	sessionID, ok := h.parseIDParam(c, "session_id")
	if !ok {
		return
	}
	token, ok := h.requestToken(c)
	if !ok {
		return
	}

	results, err := h.client.GetTestResults(c.Request.Context(), token, testID, sessionID)
	if err != nil {
		h.RespondWithBackendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", results)
}

func (h *TestHandler) readRawBody(c *gin.Context) (json.RawMessage, bool) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil || len(payload) == 0 || !json.Valid(payload) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload"})
		return nil, false
	}
	return payload, true
}

func queryInt(c *gin.Context, name string, defaultValue int) int {
	if value, err := strconv.Atoi(c.Query(name)); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
