package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mohit-sharma-1733/testing-platform/internal/models"
	"github.com/mohit-sharma-1733/testing-platform/internal/utils"
)

// Client is the typed REST client for the testing-platform backend, the
// external collaborator that owns all durable state. Authenticated methods
// take the caller's bearer token explicitly; Bound wraps a token source for
// per-request resolution.
type Client struct {
	baseURL string
	http    *http.Client
	logger  utils.Logger
}

func NewClient(baseURL string, logger utils.Logger) *Client {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger.With("component", "backend_client"),
	}
}

// ===== AUTH =====

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// AuthResponse is the token pair plus profile returned by login, register and refresh
type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", refreshToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

// ===== TESTS =====

// TestList is a paged test listing
type TestList struct {
	Tests   []models.Test `json:"tests"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

func (c *Client) ListTests(ctx context.Context, token string, page, perPage int) (*TestList, error) {
	path := fmt.Sprintf("/tests/list?page=%d&per_page=%d", page, perPage)
	var out TestList
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTest(ctx context.Context, token string, testID int64) (*models.Test, error) {
	var out models.Test
	if err := c.do(ctx, http.MethodGet, "/tests/"+formatID(testID), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTest(ctx context.Context, token string, payload json.RawMessage) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPost, "/tests/create", token, payload)
}

func (c *Client) UpdateTest(ctx context.Context, token string, testID int64, payload json.RawMessage) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPut, "/tests/"+formatID(testID), token, payload)
}

func (c *Client) DeleteTest(ctx context.Context, token string, testID int64) error {
	return c.do(ctx, http.MethodDelete, "/tests/delete/"+formatID(testID), token, nil, nil)
}

// ===== SESSION =====

func (c *Client) GetTestQuestions(ctx context.Context, token string, testID int64) (*models.SessionBootstrap, error) {
	var out models.SessionBootstrap
	if err := c.do(ctx, http.MethodGet, "/tests/"+formatID(testID)+"/questions", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProgress(ctx context.Context, token string, testID int64, progress models.ProgressUpdate) error {
	return c.do(ctx, http.MethodPost, "/tests/"+formatID(testID)+"/progress", token, progress, nil)
}

func (c *Client) SubmitTest(ctx context.Context, token string, testID int64, submission models.Submission) (*models.SubmitResult, error) {
	var out models.SubmitResult
	if err := c.do(ctx, http.MethodPost, "/tests/"+formatID(testID)+"/submit", token, submission, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTestResults(ctx context.Context, token string, testID, sessionID int64) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodGet, "/tests/"+formatID(testID)+"/results/"+formatID(sessionID), token, nil)
}

// ===== DASHBOARD / USERS / LEADERBOARD =====

func (c *Client) GetDashboardStats(ctx context.Context, token string) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodGet, "/dashboard/stats", token, nil)
}

type LeaderboardResponse struct {
	Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
}

func (c *Client) GetLeaderboard(ctx context.Context, token string) ([]models.LeaderboardEntry, error) {
	var out LeaderboardResponse
	if err := c.do(ctx, http.MethodGet, "/leaderboard/list", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Leaderboard, nil
}

type UserList struct {
	Users   []models.User `json:"users"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

func (c *Client) ListUsers(ctx context.Context, token string, page, perPage int, search string) (*UserList, error) {
	path := fmt.Sprintf("/users/list?page=%d&per_page=%d&search=%s", page, perPage, url.QueryEscape(search))
	var out UserList
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, token string, userID int64) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/users/"+formatID(userID), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ===== TRANSPORT =====

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.apiError(resp, path)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

// raw proxies a payload without imposing a schema on either side
func (c *Client) raw(ctx context.Context, method, path, token string, body json.RawMessage) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, c.apiError(resp, path)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read backend response: %w", err)
	}
	return data, nil
}

func (c *Client) apiError(resp *http.Response, path string) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Path: path}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if payload.Error != "" {
			apiErr.Message = payload.Error
		} else {
			apiErr.Message = payload.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	c.logger.Warn("Backend call failed",
		"path", path,
		"status_code", resp.StatusCode,
		"message", apiErr.Message)
	return apiErr
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
