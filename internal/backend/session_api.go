package backend

import (
	"context"

	"github.com/mohit-sharma-1733/testing-platform/internal/models"
)

// TokenSource resolves the bearer token for a request. Implementations may
// refresh an expired access token transparently.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource backed by a fixed token
type StaticToken string

func (t StaticToken) Token(ctx context.Context) (string, error) {
	return string(t), nil
}

// SessionAPI binds the client to a token source, satisfying the session
// engine's Backend interface for one authenticated user.
type SessionAPI struct {
	client *Client
	tokens TokenSource
}

// Bound returns a per-user view of the client
func (c *Client) Bound(tokens TokenSource) *SessionAPI {
	return &SessionAPI{client: c, tokens: tokens}
}

func (s *SessionAPI) GetTest(ctx context.Context, testID int64) (*models.Test, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.GetTest(ctx, token, testID)
}

func (s *SessionAPI) GetTestQuestions(ctx context.Context, testID int64) (*models.SessionBootstrap, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.GetTestQuestions(ctx, token, testID)
}

func (s *SessionAPI) UpdateProgress(ctx context.Context, testID int64, progress models.ProgressUpdate) error {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return err
	}
	return s.client.UpdateProgress(ctx, token, testID, progress)
}

func (s *SessionAPI) SubmitTest(ctx context.Context, testID int64, submission models.Submission) (*models.SubmitResult, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.SubmitTest(ctx, token, testID, submission)
}
