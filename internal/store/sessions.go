package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mohit-sharma-1733/testing-platform/internal/models"
)

// ErrSessionNotFound is returned when a web session id has no stored entry
// (never created, expired, or logged out).
var ErrSessionNotFound = errors.New("web session not found")

// WebSession is the server-side record behind the browser's session cookie:
// the backend token pair plus the authenticated profile.
type WebSession struct {
	ID           string      `json:"id"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Sessions persists web sessions in Redis with a sliding TTL
type Sessions struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessions(client *redis.Client, ttl time.Duration) *Sessions {
	return &Sessions{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "websession:" + id
}

// Create stores a new web session and returns its generated id
func (s *Sessions) Create(ctx context.Context, accessToken, refreshToken string, user models.User) (*WebSession, error) {
	ws := &WebSession{
		ID:           uuid.NewString(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.put(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// Get loads a web session by id, refreshing its TTL
func (s *Sessions) Get(ctx context.Context, id string) (*WebSession, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load web session: %w", err)
	}

	var ws WebSession
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("failed to decode web session: %w", err)
	}
	// sliding expiry: activity keeps the session alive
	s.client.Expire(ctx, sessionKey(id), s.ttl)
	return &ws, nil
}

// Update rewrites an existing web session (after a token refresh)
func (s *Sessions) Update(ctx context.Context, ws *WebSession) error {
	return s.put(ctx, ws)
}

// Delete removes a web session (logout)
func (s *Sessions) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete web session: %w", err)
	}
	return nil
}

func (s *Sessions) put(ctx context.Context, ws *WebSession) error {
	data, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("failed to encode web session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(ws.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store web session: %w", err)
	}
	return nil
}
