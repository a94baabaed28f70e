package store

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mohit-sharma-1733/testing-platform/internal/backend"
	"github.com/mohit-sharma-1733/testing-platform/internal/utils"
)

// expiryLeeway refreshes tokens slightly before they actually lapse, so a
// request started now does not arrive at the backend with a dead token.
const expiryLeeway = 30 * time.Second

// TokenSource resolves the current backend access token for one web session,
// transparently refreshing it against the backend when it is about to expire.
// On refresh failure the web session is dropped, forcing a fresh login.
type TokenSource struct {
	sessions *Sessions
	client   *backend.Client
	logger   utils.Logger
	webID    string
}

func NewTokenSource(sessions *Sessions, client *backend.Client, logger utils.Logger, webSessionID string) *TokenSource {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &TokenSource{
		sessions: sessions,
		client:   client,
		logger:   logger,
		webID:    webSessionID,
	}
}

func (t *TokenSource) Token(ctx context.Context) (string, error) {
	ws, err := t.sessions.Get(ctx, t.webID)
	if err != nil {
		return "", err
	}
	if !tokenExpiring(ws.AccessToken) {
		return ws.AccessToken, nil
	}

	t.logger.Debug("Refreshing backend access token", "user_id", ws.User.ID)
	auth, err := t.client.Refresh(ctx, ws.RefreshToken)
	if err != nil {
		// the refresh token is dead too; the web session is unrecoverable
		_ = t.sessions.Delete(ctx, t.webID)
		return "", fmt.Errorf("token refresh failed: %w", err)
	}

	ws.AccessToken = auth.AccessToken
	if auth.RefreshToken != "" {
		ws.RefreshToken = auth.RefreshToken
	}
	if err := t.sessions.Update(ctx, ws); err != nil {
		return "", err
	}
	return ws.AccessToken, nil
}

// tokenExpiring peeks at the JWT exp claim without verifying the signature;
// the backend owns the signing key and remains the authority on validity.
func tokenExpiring(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		// opaque token; let the backend decide
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < expiryLeeway
}
