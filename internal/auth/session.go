package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MKhiriev/tune-keeper/internal/config"
	"github.com/MKhiriev/tune-keeper/internal/logger"
)

// ErrNoSession is returned by AccessToken when no user is signed in.
var ErrNoSession = errors.New("no active session")

// Identity describes the signed-in user as far as the sync engine needs to
// know: who owns the records and what token authorises remote calls.
type Identity struct {
	UserID      string
	AccessToken string
}

// IdentityProvider resolves the current signed-in user.
//
// A nil identity with a nil error means nobody is signed in; the engine
// treats that as "skip this sync", not as a failure.
type IdentityProvider interface {
	CurrentIdentity(ctx context.Context) (*Identity, error)
}

// sessionFile is the JSON document the host app's auth flow writes after
// sign-in and removes on sign-out.
type sessionFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// fileSessionProvider reads the session file on every resolution so external
// sign-in and sign-out take effect without a daemon restart.
type fileSessionProvider struct {
	path   string
	logger *logger.Logger

	mu sync.Mutex
}

// NewFileSessionProvider constructs an [IdentityProvider] backed by the
// session file configured in cfg.
func NewFileSessionProvider(cfg config.Session, logger *logger.Logger) IdentityProvider {
	return &fileSessionProvider{
		path:   cfg.Path,
		logger: logger,
	}
}

// CurrentIdentity implements [IdentityProvider]. A missing file, an expired
// token or an unreadable document all resolve to signed-out rather than an
// error: the engine must not retry a sync that can only succeed after the
// user signs in again.
func (p *fileSessionProvider) CurrentIdentity(ctx context.Context) (*Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	log := logger.FromContext(ctx)

	raw, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		log.Err(err).Str("func", "fileSessionProvider.CurrentIdentity").Msg("error reading session file")
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var session sessionFile
	if err := json.Unmarshal(raw, &session); err != nil {
		log.Warn().Err(err).Str("func", "fileSessionProvider.CurrentIdentity").Msg("session file is not valid json, treating as signed out")
		return nil, nil
	}

	if strings.TrimSpace(session.AccessToken) == "" {
		return nil, nil
	}
	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		log.Debug().Str("func", "fileSessionProvider.CurrentIdentity").Msg("session expired")
		return nil, nil
	}

	userID, err := parseUserIDFromJWT(session.AccessToken)
	if err != nil {
		log.Warn().Err(err).Str("func", "fileSessionProvider.CurrentIdentity").Msg("session token is not parseable, treating as signed out")
		return nil, nil
	}

	return &Identity{
		UserID:      userID,
		AccessToken: session.AccessToken,
	}, nil
}

// AccessToken returns the current bearer token, or ErrNoSession when nobody
// is signed in. Convenience for wiring the remote store's token source.
func (p *fileSessionProvider) AccessToken(ctx context.Context) (string, error) {
	identity, err := p.CurrentIdentity(ctx)
	if err != nil {
		return "", err
	}
	if identity == nil {
		return "", ErrNoSession
	}
	return identity.AccessToken, nil
}

// BearerTokens adapts provider into the per-request token callback the remote
// store expects. Resolution failures yield an empty token; the affected remote
// call then fails authentication and is retried on a later run.
func BearerTokens(provider IdentityProvider) func(ctx context.Context) string {
	return func(ctx context.Context) string {
		identity, err := provider.CurrentIdentity(ctx)
		if err != nil || identity == nil {
			return ""
		}
		return identity.AccessToken
	}
}

// parseUserIDFromJWT extracts the subject claim without verifying the
// signature: the token was issued by the backend and is verified there on
// every request, locally it only scopes record ownership.
func parseUserIDFromJWT(tokenString string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}
