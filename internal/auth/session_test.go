package auth

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/tune-keeper/internal/config"
	"github.com/MKhiriev/tune-keeper/internal/logger"
)

func signTestToken(t *testing.T, subject string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func writeSessionFile(t *testing.T, path string, session sessionFile) {
	t.Helper()

	raw, err := json.Marshal(session)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))
}

func newTestProvider(t *testing.T) (*fileSessionProvider, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "session.json")
	provider := NewFileSessionProvider(config.Session{Path: path}, logger.Nop())
	return provider.(*fileSessionProvider), path
}

func TestFileSessionProvider_SignedIn(t *testing.T) {
	provider, path := newTestProvider(t)
	token := signTestToken(t, "user-123")

	writeSessionFile(t, path, sessionFile{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(time.Hour),
	})

	identity, err := provider.CurrentIdentity(context.Background())
	require.NoError(t, err)
	require.NotNil(t, identity)

	assert.Equal(t, "user-123", identity.UserID)
	assert.Equal(t, token, identity.AccessToken)
}

func TestFileSessionProvider_MissingFileIsSignedOut(t *testing.T) {
	provider, _ := newTestProvider(t)

	identity, err := provider.CurrentIdentity(context.Background())
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestFileSessionProvider_ExpiredSessionIsSignedOut(t *testing.T) {
	provider, path := newTestProvider(t)

	writeSessionFile(t, path, sessionFile{
		AccessToken: signTestToken(t, "user-123"),
		ExpiresAt:   time.Now().Add(-time.Minute),
	})

	identity, err := provider.CurrentIdentity(context.Background())
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestFileSessionProvider_GarbageFileIsSignedOut(t *testing.T) {
	provider, path := newTestProvider(t)
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	identity, err := provider.CurrentIdentity(context.Background())
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestFileSessionProvider_TokenWithoutSubjectIsSignedOut(t *testing.T) {
	provider, path := newTestProvider(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	writeSessionFile(t, path, sessionFile{AccessToken: signed})

	identity, err := provider.CurrentIdentity(context.Background())
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestFileSessionProvider_AccessToken(t *testing.T) {
	provider, path := newTestProvider(t)

	_, err := provider.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	token := signTestToken(t, "user-123")
	writeSessionFile(t, path, sessionFile{AccessToken: token})

	got, err := provider.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, got)
}

func TestBearerTokens(t *testing.T) {
	provider, path := newTestProvider(t)
	tokens := BearerTokens(provider)

	assert.Empty(t, tokens(context.Background()))

	token := signTestToken(t, "user-123")
	writeSessionFile(t, path, sessionFile{AccessToken: token})

	assert.Equal(t, token, tokens(context.Background()))
}

func TestFileSessionProvider_SignOutTakesEffectWithoutRestart(t *testing.T) {
	provider, path := newTestProvider(t)

	writeSessionFile(t, path, sessionFile{AccessToken: signTestToken(t, "user-123")})

	identity, err := provider.CurrentIdentity(context.Background())
	require.NoError(t, err)
	require.NotNil(t, identity)

	require.NoError(t, os.Remove(path))

	identity, err = provider.CurrentIdentity(context.Background())
	require.NoError(t, err)
	assert.Nil(t, identity)
}
