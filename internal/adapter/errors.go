package adapter

import "errors"

var (
	// ErrUnauthorized is returned when the remote rejects the bearer token
	// or API key.
	ErrUnauthorized = errors.New("remote rejected credentials")

	// ErrRemoteUnavailable wraps transport-level failures (timeouts, refused
	// connections, 5xx responses). The engine records it per kind and keeps
	// local data untouched.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
)
