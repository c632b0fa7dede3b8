// Package common defines shared constants and sentinel errors used across
// the client layers of fileconv. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Local policy rejection. Never reaches network code.
	ErrValidation = errors.New("validation error")

	// Network failure, aborted transfer, non-2xx answer or malformed body.
	ErrTransport = errors.New("transport error")

	// The server explicitly reported the task as failed.
	ErrRemoteFailure = errors.New("remote failure")

	// Progress channel transport failure. Retried by the listener.
	ErrChannel = errors.New("progress channel error")

	// Server-declared (or poll deadline) timeout. Terminal, not retried.
	ErrTimeout = errors.New("timeout")

	// The result is not available yet. Expected while polling.
	ErrNotReady = errors.New("not ready")
)
