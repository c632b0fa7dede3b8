package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/fileconv/internal/common"
)

// ErrStreamUnsupported is returned by OpenProgressStream when the server has
// no progress stream endpoint or answers it with something other than an
// event stream.
var ErrStreamUnsupported = errors.New("progress stream unsupported")

// APIError is a non-2xx answer of the conversion API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return e.Detail
}

func (e *APIError) Unwrap() error {
	return common.ErrTransport
}

// IsNotReadyStatus reports whether a download endpoint status means the
// task has not completed yet.
func IsNotReadyStatus(code int) bool {
	switch code {
	case http.StatusBadRequest, http.StatusConflict, http.StatusTooEarly:
		return true
	default:
		return false
	}
}
