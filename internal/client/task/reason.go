package task

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/fileconv/internal/client/client"
	"github.com/dmitrijs2005/fileconv/internal/client/models"
	"github.com/dmitrijs2005/fileconv/internal/client/progress"
	"github.com/dmitrijs2005/fileconv/internal/common"
)

func defaultFailure(kind models.Kind) string {
	if kind == models.KindCompression {
		return "Compression failed"
	}
	return "Conversion failed"
}

// failureReason turns a terminal error into the single message shown to
// the user.
func failureReason(kind models.Kind, err error) string {
	var (
		remote *progress.RemoteError
		apiErr *client.APIError
	)
	switch {
	case errors.As(err, &remote):
		if remote.Message == "" {
			return defaultFailure(kind)
		}
		return remote.Message
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, common.ErrChannel):
		return "Lost connection to progress updates. Please try again."
	case errors.Is(err, common.ErrTimeout):
		return "Timed out waiting for the server to finish."
	case errors.Is(err, context.DeadlineExceeded):
		return "Upload timed out."
	case err != nil:
		return err.Error()
	default:
		return defaultFailure(kind)
	}
}
