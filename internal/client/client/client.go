package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
)

// Client is the remote operation API used by the controller, the progress
// listener and the history service.
type Client interface {
	// Upload sends the payload and parameters of op. onProgress, when not nil,
	// receives increasing integer percentages of bytes transferred; it is
	// never called when the total size is unknown.
	Upload(ctx context.Context, op models.Operation, onProgress func(percent int)) (*models.Submission, error)

	// FetchResultHandle returns the download URL of a completed task, or an
	// error matching common.ErrNotReady if the server reports it unfinished.
	FetchResultHandle(ctx context.Context, kind models.Kind, taskID string) (string, error)

	// OpenProgressStream opens the server-push stream of taskID. The caller
	// owns the returned body.
	OpenProgressStream(ctx context.Context, taskID string) (io.ReadCloser, error)

	Conversions(ctx context.Context, limit int) ([]models.ConversionResult, error)
	Compressions(ctx context.Context, limit int) ([]models.CompressionResult, error)
}
