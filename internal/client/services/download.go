package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
	"github.com/dmitrijs2005/fileconv/internal/filex"
	"github.com/dmitrijs2005/fileconv/internal/netx"
)

type DownloadService interface {
	// Save downloads the result of a completed task into the output
	// directory and returns the path written. Existing files are kept.
	Save(ctx context.Context, t models.Task) (string, error)
}

type downloadService struct {
	dir    string
	client *http.Client
}

func NewDownloadService(dir string, client *http.Client) DownloadService {
	return &downloadService{dir: dir, client: client}
}

// ResultName is the file name a result of t is saved under.
func ResultName(t models.Task) string {
	name := filepath.Base(t.Operation.Payload.Name)
	if t.Operation.Kind == models.KindCompression {
		ext := filepath.Ext(name)
		return strings.TrimSuffix(name, ext) + "_compressed" + ext
	}
	return filex.ReplaceExt(name, string(t.Operation.TargetFormat))
}

func (s *downloadService) Save(ctx context.Context, t models.Task) (string, error) {
	if t.Phase != models.PhaseCompleted || t.ResultHandle == "" {
		return "", errors.New("task has no result to download")
	}

	dir, err := filex.EnsureDir(s.dir)
	if err != nil {
		return "", err
	}

	f, err := filex.CreateUnique(dir, ResultName(t))
	if err != nil {
		return "", fmt.Errorf("creating output file: %w", err)
	}
	path := f.Name()

	_, err = netx.DownloadFromPresignedURL(ctx, s.client, t.ResultHandle, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}
