package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
)

func TestResultName(t *testing.T) {
	png := models.PayloadFromBytes("dir/photo.png", nil)
	assert.Equal(t, "photo.jpg", ResultName(completedTask(models.Convert(png, "jpg", nil), "")))
	assert.Equal(t, "photo_compressed.png", ResultName(completedTask(models.Compress(png, 10), "")))
}

func TestDownload_SavesWithoutOverwriting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("converted"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.jpg"), []byte("mine"), 0o600))

	s := NewDownloadService(dir, srv.Client())
	task := completedTask(models.Convert(models.PayloadFromBytes("photo.png", nil), "jpg", nil), srv.URL+"/files/1")

	path, err := s.Save(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "photo (1).jpg"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "converted", string(got))

	kept, err := os.ReadFile(filepath.Join(dir, "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "mine", string(kept))
}

func TestDownload_FailureRemovesPartialFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusForbidden)
	}))
	defer srv.Close()

	dir := t.TempDir()
	s := NewDownloadService(dir, srv.Client())
	task := completedTask(models.Compress(models.PayloadFromBytes("a.pdf", nil), 10), srv.URL)

	_, err := s.Save(context.Background(), task)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownload_RequiresCompletedTask(t *testing.T) {
	s := NewDownloadService(t.TempDir(), nil)
	_, err := s.Save(context.Background(), models.Task{Phase: models.PhaseFailed})
	require.Error(t, err)
}
