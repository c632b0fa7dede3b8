package netx

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDownloadFromPresignedURL(t *testing.T) {
	file := []byte("converted bytes")

	t.Run("success 200 OK", func(t *testing.T) {
		var gotMethod, gotQuery string

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotQuery = r.URL.RawQuery
			_, _ = w.Write(file)
		}))
		defer ts.Close()

		var buf bytes.Buffer
		n, err := DownloadFromPresignedURL(context.Background(), nil, ts.URL+"/some/object?X-Amz-Signature=abc", &buf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotMethod != http.MethodGet {
			t.Fatalf("method = %q, want GET", gotMethod)
		}
		if gotQuery != "X-Amz-Signature=abc" {
			t.Fatalf("query = %q, want signature preserved", gotQuery)
		}
		if n != int64(len(file)) || !bytes.Equal(buf.Bytes(), file) {
			t.Fatalf("body = %q (%d), want %q", buf.String(), n, string(file))
		}
	})

	t.Run("non-200 -> error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("<Error>AccessDenied</Error>"))
		}))
		defer ts.Close()

		var buf bytes.Buffer
		_, err := DownloadFromPresignedURL(context.Background(), ts.Client(), ts.URL, &buf)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "download failed: 403") || !strings.Contains(err.Error(), "AccessDenied") {
			t.Fatalf("error = %q, want status and body", err.Error())
		}
		if buf.Len() != 0 {
			t.Fatalf("nothing should be written on error, got %d bytes", buf.Len())
		}
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		_, err := DownloadFromPresignedURL(context.Background(), nil, ts.URL, &bytes.Buffer{})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !isNetOpError(err) {
			if strings.Contains(err.Error(), "download failed") {
				t.Fatalf("got wrong kind of error: %v", err)
			}
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		defer ts.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := DownloadFromPresignedURL(ctx, nil, ts.URL, &bytes.Buffer{})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
	})
}

type netOpErrorLike interface {
	error
	Timeout() bool
	Temporary() bool
}

func isNetOpError(err error) bool {
	var target netOpErrorLike
	return errors.As(err, &target)
}
