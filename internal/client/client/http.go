package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
	"github.com/dmitrijs2005/fileconv/internal/common"
)

const (
	DefaultUploadTimeout  = 5 * time.Minute
	DefaultRequestTimeout = 30 * time.Second

	maxErrorBody = 64 << 10
)

// HTTPClient talks to the conversion API over HTTP/JSON.
type HTTPClient struct {
	baseURL        string
	http           *http.Client
	uploadTimeout  time.Duration
	requestTimeout time.Duration
	requestID      func() string
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying client. Its Timeout should be zero,
// the progress stream is long-lived and deadlines are set per request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithUploadTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.uploadTimeout = d }
}

func WithRequestTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.requestTimeout = d }
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &http.Client{},
		uploadTimeout:  DefaultUploadTimeout,
		requestTimeout: DefaultRequestTimeout,
		requestID:      uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *HTTPClient) endpoint(query url.Values, elem ...string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: base url: %v", common.ErrTransport, err)
	}
	u = u.JoinPath(elem...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func (c *HTTPClient) Upload(ctx context.Context, op models.Operation, onProgress func(percent int)) (*models.Submission, error) {
	var (
		path   string
		query  url.Values
		fields []formField
	)

	switch op.Kind {
	case models.KindConversion:
		path = "convert"
		query = url.Values{"target_format": {string(op.TargetFormat)}}
		if op.SelectedPages != nil {
			pages, err := json.Marshal(op.SelectedPages)
			if err != nil {
				return nil, err
			}
			fields = append(fields, formField{"selected_pages", string(pages)})
		}
	case models.KindCompression:
		path = "compress"
		fields = append(fields, formField{"target_size_bytes", strconv.FormatInt(op.TargetSizeBytes, 10)})
	default:
		return nil, fmt.Errorf("%w: unknown operation kind %q", common.ErrValidation, op.Kind)
	}

	endpoint, err := c.endpoint(query, path)
	if err != nil {
		return nil, err
	}

	body, err := newMultipartBody(op.Payload, fields, onProgress)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		_ = body.Close()
		return nil, err
	}
	req.ContentLength = body.Len()
	req.Header.Set("Content-Type", body.ContentType())
	req.Header.Set("Accept", "application/json")

	var sub models.Submission
	if err := c.do(req, &sub); err != nil {
		return nil, err
	}
	if sub.ID == "" {
		return nil, fmt.Errorf("%w: invalid response: missing task id", common.ErrTransport)
	}
	return &sub, nil
}

func (c *HTTPClient) FetchResultHandle(ctx context.Context, kind models.Kind, taskID string) (string, error) {
	var elem []string
	switch kind {
	case models.KindConversion:
		elem = []string{"download", taskID}
	case models.KindCompression:
		elem = []string{"download", "compression", taskID}
	default:
		return "", fmt.Errorf("%w: unknown operation kind %q", common.ErrValidation, kind)
	}

	var out models.DownloadResponse
	err := c.get(ctx, nil, &out, elem...)

	var apiErr *APIError
	if errors.As(err, &apiErr) && IsNotReadyStatus(apiErr.StatusCode) {
		return "", fmt.Errorf("%w: %s", common.ErrNotReady, apiErr.Error())
	}
	if err != nil {
		return "", err
	}
	if out.DownloadURL == "" {
		return "", fmt.Errorf("%w: invalid response: empty download url", common.ErrTransport)
	}
	return out.DownloadURL, nil
}

func (c *HTTPClient) OpenProgressStream(ctx context.Context, taskID string) (io.ReadCloser, error) {
	endpoint, err := c.endpoint(nil, "progress", taskID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set(common.RequestIDHeaderName, c.requestID())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrTransport, err)
	}

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusNotImplemented:
		_ = resp.Body.Close()
		return nil, ErrStreamUnsupported
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, mapError(resp)
	}

	mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mt != "text/event-stream" {
		_ = resp.Body.Close()
		return nil, ErrStreamUnsupported
	}
	return resp.Body, nil
}

func (c *HTTPClient) Conversions(ctx context.Context, limit int) ([]models.ConversionResult, error) {
	var out []models.ConversionResult
	if err := c.get(ctx, limitQuery(limit), &out, "conversions"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Compressions(ctx context.Context, limit int) ([]models.CompressionResult, error) {
	var out []models.CompressionResult
	if err := c.get(ctx, limitQuery(limit), &out, "compressions"); err != nil {
		return nil, err
	}
	return out, nil
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}

func (c *HTTPClient) get(ctx context.Context, query url.Values, out any, elem ...string) error {
	endpoint, err := c.endpoint(query, elem...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	req.Header.Set(common.RequestIDHeaderName, c.requestID())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: invalid response: %v", common.ErrTransport, err)
	}
	return nil
}

// mapError converts a non-2xx response into an APIError, taking the message
// from a {"detail": "..."} body when present.
func mapError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(b) == 0 {
		return apiErr
	}

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(b, &body) != nil || len(body.Detail) == 0 {
		return apiErr
	}

	var detail string
	if json.Unmarshal(body.Detail, &detail) == nil {
		apiErr.Detail = detail
	} else {
		apiErr.Detail = string(body.Detail)
	}
	return apiErr
}
