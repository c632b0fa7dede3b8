package fakeapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
	"github.com/dmitrijs2005/fileconv/internal/common"
)

// Job is a submission recorded by the fake.
type Job struct {
	ID              string
	Kind            models.Kind
	Filename        string
	SourceFormat    string
	TargetFormat    string
	SelectedPages   []int
	TargetSizeBytes int64
	Size            int64
	// CompressedSize is set when a compression job completes.
	CompressedSize int64
	Content         []byte
	Status          models.RemoteStatus
	ErrorMessage    string
	RequestID       string
	CreatedAt       time.Time

	connections int
	polls       int
}

type Server struct {
	mu   sync.Mutex
	jobs map[string]*Job
	seq  []string

	script         Script
	streamDisabled bool
	submitStatus   models.RemoteStatus
	submitError    string
	readyAfter     int
	historyStatus  int
	basePath       string
	now            func() time.Time

	e *echo.Echo
}

type Option func(*Server)

// WithScript sets the progress stream script for every job.
func WithScript(s Script) Option {
	return func(f *Server) { f.script = s }
}

// WithoutStream makes GET /progress/{id} answer 404.
func WithoutStream() Option {
	return func(f *Server) { f.streamDisabled = true }
}

// WithSubmitStatus makes submissions answer with status right away, as the
// service does when it finishes synchronously.
func WithSubmitStatus(status models.RemoteStatus, errorMessage string) Option {
	return func(f *Server) {
		f.submitStatus = status
		f.submitError = errorMessage
	}
}

// WithReadyAfterPolls completes a job on its n-th download request when the
// stream has not completed it. Zero leaves completion to the stream.
func WithReadyAfterPolls(n int) Option {
	return func(f *Server) { f.readyAfter = n }
}

// WithHistoryStatus makes the history listings fail with code.
func WithHistoryStatus(code int) Option {
	return func(f *Server) { f.historyStatus = code }
}

// WithBasePath mounts every route under p, e.g. "/api".
func WithBasePath(p string) Option {
	return func(f *Server) { f.basePath = strings.TrimSuffix(p, "/") }
}

func New(opts ...Option) *Server {
	f := &Server{
		jobs:         make(map[string]*Job),
		script:       DefaultScript,
		submitStatus: models.RemoteStatusProcessing,
		now:          time.Now,
	}
	for _, o := range opts {
		o(f)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	g := e.Group(f.basePath)
	g.POST("/convert", f.convert)
	g.POST("/compress", f.compress)
	g.GET("/progress/:id", f.progress)
	g.GET("/download/:id", f.download(models.KindConversion))
	g.GET("/download/compression/:id", f.download(models.KindCompression))
	g.GET("/files/:id", f.file)
	g.GET("/conversions", f.history(models.KindConversion))
	g.GET("/compressions", f.history(models.KindCompression))
	g.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	f.e = e
	return f
}

// Handler returns the routes, for httptest.NewServer or http.ListenAndServe.
func (f *Server) Handler() http.Handler {
	return f.e
}

// Echo exposes the router so callers can add middleware.
func (f *Server) Echo() *echo.Echo {
	return f.e
}

// Jobs returns copies of all recorded jobs in submission order.
func (f *Server) Jobs() []Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Job, 0, len(f.seq))
	for _, id := range f.seq {
		out = append(out, *f.jobs[id])
	}
	return out
}

// Job returns a copy of the job with id.
func (f *Server) Job(id string) (Job, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// Connections returns how many progress streams were opened for id.
func (f *Server) Connections(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[id]; ok {
		return j.connections
	}
	return 0
}

func detail(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"detail": msg})
}

func (f *Server) receive(c echo.Context, kind models.Kind) (*Job, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, detail(c, http.StatusBadRequest, "No file provided")
	}
	src, err := fh.Open()
	if err != nil {
		return nil, detail(c, http.StatusBadRequest, err.Error())
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, detail(c, http.StatusBadRequest, err.Error())
	}

	source := strings.TrimPrefix(strings.ToLower(filepath.Ext(fh.Filename)), ".")
	if source == "jpeg" {
		source = "jpg"
	}

	return &Job{
		ID:           uuid.NewString(),
		Kind:         kind,
		Filename:     fh.Filename,
		SourceFormat: source,
		Size:         int64(len(content)),
		Content:      content,
		Status:       f.submitStatus,
		ErrorMessage: f.submitError,
		RequestID:    c.Request().Header.Get(common.RequestIDHeaderName),
		CreatedAt:    f.now(),
	}, nil
}

func (f *Server) store(j *Job) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[j.ID] = j
	f.seq = append(f.seq, j.ID)
}

func (f *Server) convert(c echo.Context) error {
	target := c.QueryParam("target_format")
	if target == "" {
		return detail(c, http.StatusUnprocessableEntity, "target_format is required")
	}

	j, err := f.receive(c, models.KindConversion)
	if j == nil {
		return err
	}
	j.TargetFormat = strings.ToLower(target)

	if raw := c.FormValue("selected_pages"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &j.SelectedPages); err != nil {
			return detail(c, http.StatusBadRequest, "Invalid selected_pages format")
		}
	}

	f.store(j)
	return c.JSON(http.StatusOK, models.Submission{
		ID:               j.ID,
		Status:           j.Status,
		OriginalFilename: j.Filename,
		SourceFormat:     j.SourceFormat,
		TargetFormat:     j.TargetFormat,
		ErrorMessage:     j.ErrorMessage,
	})
}

func (f *Server) compress(c echo.Context) error {
	j, err := f.receive(c, models.KindCompression)
	if j == nil {
		return err
	}

	size, perr := strconv.ParseInt(c.FormValue("target_size_bytes"), 10, 64)
	if perr != nil || size <= 0 {
		return detail(c, http.StatusBadRequest, "Target size must be positive")
	}
	if size >= j.Size {
		return detail(c, http.StatusBadRequest, "Target size must be less than original size")
	}
	j.TargetSizeBytes = size
	if j.Status == models.RemoteStatusCompleted {
		j.complete()
	}

	f.store(j)
	return c.JSON(http.StatusOK, models.Submission{
		ID:                j.ID,
		Status:            j.Status,
		OriginalFilename:  j.Filename,
		SourceFormat:      j.SourceFormat,
		OriginalSizeBytes: j.Size,
		TargetSizeBytes:   j.TargetSizeBytes,
		ErrorMessage:      j.ErrorMessage,
	})
}

func (f *Server) progress(c echo.Context) error {
	if f.streamDisabled {
		return detail(c, http.StatusNotFound, "Not Found")
	}

	id := c.Param("id")

	f.mu.Lock()
	j, ok := f.jobs[id]
	var frames []Frame
	if ok {
		j.connections++
		frames = f.script(*j, j.connections)
	}
	f.mu.Unlock()

	if !ok {
		frames = []Frame{ErrorEvent("Task not found")}
	}

	if len(frames) > 0 && frames[0].Drop {
		return detail(c, http.StatusServiceUnavailable, "stream unavailable")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ctx := c.Request().Context()
	for _, fr := range frames {
		if fr.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(fr.Delay):
			}
		}
		if fr.Drop {
			return nil
		}
		if err := writeFrame(res, fr); err != nil {
			return nil
		}
		res.Flush()
		if ok {
			f.observe(id, fr)
		}
	}
	return nil
}

func writeFrame(w io.Writer, fr Frame) error {
	if fr.Comment != "" {
		_, err := fmt.Fprintf(w, ": %s\n\n", fr.Comment)
		return err
	}
	data, err := json.Marshal(fr.Data)
	if err != nil {
		return err
	}
	if fr.Event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", fr.Event); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

// observe moves the job to the terminal status a streamed frame announced.
func (f *Server) observe(id string, fr Frame) {
	ev, ok := fr.Data.(models.ProgressEvent)
	if !ok {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	j := f.jobs[id]
	switch ev.Phase {
	case models.ServerPhaseCompleted:
		j.complete()
	case models.ServerPhaseFailed:
		j.Status = models.RemoteStatusFailed
		j.ErrorMessage = ev.Error
	}
}

func (j *Job) complete() {
	j.Status = models.RemoteStatusCompleted
	if j.Kind == models.KindCompression && j.CompressedSize == 0 {
		j.CompressedSize = j.TargetSizeBytes * 9 / 10
	}
}

func (f *Server) download(kind models.Kind) echo.HandlerFunc {
	noun := "Conversion"
	if kind == models.KindCompression {
		noun = "Compression"
	}

	return func(c echo.Context) error {
		id := c.Param("id")

		f.mu.Lock()
		j, ok := f.jobs[id]
		if ok && j.Kind == kind {
			j.polls++
			if f.readyAfter > 0 && j.polls >= f.readyAfter && j.Status != models.RemoteStatusFailed {
				j.complete()
			}
		}
		var status models.RemoteStatus
		if ok {
			status = j.Status
		}
		f.mu.Unlock()

		if !ok || j.Kind != kind {
			return detail(c, http.StatusNotFound, noun+" not found")
		}
		if status != models.RemoteStatusCompleted {
			return detail(c, http.StatusBadRequest, noun+" not completed yet")
		}

		scheme := "http"
		if c.IsTLS() {
			scheme = "https"
		}
		url := fmt.Sprintf("%s://%s%s/files/%s", scheme, c.Request().Host, f.basePath, id)
		return c.JSON(http.StatusOK, models.DownloadResponse{DownloadURL: url})
	}
}

// ResultContent is what GET /files/{id} serves for a completed job.
func ResultContent(j Job) []byte {
	return []byte("result of " + j.Filename)
}

func (f *Server) file(c echo.Context) error {
	j, ok := f.Job(c.Param("id"))
	if !ok || j.Status != models.RemoteStatusCompleted {
		return c.NoContent(http.StatusNotFound)
	}
	return c.Blob(http.StatusOK, "application/octet-stream", ResultContent(j))
}

func (f *Server) history(kind models.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		if f.historyStatus != 0 {
			return detail(c, f.historyStatus, "history unavailable")
		}

		limit := 50
		if l := c.QueryParam("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil {
				limit = parsed
			}
		}

		jobs := f.Jobs()
		sort.SliceStable(jobs, func(a, b int) bool {
			return jobs[a].CreatedAt.After(jobs[b].CreatedAt)
		})

		var conversions []models.ConversionResult
		var compressions []models.CompressionResult
		for _, j := range jobs {
			if j.Kind != kind {
				continue
			}
			created := j.CreatedAt.UTC().Format(time.RFC3339)
			var errMsg *string
			if j.ErrorMessage != "" {
				m := j.ErrorMessage
				errMsg = &m
			}
			if kind == models.KindConversion {
				size := j.Size
				conversions = append(conversions, models.ConversionResult{
					ID:               j.ID,
					OriginalFilename: j.Filename,
					SourceFormat:     j.SourceFormat,
					TargetFormat:     j.TargetFormat,
					Status:           string(j.Status),
					ErrorMessage:     errMsg,
					FileSizeBytes:    &size,
					CreatedAt:        &created,
				})
			} else {
				row := models.CompressionResult{
					ID:                j.ID,
					OriginalFilename:  j.Filename,
					SourceFormat:      j.SourceFormat,
					Status:            string(j.Status),
					OriginalSizeBytes: j.Size,
					TargetSizeBytes:   j.TargetSizeBytes,
					ErrorMessage:      errMsg,
					CreatedAt:         &created,
				}
				if j.CompressedSize > 0 {
					size := j.CompressedSize
					row.CompressedSizeBytes = &size
				}
				compressions = append(compressions, row)
			}
		}

		if kind == models.KindConversion {
			if len(conversions) > limit {
				conversions = conversions[:limit]
			}
			if conversions == nil {
				conversions = []models.ConversionResult{}
			}
			return c.JSON(http.StatusOK, conversions)
		}
		if len(compressions) > limit {
			compressions = compressions[:limit]
		}
		if compressions == nil {
			compressions = []models.CompressionResult{}
		}
		return c.JSON(http.StatusOK, compressions)
	}
}
