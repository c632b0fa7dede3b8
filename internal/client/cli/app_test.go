package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fileconv/internal/client/config"
	"github.com/dmitrijs2005/fileconv/internal/client/policy"
	"github.com/dmitrijs2005/fileconv/internal/common"
	"github.com/dmitrijs2005/fileconv/internal/fakeapi"
)

var (
	pngMagic  = []byte("\x89PNG\r\n\x1a\n")
	jpegMagic = []byte{0xFF, 0xD8, 0xFF, 0xE0}
)

func writeFile(t *testing.T, dir, name string, magic []byte, size int) string {
	t.Helper()
	b := make([]byte, size)
	copy(b, magic)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

type harness struct {
	api *fakeapi.Server
	app *App
	out *bytes.Buffer
	dir string
}

func newHarness(t *testing.T, opts ...fakeapi.Option) *harness {
	t.Helper()
	api := fakeapi.New(append([]fakeapi.Option{fakeapi.WithBasePath("/api")}, opts...)...)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.APIBaseURL = srv.URL + "/api"
	cfg.DBPath = filepath.Join(dir, "history.db")
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.ReconnectDelay = 5 * time.Millisecond
	cfg.PollInterval = 5 * time.Millisecond
	cfg.LogFormat = "nop"

	out := &bytes.Buffer{}
	app, err := NewApp(context.Background(), cfg, out, out)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	return &harness{api: api, app: app, out: out, dir: dir}
}

func (h *harness) run(args ...string) error {
	root := h.app.Command()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestConvert_SavesResult(t *testing.T) {
	h := newHarness(t)
	src := writeFile(t, h.dir, "photo.png", pngMagic, 4096)

	require.NoError(t, h.run("convert", src, "--to", "JPEG"))

	jobs := h.api.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "jpg", jobs[0].TargetFormat)
	assert.Nil(t, jobs[0].SelectedPages)

	got, err := os.ReadFile(filepath.Join(h.dir, "out", "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, fakeapi.ResultContent(jobs[0]), got)
	assert.Contains(t, h.out.String(), "Saved ")
	assert.Contains(t, h.out.String(), "Done")
}

func TestConvert_PagesAreSent(t *testing.T) {
	h := newHarness(t)
	src := writeFile(t, h.dir, "scan.pdf", []byte("%PDF-1.7\n"), 20000)

	require.NoError(t, h.run("convert", src, "--to", "png", "--pages", "1,3"))

	jobs := h.api.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, []int{1, 3}, jobs[0].SelectedPages)
}

func TestConvert_NeedsTargetWhenAmbiguous(t *testing.T) {
	h := newHarness(t)
	src := writeFile(t, h.dir, "photo.png", pngMagic, 4096)

	err := h.run("convert", src)
	require.ErrorContains(t, err, "jpg, gif")
	assert.Empty(t, h.api.Jobs())
}

func TestConvert_DefaultTarget(t *testing.T) {
	h := newHarness(t)
	src := writeFile(t, h.dir, "slides.pptx", []byte("PK\x03\x04"), 4096)

	require.NoError(t, h.run("convert", src))
	require.Len(t, h.api.Jobs(), 1)
	assert.Equal(t, string(policy.PDF), h.api.Jobs()[0].TargetFormat)
}

func TestConvert_RemoteFailure(t *testing.T) {
	h := newHarness(t, fakeapi.WithScript(fakeapi.FailingScript("Corrupt image")))
	src := writeFile(t, h.dir, "photo.png", pngMagic, 4096)

	err := h.run("convert", src, "--to", "gif")
	require.EqualError(t, err, "Corrupt image")

	require.NoError(t, h.run("history", "--local"))
	assert.Contains(t, h.out.String(), "failed: Corrupt image")

	_, statErr := os.Stat(filepath.Join(h.dir, "out"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCompress_RejectsTargetAboveSource(t *testing.T) {
	h := newHarness(t)
	src := writeFile(t, h.dir, "holiday.jpg", jpegMagic, 8192)

	err := h.run("compress", src, "--size", "10KB")
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, h.api.Jobs())
}

func TestCompress_RejectedRunDoesNotReadHistory(t *testing.T) {
	h := newHarness(t)
	src := writeFile(t, h.dir, "holiday.jpg", jpegMagic, 8192)

	require.NoError(t, h.run("compress", src))
	require.Len(t, h.api.Jobs(), 1)
	h.out.Reset()

	err := h.run("compress", src, "--size", "10KB")
	require.ErrorIs(t, err, common.ErrValidation)
	assert.NotContains(t, h.out.String(), "already processed")
	assert.Len(t, h.api.Jobs(), 1)

	require.NoError(t, h.run("compress", src))
	assert.Contains(t, h.out.String(), "already processed")
}

func TestRoot_RejectsInvalidModeFlag(t *testing.T) {
	h := newHarness(t)
	src := writeFile(t, h.dir, "photo.png", pngMagic, 4096)

	require.ErrorContains(t, h.run("--mode=bogus", "formats"), "invalid progress mode")
	require.ErrorContains(t, h.run("convert", src, "--to", "jpg", "--mode", "bogus"), "invalid progress mode")
	assert.Empty(t, h.api.Jobs())
}

func TestExecute_InvalidLongModeFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FILECONV_PROGRESS_MODE", "")

	assert.Equal(t, 2, Execute(context.Background(), []string{"--mode", "bogus", "formats"}))
}

func TestRoot_LogLevelFlagRebuildsLogger(t *testing.T) {
	h := newHarness(t)
	h.app.config.LogFormat = "text"
	h.app.config.LogLevel = "info"

	require.NoError(t, h.run("--log-level", "debug", "formats"))
	h.out.Reset()
	h.app.log.Debug(context.Background(), "debug line visible")
	assert.Contains(t, h.out.String(), "debug line visible")
}

func TestCompress_DefaultsToHalf(t *testing.T) {
	h := newHarness(t)
	src := writeFile(t, h.dir, "holiday.jpg", jpegMagic, 8192)

	require.NoError(t, h.run("compress", src))

	jobs := h.api.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, int64(4096), jobs[0].TargetSizeBytes)
	_, err := os.Stat(filepath.Join(h.dir, "out", "holiday_compressed.jpg"))
	require.NoError(t, err)
}

func TestCompress_NotesPreviousRun(t *testing.T) {
	h := newHarness(t)
	src := writeFile(t, h.dir, "holiday.jpg", jpegMagic, 8192)

	require.NoError(t, h.run("compress", src, "--size", "4KB"))
	require.NoError(t, h.run("compress", src, "--size", "4KB"))

	assert.Contains(t, h.out.String(), "already processed")
	_, err := os.Stat(filepath.Join(h.dir, "out", "holiday_compressed (1).jpg"))
	require.NoError(t, err)
}

func TestHistory_RemoteThenCached(t *testing.T) {
	h := newHarness(t)
	src := writeFile(t, h.dir, "holiday.jpg", jpegMagic, 8192)
	require.NoError(t, h.run("compress", src, "--size", "4KB"))

	h.out.Reset()
	require.NoError(t, h.run("history", "--kind", "compressions"))
	assert.Contains(t, h.out.String(), "holiday.jpg")
	assert.Contains(t, h.out.String(), "8.0 KiB -> 3.6 KiB")
	assert.NotContains(t, h.out.String(), "Conversions:")
}

func TestHistory_UnreachableWithoutCache(t *testing.T) {
	h := newHarness(t, fakeapi.WithHistoryStatus(503))

	require.NoError(t, h.run("history"))
	assert.Contains(t, h.out.String(), "no history is cached")
}

func TestHistory_UnknownKind(t *testing.T) {
	h := newHarness(t)
	require.Error(t, h.run("history", "--kind", "uploads"))
}

func TestFormats(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("formats"))

	out := h.out.String()
	assert.Contains(t, out, "pdf")
	assert.Contains(t, out, "-> jpg, png, gif, docx")
	assert.Contains(t, out, "10 KiB")
	assert.Contains(t, out, "Maximum upload size: 50 MiB")
}
