package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_parseFile_SourcesAndPrecedence(t *testing.T) {
	t.Run("json file", func(t *testing.T) {
		path := writeTemp(t, "cfg.json", `{"api_base_url":"http://json/api","poll_interval":"500ms","max_reconnects":5}`)

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseFile(cfg, []string{"-c", path}))

		assert.Equal(t, "http://json/api", cfg.APIBaseURL)
		assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
		assert.Equal(t, 5, cfg.MaxReconnects)
		assert.Equal(t, time.Second, cfg.ReconnectDelay, "absent keys keep defaults")
	})

	t.Run("yaml file", func(t *testing.T) {
		path := writeTemp(t, "cfg.yaml", "api_base_url: http://yaml/api\nprogress_mode: poll\npoll_timeout: 1m\nhistory_limit: 7\n")

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseFile(cfg, []string{"--config=" + path}))

		assert.Equal(t, "http://yaml/api", cfg.APIBaseURL)
		assert.Equal(t, ProgressPoll, cfg.ProgressMode)
		assert.Equal(t, time.Minute, cfg.PollTimeout)
		assert.Equal(t, 7, cfg.HistoryLimit)
	})

	t.Run("no flag leaves config untouched", func(t *testing.T) {
		cfg := &Config{APIBaseURL: "defaults"}
		require.NoError(t, parseFile(cfg, []string{"history"}))
		assert.Equal(t, "defaults", cfg.APIBaseURL)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := writeTemp(t, "bad.json", `{ this is not valid json`)
		require.ErrorContains(t, parseFile(&Config{}, []string{"-c", path}), "decode config")
	})

	t.Run("missing file", func(t *testing.T) {
		require.ErrorContains(t, parseFile(&Config{}, []string{"-c", filepath.Join(t.TempDir(), "nope.json")}), "read config")
	})
}
