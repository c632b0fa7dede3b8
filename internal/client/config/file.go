package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/fileconv/internal/flagx"
	"github.com/dmitrijs2005/fileconv/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for file decoding. Pointer fields tell
// "absent" apart from zero values so a partial file only overrides what it
// names.
type FileConfig struct {
	APIBaseURL     *string         `json:"api_base_url" yaml:"api_base_url"`
	UploadTimeout  *timex.Duration `json:"upload_timeout" yaml:"upload_timeout"`
	RequestTimeout *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	ProgressMode   *string         `json:"progress_mode" yaml:"progress_mode"`
	MaxReconnects  *int            `json:"max_reconnects" yaml:"max_reconnects"`
	ReconnectDelay *timex.Duration `json:"reconnect_delay" yaml:"reconnect_delay"`
	PollInterval   *timex.Duration `json:"poll_interval" yaml:"poll_interval"`
	PollTimeout    *timex.Duration `json:"poll_timeout" yaml:"poll_timeout"`
	HistoryLimit   *int            `json:"history_limit" yaml:"history_limit"`
	DBPath         *string         `json:"db_path" yaml:"db_path"`
	OutputDir      *string         `json:"output_dir" yaml:"output_dir"`
	LogLevel       *string         `json:"log_level" yaml:"log_level"`
	LogFormat      *string         `json:"log_format" yaml:"log_format"`
}

// parseFile overlays cfg with the file named by -c/-config/--config in args.
// No flag means nothing to do.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	if fc.APIBaseURL != nil {
		cfg.APIBaseURL = *fc.APIBaseURL
	}
	if fc.UploadTimeout != nil {
		cfg.UploadTimeout = fc.UploadTimeout.Duration
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.ProgressMode != nil {
		cfg.ProgressMode = *fc.ProgressMode
	}
	if fc.MaxReconnects != nil {
		cfg.MaxReconnects = *fc.MaxReconnects
	}
	if fc.ReconnectDelay != nil {
		cfg.ReconnectDelay = fc.ReconnectDelay.Duration
	}
	if fc.PollInterval != nil {
		cfg.PollInterval = fc.PollInterval.Duration
	}
	if fc.PollTimeout != nil {
		cfg.PollTimeout = fc.PollTimeout.Duration
	}
	if fc.HistoryLimit != nil {
		cfg.HistoryLimit = *fc.HistoryLimit
	}
	if fc.DBPath != nil {
		cfg.DBPath = *fc.DBPath
	}
	if fc.OutputDir != nil {
		cfg.OutputDir = *fc.OutputDir
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
}
