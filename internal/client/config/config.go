package config

import (
	"fmt"
	"time"
)

// Progress modes.
const (
	ProgressAuto   = "auto"
	ProgressStream = "stream"
	ProgressPoll   = "poll"
)

// Config holds runtime settings for the fileconv CLI.
//
// ReconnectDelay is the unit of the linear reconnect backoff: attempt n
// waits n*ReconnectDelay.
type Config struct {
	APIBaseURL     string
	UploadTimeout  time.Duration
	RequestTimeout time.Duration
	ProgressMode   string
	MaxReconnects  int
	ReconnectDelay time.Duration
	PollInterval   time.Duration
	PollTimeout    time.Duration
	HistoryLimit   int
	DBPath         string
	OutputDir      string
	LogLevel       string
	LogFormat      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/api"
	c.UploadTimeout = 5 * time.Minute
	c.RequestTimeout = 30 * time.Second
	c.ProgressMode = ProgressAuto
	c.MaxReconnects = 3
	c.ReconnectDelay = time.Second
	c.PollInterval = 2 * time.Second
	c.PollTimeout = 5 * time.Minute
	c.HistoryLimit = 20
	c.DBPath = "history.db"
	c.OutputDir = "."
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Validate reports settings that would make the client misbehave.
func (c *Config) Validate() error {
	switch c.ProgressMode {
	case ProgressAuto, ProgressStream, ProgressPoll:
	default:
		return fmt.Errorf("invalid progress mode %q", c.ProgressMode)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base url is empty")
	}
	if c.MaxReconnects < 0 {
		return fmt.Errorf("max reconnects must not be negative")
	}
	if c.PollInterval <= 0 || c.ReconnectDelay <= 0 {
		return fmt.Errorf("poll interval and reconnect delay must be positive")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history limit must be positive")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, a config file (if given) and command-line flags. Later
// sources take precedence over earlier ones. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	loadDotEnv(".env")
	parseEnv(cfg, lookupEnv)

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
