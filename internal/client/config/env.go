package config

import (
	"os"

	"github.com/dmitrijs2005/fileconv/internal/common"
	"github.com/joho/godotenv"
)

var lookupEnv = os.LookupEnv

// loadDotEnv copies variables from path into the process environment without
// overriding ones that are already set. A missing file is not an error.
func loadDotEnv(path string) {
	_ = godotenv.Load(path)
}

// parseEnv overlays cfg with FILECONV_* variables resolved through lookup.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(name string, dst *string) {
		if v, ok := lookup(common.EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	set("API_URL", &cfg.APIBaseURL)
	set("PROGRESS_MODE", &cfg.ProgressMode)
	set("LOG_LEVEL", &cfg.LogLevel)
	set("LOG_FORMAT", &cfg.LogFormat)
	set("DB_PATH", &cfg.DBPath)
	set("OUTPUT_DIR", &cfg.OutputDir)
}
