// Package config loads runtime configuration for the fileconv CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory (github.com/joho/godotenv) and
//     FILECONV_* environment variables (see parseEnv).
//  3. Optional JSON or YAML file selected via -c, -config or --config
//     (see parseFile). Files ending in .yaml/.yml are decoded as YAML.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the conversion API
//	-m string   progress mode: auto, stream or poll
//	-l string   log level: debug, info, warn, error
//
// # Environment
//
//	FILECONV_API_URL, FILECONV_PROGRESS_MODE, FILECONV_LOG_LEVEL,
//	FILECONV_LOG_FORMAT, FILECONV_DB_PATH, FILECONV_OUTPUT_DIR
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8000/api",
//	  "progress_mode": "auto",
//	  "reconnect_delay": "1s",
//	  "poll_interval": "2s"
//	}
package config
