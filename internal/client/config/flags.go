package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/fileconv/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags, each with a long form matching the cobra flag:
//
//	-a, --api string         base URL of the conversion API
//	-m, --mode string        progress mode (auto, stream, poll)
//	-l, --log-level string   log level
//
// args is filtered with flagx.FilterArgs first so subcommand flags and
// positional arguments do not interfere.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, []string{
		"-a", "-api", "--api",
		"-m", "-mode", "--mode",
		"-l", "-log-level", "--log-level",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	for _, name := range []string{"a", "api"} {
		fs.StringVar(&cfg.APIBaseURL, name, cfg.APIBaseURL, "base URL of the conversion API")
	}
	for _, name := range []string{"m", "mode"} {
		fs.StringVar(&cfg.ProgressMode, name, cfg.ProgressMode, "progress mode: auto, stream or poll")
	}
	for _, name := range []string{"l", "log-level"} {
		fs.StringVar(&cfg.LogLevel, name, cfg.LogLevel, "log level")
	}

	return fs.Parse(filtered)
}
