package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/fileconv/internal/client/config"
	"github.com/dmitrijs2005/fileconv/internal/logging"
)

// ErrCancelled is returned when the user interrupts a running task.
var ErrCancelled = errors.New("cancelled")

// Execute runs the command line in args (without the program name) and
// returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	app, err := NewApp(ctx, cfg, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer app.Close()

	root := app.Command()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrCancelled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// Command builds the cobra tree bound to a.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "fileconv",
		Short:         "Convert and compress files with the conversion service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)
	root.PersistentPreRunE = a.applyFlags

	// Values are already in a.config; the flags are declared so cobra
	// accepts them and lists them in help.
	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "path to a JSON or YAML config file")
	pf.StringVarP(&a.config.APIBaseURL, "api", "a", a.config.APIBaseURL, "base URL of the conversion API")
	pf.StringVarP(&a.config.ProgressMode, "mode", "m", a.config.ProgressMode, "progress mode: auto, stream or poll")
	pf.StringVarP(&a.config.LogLevel, "log-level", "l", a.config.LogLevel, "log level")

	root.AddCommand(
		a.newConvertCmd(),
		a.newCompressCmd(),
		a.newHistoryCmd(),
		a.newFormatsCmd(),
	)
	return root
}

// applyFlags checks the settings once cobra has parsed the persistent flags
// and rewires the API client and logger to their final values.
func (a *App) applyFlags(cmd *cobra.Command, _ []string) error {
	if err := a.config.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	flags := cmd.Flags()
	if !flags.Changed("log-level") && !flags.Changed("api") {
		return nil
	}
	log, err := logging.New(a.config.LogLevel, a.config.LogFormat, a.logOut)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.wire(log)
	return nil
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
