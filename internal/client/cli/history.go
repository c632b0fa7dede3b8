package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
)

func (a *App) newHistoryCmd() *cobra.Command {
	var (
		kind  string
		limit int
		local bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversions and compressions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = a.config.HistoryLimit
			}
			if local {
				return a.localHistory(cmd, limit)
			}

			switch kind {
			case "", "all", "conversions", "compressions":
			default:
				return fmt.Errorf("unknown kind %q: use conversions or compressions", kind)
			}

			h, err := a.history.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if h.Stale {
				if h.RefreshedAt.IsZero() {
					a.printf("The service is unreachable and no history is cached.\n")
					return nil
				}
				a.printf("The service is unreachable; showing history cached %s.\n\n", humanize.Time(h.RefreshedAt))
			}

			if kind != "compressions" {
				a.printf("Conversions:\n")
				printItems(a.out, h.Conversions)
			}
			if kind != "conversions" {
				if kind == "" || kind == "all" {
					a.printf("\n")
				}
				a.printf("Compressions:\n")
				printItems(a.out, h.Compressions)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "all", "conversions, compressions or all")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum rows per kind (default from config)")
	cmd.Flags().BoolVar(&local, "local", false, "list tasks started from this machine")
	return cmd
}

func printItems(w io.Writer, items []models.HistoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, it := range items {
		target := it.Target
		size := ""
		if it.Kind == models.KindCompression {
			target = humanizeBytesText(it.Target)
			if it.ResultSizeBytes > 0 {
				size = humanize.IBytes(uint64(it.SizeBytes)) + " -> " + humanize.IBytes(uint64(it.ResultSizeBytes))
			} else {
				size = humanize.IBytes(uint64(it.SizeBytes))
			}
		} else if it.SizeBytes > 0 {
			size = humanize.IBytes(uint64(it.SizeBytes))
		}

		status := it.Status
		if it.ErrorMessage != "" {
			status += ": " + it.ErrorMessage
		}
		fmt.Fprintf(tw, "  %s\t%s -> %s\t%s\t%s\t%s\n", it.OriginalFilename, it.SourceFormat, target, size, status, it.CreatedAt)
	}
	_ = tw.Flush()
}

func (a *App) localHistory(cmd *cobra.Command, limit int) error {
	rows, err := a.records.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		a.printf("No tasks were started from this machine yet.\n")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		target := r.Target
		if r.Kind == models.KindCompression {
			target = humanizeBytesText(r.Target)
		}
		status := string(r.Phase)
		if r.Failure != "" {
			status += ": " + r.Failure
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", r.Filename, r.Kind, target, status, humanize.Time(r.FinishedAt))
	}
	return tw.Flush()
}

// humanizeBytesText formats a byte count stored as text, leaving anything
// else as is.
func humanizeBytesText(s string) string {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return s
	}
	return humanize.IBytes(n)
}
