package cli

import (
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/fileconv/internal/client/policy"
)

func (a *App) newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported conversions and compressible formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			a.printf("Conversions:\n")
			for _, f := range policy.Formats() {
				_, _ = tw.Write([]byte("  " + string(f) + "\t-> " + joinFormats(policy.TargetFormats(f)) + "\n"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			a.printf("\nCompression (minimum target size):\n")
			for _, f := range policy.Compressible() {
				_, _ = tw.Write([]byte("  " + string(f) + "\t" + humanize.IBytes(uint64(policy.MinTargetBytes(f))) + "\n"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			a.printf("\nMaximum upload size: %s\n", humanize.IBytes(uint64(policy.MaxUploadBytes)))
			return nil
		},
	}
}
