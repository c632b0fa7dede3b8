package cli

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
	"github.com/dmitrijs2005/fileconv/internal/client/policy"
	"github.com/dmitrijs2005/fileconv/internal/filex"
)

func (a *App) newCompressCmd() *cobra.Command {
	var size string

	cmd := &cobra.Command{
		Use:     "compress FILE",
		Short:   "Compress a jpg, png or pdf file to a target size",
		Example: `  fileconv compress holiday.jpg --size 500KB`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := models.PayloadFromFile(args[0])
			if err != nil {
				return err
			}

			target := policy.DefaultTargetSize(payload.Size)
			if size != "" {
				if target, err = filex.ParseSize(size); err != nil {
					return err
				}
			}
			a.printf("Compressing %s (%s) to %s\n", payload.Name,
				humanize.IBytes(uint64(payload.Size)), humanize.IBytes(uint64(target)))

			return a.runTask(cmd.Context(), models.Compress(payload, target))
		},
	}

	cmd.Flags().StringVarP(&size, "size", "s", "", "target size such as 500KB or 2MB (default: half the file)")
	return cmd
}
