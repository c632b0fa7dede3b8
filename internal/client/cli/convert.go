package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
	"github.com/dmitrijs2005/fileconv/internal/client/policy"
)

func (a *App) newConvertCmd() *cobra.Command {
	var (
		to    string
		pages []int
	)

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert a file to another format",
		Example: `  fileconv convert photo.png --to jpg
  fileconv convert scan.pdf --to png --pages 1,3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := models.PayloadFromFile(args[0])
			if err != nil {
				return err
			}

			target, err := resolveTarget(payload.Name, to)
			if err != nil {
				return err
			}

			var selected []int
			if cmd.Flags().Changed("pages") {
				selected = append([]int{}, pages...)
			}

			return a.runTask(cmd.Context(), models.Convert(payload, target, selected))
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", "", "target format (defaults to the only target of the source format)")
	cmd.Flags().IntSliceVarP(&pages, "pages", "p", nil, "1-based pages to convert, PDF to image only")
	return cmd
}

// resolveTarget parses the --to value, or picks the single target the
// source format allows.
func resolveTarget(filename, to string) (models.Format, error) {
	if to != "" {
		f, ok := policy.ParseFormat(to)
		if !ok {
			return "", fmt.Errorf("unknown format %q", to)
		}
		return f, nil
	}

	src, ok := policy.DetectFormat(filename)
	if !ok {
		return "", fmt.Errorf("unsupported file type: %q", filename)
	}
	if f, ok := policy.DefaultTarget(src); ok {
		return f, nil
	}
	return "", fmt.Errorf("choose a target with --to: %s", joinFormats(policy.TargetFormats(src)))
}

func joinFormats(fs []models.Format) string {
	s := make([]string, len(fs))
	for i, f := range fs {
		s[i] = string(f)
	}
	return strings.Join(s, ", ")
}
