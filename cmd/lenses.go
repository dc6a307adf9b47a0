package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"repolens.dev/pkg/repolens/internal/adapter"
	"repolens.dev/pkg/repolens/internal/domain"
	m "repolens.dev/pkg/repolens/internal/model"
)

// lensesCmd represents the lenses command.
var lensesCmd = newLensesCmd()

func newLensesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lenses [root]",
		Short: "List available lenses",
		Long: `List the built-in lenses plus any custom lenses defined in the
repository config (.repolens_config.json) at the given root.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			manager := domain.NewLensManager()

			config, _, err := adapter.LoadRepoConfig(m.Path(filepath.Join(root, adapter.RepoConfigFileName)))
			if err != nil {
				return err
			}

			if len(config.Lenses) > 0 {
				manager.LoadCustom(config.Lenses)
			}

			cmd.Print(renderLensTable(manager.All()))

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(lensesCmd)
}

func renderLensTable(lenses []m.Lens) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Name", "Truncation", "Sort", "Groups", "Description"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT,
	})

	for _, lens := range lenses {
		truncation := string(lens.TruncateMode)
		if truncation == "" {
			truncation = string(m.TruncateNone)
		}

		if lens.TruncateLines > 0 {
			truncation = fmt.Sprintf("%s (%d)", truncation, lens.TruncateLines)
		}

		sortDesc := ""
		if lens.SortBy != "" {
			sortDesc = fmt.Sprintf("%s %s", lens.SortBy, lens.SortOrder)
		}

		table.Append([]string{
			lens.Name,
			truncation,
			sortDesc,
			strconv.Itoa(len(lens.Groups)),
			lens.Description,
		})
	}

	table.Render()

	return buf.String()
}
