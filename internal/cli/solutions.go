package cli

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/synvisio/pkg/dataset"
)

// solutionsCommand creates the solutions command.
func (c *CLI) solutionsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "solutions [dataset]",
		Short: "List archived layouts for a dataset",
		Long: `List archived layouts for a dataset.

The argument is a dataset file or a dataset name. Layouts are grouped by the
set of chromosomes they contain; for each group the archive keeps the layout
with the fewest collisions per chord list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolutions(cmd.Context(), args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the archive as JSON")

	return cmd
}

func (c *CLI) runSolutions(ctx context.Context, arg string, asJSON bool) error {
	name := arg
	if _, err := os.Stat(arg); err == nil {
		ds, err := dataset.Read(arg)
		if err != nil {
			return err
		}
		name = ds.Name
	}

	archive, closeArchive, err := c.newArchive(ctx)
	if err != nil {
		return err
	}
	defer closeArchive()
	if archive == nil {
		printInfo("Solution archive is disabled")
		return nil
	}

	snap, err := archive.Load(ctx, name)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(snap)
	}
	if snap == nil || snap.Len() == 0 {
		printInfo("No archived layouts for %s", name)
		return nil
	}

	printSuccess("%d archived layouts for %s", snap.Len(), name)
	var rows [][]string
	for _, b := range snap.Buckets {
		for _, e := range b.Entries {
			rows = append(rows, []string{
				strconv.Itoa(e.Collisions),
				strings.Join(e.Arrangement, " "),
				strings.Join(e.Flipped, " "),
				strconv.Itoa(len(e.Chords)),
				e.SavedAt.Format("2006-01-02 15:04"),
			})
		}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("collisions", "order", "flipped", "chords", "saved").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 0:
				return StyleNumber
			case col == 4:
				return StyleDim
			default:
				return StyleValue
			}
		})
	emit(t.Render())
	return nil
}
