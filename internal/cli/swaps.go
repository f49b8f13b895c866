package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/synvisio/pkg/errors"
	"github.com/matzehuels/synvisio/pkg/perm"
)

// swapsCommand creates the swaps command.
func (c *CLI) swapsCommand() *cobra.Command {
	var (
		from, to string
		svgPath  string
		dot      bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "swaps --from a,b,c --to c,b,a",
		Short: "Compute the shortest swap sequence between two orders",
		Long: `Compute the shortest swap sequence between two orders.

Each swap exchanges the positions of two chromosomes. Applied in order to
--from, the swaps produce --to. The sequence is minimal: its length is the
number of chromosomes minus the number of cycles of the permutation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSwaps(cmd.Context(), splitIDs(from), splitIDs(to), svgPath, dot, asJSON)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "current order (comma-separated)")
	cmd.Flags().StringVar(&to, "to", "", "target order (comma-separated)")
	cmd.Flags().StringVar(&svgPath, "svg", "", "render the swap plan as SVG to this file")
	cmd.Flags().BoolVar(&dot, "dot", false, "print the swap plan as Graphviz DOT")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the swaps as JSON")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runSwaps(ctx context.Context, current, target []string, svgPath string, dot, asJSON bool) error {
	if err := perm.Check(target, current); err != nil {
		return err
	}
	swaps := perm.MinSwaps(target, current)

	if svgPath != "" {
		svg, err := perm.RenderSVG(ctx, current, swaps)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "render swap plan")
		}
		if err := os.WriteFile(svgPath, svg, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "write %s", svgPath)
		}
	}

	switch {
	case asJSON:
		return printJSON(swaps)
	case dot:
		fmt.Fprint(stdout, perm.ToDOT(current, swaps))
		return nil
	}

	printSuccess("%d swaps", len(swaps))
	printKeyValue("from", strings.Join(current, " "))
	printKeyValue("to", strings.Join(target, " "))
	printSwaps(swaps)
	if svgPath != "" {
		printFile(svgPath)
	}
	return nil
}
