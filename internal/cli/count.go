package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"
)

// countCommand creates the count command.
func (c *CLI) countCommand() *cobra.Command {
	var (
		lf      layoutFlags
		noCache bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "count [dataset]",
		Short: "Count chord collisions for a layout",
		Long: `Count chord collisions for a layout.

Two chords collide when they cross inside the circle. Chords that start and
end at the same angles as another chord are superimposed: they always count
as a collision and no reordering can separate them.

The layout defaults to the dataset's chromosome order and flips; use --order
and --flipped to count another one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCount(cmd.Context(), args[0], lf, noCache, asJSON)
		},
	}

	lf.bind(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}

func (c *CLI) runCount(ctx context.Context, path string, lf layoutFlags, noCache, asJSON bool) error {
	sess, err := openSession(path, lf)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, hit, err := runner.Collisions(ctx, sess)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(res)
	}

	printSuccess("%s", sess.Dataset.Name)
	printKeyValue("collisions", StyleNumber.Render(strconv.Itoa(res.Collisions)))
	printKeyValue("superimposed", strconv.Itoa(res.Superimposed))
	printStats(len(sess.Dataset.Chromosomes), res.Chords, hit)
	if res.AllSuperimposed() {
		printWarning("every collision comes from superimposed chords; reordering cannot help")
	} else if res.Collisions > 0 {
		printNewline()
		printNextStep("Optimize", appName+" optimize "+path)
	}
	return nil
}
