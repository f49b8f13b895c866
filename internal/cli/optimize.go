package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/synvisio/pkg/anneal"
	"github.com/matzehuels/synvisio/pkg/dataset"
	"github.com/matzehuels/synvisio/pkg/pipeline"
	"github.com/matzehuels/synvisio/pkg/session"
)

// progressEvery is how often (in steps) the spinner message is refreshed.
const progressEvery = 50

// optimizeOpts holds the command-line flags for the optimize command.
type optimizeOpts struct {
	layout  layoutFlags
	anneal  annealFlags
	output  string // write the dataset with the best layout here
	tui     bool   // show the live monitor
	noCache bool
	refresh bool // ignore cached results
	asJSON  bool
}

// optimizeCommand creates the optimize command.
func (c *CLI) optimizeCommand() *cobra.Command {
	var o optimizeOpts

	cmd := &cobra.Command{
		Use:   "optimize [dataset]",
		Short: "Search for a layout with fewer chord collisions",
		Long: `Search for a layout with fewer chord collisions.

The optimizer runs simulated annealing over chromosome orders, and over
orientations when --flip-frequency is set. It prints the best layout found
and the shortest sequence of swaps that turns the starting order into it.

Interrupting the search (Ctrl+C, or q in --tui) keeps the best layout found
so far. Every result is recorded in the solution archive, so later runs on
the same dataset can look up layouts already seen.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := o.anneal.resolve(cmd, c.config.Anneal)
			opts.Refresh = o.refresh
			return c.runOptimize(cmd.Context(), args[0], o, opts)
		},
	}

	o.layout.bind(cmd)
	o.anneal.bind(cmd)
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write the dataset with the optimized layout to this file")
	cmd.Flags().BoolVar(&o.tui, "tui", false, "show a live progress monitor")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "print the result as JSON")

	return cmd
}

func (c *CLI) runOptimize(ctx context.Context, path string, o optimizeOpts, opts pipeline.Options) error {
	sess, err := openSession(path, o.layout)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, o.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	archive, closeArchive, err := c.newArchive(ctx)
	if err != nil {
		c.Logger.Warn("solution archive unavailable", "err", err)
	}
	defer closeArchive()
	c.restoreSolutions(ctx, archive, sess)

	opts.Logger = c.Logger
	var (
		res *pipeline.Result
		hit bool
	)
	st := startStage(c.Logger, "optimized "+sess.Dataset.Name)
	if o.tui {
		res, hit, err = runOptimizeTUI(ctx, runner, sess, opts)
	} else {
		res, hit, err = runWithSpinner(ctx, runner, sess, opts)
	}
	if res == nil {
		return err
	}
	if res.Cancelled {
		printWarning("stopped early, keeping the best layout found")
	} else if err != nil {
		return err
	}
	st.done("collisions", res.Collisions, "iterations", res.Iterations, "cached", hit)

	// The interrupted context must not stop the archive write.
	c.archiveSolutions(context.WithoutCancel(ctx), archive, sess)

	if o.output != "" {
		if err := writeOptimized(o.output, sess.Dataset, res); err != nil {
			return err
		}
	}
	if o.asJSON {
		return printJSON(res)
	}
	printOptimizeResult(path, o.output, sess, res, hit)
	return nil
}

// runWithSpinner runs the optimizer behind a spinner that shows progress.
func runWithSpinner(ctx context.Context, runner *pipeline.Runner, sess *session.Session, opts pipeline.Options) (*pipeline.Result, bool, error) {
	spinner := newSpinnerWithContext(ctx, "Annealing...")
	spinner.Start()
	defer spinner.Stop()

	opts.Progress = func(s anneal.Step) {
		if s.Iteration%progressEvery == 0 {
			spinner.SetMessage(fmt.Sprintf("Annealing... %d/%d  best %d", s.Iteration, s.Total, s.Best))
		}
	}
	return runner.Optimize(ctx, sess, opts)
}

// writeOptimized writes ds with the result's order and flips.
func writeOptimized(path string, ds *dataset.Dataset, res *pipeline.Result) error {
	arr, err := ds.Chromosomes.Reorder(res.Order)
	if err != nil {
		return err
	}
	out := *ds
	out.Chromosomes = arr
	out.Flipped = res.Flipped
	if out.Name == "" {
		out.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return dataset.Write(path, &out)
}

func printOptimizeResult(input, output string, sess *session.Session, res *pipeline.Result, hit bool) {
	if res.Improved() {
		printSuccess("Found a better layout for %s", sess.Dataset.Name)
	} else {
		printInfo("No better layout found for %s", sess.Dataset.Name)
	}
	printCollisionChange(res.InitialCollisions, res.Collisions)
	printKeyValue("order", strings.Join(res.Order, " "))
	if len(res.FlipChanges) > 0 {
		printKeyValue("flip", strings.Join(res.FlipChanges, " "))
	}
	if res.Iterations > 0 {
		printKeyValue("iterations", strconv.Itoa(res.Iterations))
		printKeyValue("schedule", fmt.Sprintf("T=%g ratio=%g", res.Schedule.Temperature, res.Schedule.Ratio))
	}
	printStats(len(sess.Dataset.Chromosomes), len(sess.Dataset.Chords), hit)

	if res.Improved() {
		printNewline()
		printSwaps(res.Swaps)
	}
	if output != "" {
		printFile(output)
		printNewline()
		printNextStep("Check", appName+" count "+output)
		return
	}
	if res.Improved() {
		printNewline()
		printNextStep("Save", appName+" optimize "+input+" -o "+optimizedPath(input))
	}
}

// optimizedPath suggests an output file next to input.
func optimizedPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".optimized" + ext
}
