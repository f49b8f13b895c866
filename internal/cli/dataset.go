package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/synvisio/pkg/dataset"
	"github.com/matzehuels/synvisio/pkg/genome"
	"github.com/matzehuels/synvisio/pkg/pipeline"
	"github.com/matzehuels/synvisio/pkg/session"
	"github.com/matzehuels/synvisio/pkg/solutions"
)

// layoutFlags select the layout a command starts from instead of the
// dataset's own order and flips.
type layoutFlags struct {
	order   string
	flipped string
}

func (f *layoutFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.order, "order", "", "comma-separated chromosome order (default: dataset order)")
	cmd.Flags().StringVar(&f.flipped, "flipped", "", "comma-separated flipped chromosomes (default: dataset flips)")
}

// openSession reads a dataset and starts a session on it, applying any
// layout overrides.
func openSession(path string, lf layoutFlags) (*session.Session, error) {
	ds, err := dataset.Read(path)
	if err != nil {
		return nil, err
	}
	sess := session.New(ds, session.DefaultTTL)
	if lf.order == "" && lf.flipped == "" {
		return sess, nil
	}
	order := sess.Order
	if lf.order != "" {
		order = splitIDs(lf.order)
	}
	flipped := sess.Flipped
	if lf.flipped != "" {
		flipped = genome.NewFlipped(splitIDs(lf.flipped)...)
	}
	if err := sess.Apply(order, flipped); err != nil {
		return nil, err
	}
	return sess, nil
}

// annealFlags binds optimizer flags. Only flags set on the command line
// override the config file.
type annealFlags struct {
	opts pipeline.Options
}

func (f *annealFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.opts.Temperature, "temperature", 0, "initial temperature (default: from the input's collisions)")
	fs.Float64Var(&f.opts.Ratio, "ratio", 0, "cooling ratio in (0, 1)")
	fs.BoolVar(&f.opts.Auto, "auto", false, "pick a slower schedule for heavily tangled inputs")
	fs.Uint64Var(&f.opts.Seed, "seed", 0, "random seed; fixed seeds make runs reproducible and cacheable")
	fs.Float64Var(&f.opts.FlipFrequency, "flip-frequency", 0, "probability in [0, 1] that a step flips a chromosome")
	fs.BoolVar(&f.opts.KeepTogether, "keep-together", false, "only swap chromosomes of the same species prefix")
}

// resolve merges the config's anneal options with flags the user set.
func (f *annealFlags) resolve(cmd *cobra.Command, base pipeline.Options) pipeline.Options {
	opts := base
	fs := cmd.Flags()
	if fs.Changed("temperature") || fs.Changed("ratio") {
		opts.Temperature, opts.Ratio, opts.Auto = f.opts.Temperature, f.opts.Ratio, false
	}
	if fs.Changed("auto") {
		opts.Auto = f.opts.Auto
		if opts.Auto {
			opts.Temperature, opts.Ratio = 0, 0
		}
	}
	if fs.Changed("seed") {
		opts.Seed = f.opts.Seed
	}
	if fs.Changed("flip-frequency") {
		opts.FlipFrequency = f.opts.FlipFrequency
	}
	if fs.Changed("keep-together") {
		opts.KeepTogether = f.opts.KeepTogether
	}
	return opts
}

// restoreSolutions seeds the session with archived solutions for its dataset.
func (c *CLI) restoreSolutions(ctx context.Context, archive solutions.Archive, sess *session.Session) {
	if archive == nil {
		return
	}
	snap, err := archive.Load(ctx, sess.Dataset.Name)
	if err != nil {
		c.Logger.Warn("cannot load archived solutions", "dataset", sess.Dataset.Name, "err", err)
		return
	}
	if n := sess.Solutions.Restore(snap); n > 0 {
		c.Logger.Debug("restored solutions", "dataset", sess.Dataset.Name, "entries", n)
	}
}

// archiveSolutions merges the session's solutions into the archive.
func (c *CLI) archiveSolutions(ctx context.Context, archive solutions.Archive, sess *session.Session) {
	if archive == nil {
		return
	}
	if err := solutions.Merge(ctx, archive, sess.Solutions.Snapshot(sess.Dataset.Name)); err != nil {
		c.Logger.Warn("cannot archive solutions", "dataset", sess.Dataset.Name, "err", err)
	}
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
