package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/synvisio/pkg/collision"
	"github.com/matzehuels/synvisio/pkg/pipeline"
	"github.com/matzehuels/synvisio/pkg/session"
)

// etaSamples is the number of collision counts timed for the estimate.
const etaSamples = 25

// etaCommand creates the eta command.
func (c *CLI) etaCommand() *cobra.Command {
	var (
		lf layoutFlags
		af annealFlags
	)

	cmd := &cobra.Command{
		Use:   "eta [dataset]",
		Short: "Estimate how long an optimizer run will take",
		Long: `Estimate how long an optimizer run will take.

The number of steps follows from the cooling schedule alone. The time per
step is measured by timing a few collision counts on this machine.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := af.resolve(cmd, c.config.Anneal)
			return runETA(cmd.Context(), args[0], lf, opts)
		},
	}

	lf.bind(cmd)
	af.bind(cmd)

	return cmd
}

// estimate is the outcome of the eta command.
type estimate struct {
	collisions int
	iterations int
	perStep    time.Duration
}

func (e estimate) total() time.Duration { return time.Duration(e.iterations) * e.perStep }

func runETA(ctx context.Context, path string, lf layoutFlags, opts pipeline.Options) error {
	sess, err := openSession(path, lf)
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	est, err := estimateRun(ctx, sess, opts)
	if err != nil {
		return err
	}

	sched := opts.Schedule(est.collisions)
	printSuccess("%s", sess.Dataset.Name)
	printKeyValue("collisions", StyleNumber.Render(strconv.Itoa(est.collisions)))
	printKeyValue("temperature", strconv.FormatFloat(sched.Temperature, 'g', -1, 64))
	printKeyValue("ratio", strconv.FormatFloat(sched.Ratio, 'g', -1, 64))
	printKeyValue("iterations", strconv.Itoa(est.iterations))
	printKeyValue("per step", est.perStep.String())
	printKeyValue("estimate", est.total().Round(time.Millisecond).String())
	if est.collisions == 0 {
		printDetail("the layout has no collisions; the optimizer returns immediately")
	}
	return nil
}

// estimateRun counts the collisions of the session's layout and times
// counting to extrapolate the optimizer's running time.
func estimateRun(ctx context.Context, sess *session.Session, opts pipeline.Options) (estimate, error) {
	arr, err := sess.Arrangement()
	if err != nil {
		return estimate{}, err
	}
	chords := sess.Chords()
	ws := collision.NewWorkspace(len(chords))

	est := estimate{collisions: ws.Count(arr, chords, 0)}
	if est.collisions == 0 {
		return est, nil
	}
	est.iterations = opts.Schedule(est.collisions).Iterations()

	n := min(etaSamples, est.iterations)
	start := time.Now()
	for range n {
		if err := ctx.Err(); err != nil {
			return est, err
		}
		ws.Count(arr, chords, 0)
	}
	if n > 0 {
		est.perStep = time.Since(start) / time.Duration(n)
	}
	return est, nil
}
