package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/synvisio/pkg/anneal"
	"github.com/matzehuels/synvisio/pkg/dataset"
	"github.com/matzehuels/synvisio/pkg/errors"
	"github.com/matzehuels/synvisio/pkg/perm"
	"github.com/matzehuels/synvisio/pkg/pipeline"
)

// squareJSON has two chords A-C and B-D that cross in the order A B C D.
const squareJSON = `{
  "name": "square",
  "chromosomes": [
    {"id": "A", "length": 100}, {"id": "B", "length": 100},
    {"id": "C", "length": 100}, {"id": "D", "length": 100}
  ],
  "chords": [
    {"block_id": "b1", "source_id": "A", "source_start": 10, "source_end": 20,
     "target_id": "C", "target_start": 10, "target_end": 20},
    {"block_id": "b2", "source_id": "B", "source_start": 10, "source_end": 20,
     "target_id": "D", "target_start": 10, "target_end": 20}
  ]
}`

// isolate points every XDG directory at a fresh temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	for _, env := range []string{"XDG_CONFIG_HOME", "XDG_CACHE_HOME", "XDG_DATA_HOME"} {
		t.Setenv(env, filepath.Join(base, strings.ToLower(env)))
	}
	return base
}

func writeSquare(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "square.json")
	require.NoError(t, os.WriteFile(path, []byte(squareJSON), 0o644))
	return path
}

// execute runs the CLI with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	old := stdout
	stdout = &out
	t.Cleanup(func() { stdout = old })

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	for _, name := range []string{"count", "optimize", "swaps", "eta", "solutions", "serve", "cache", "completion"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestCountCommand(t *testing.T) {
	dir := isolate(t)
	path := writeSquare(t, dir)

	out, err := execute(t, "count", path)
	require.NoError(t, err)
	assert.Contains(t, out, "collisions")
	assert.Contains(t, out, "4 chromosomes")

	out, err = execute(t, "count", path, "--order", "A,C,B,D", "--json")
	require.NoError(t, err)
	var res pipeline.CollisionResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 0, res.Collisions)
	assert.Equal(t, []string{"A", "C", "B", "D"}, res.Order)
}

func TestCountCommandBadOrder(t *testing.T) {
	dir := isolate(t)
	path := writeSquare(t, dir)

	_, err := execute(t, "count", path, "--order", "A,B")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidArrangement, errors.GetCode(err))
}

func TestOptimizeCommandWritesDataset(t *testing.T) {
	dir := isolate(t)
	path := writeSquare(t, dir)
	outPath := filepath.Join(dir, "square.optimized.json")

	out, err := execute(t, "optimize", path, "--seed", "7", "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Found a better layout")

	ds, err := dataset.Read(outPath)
	require.NoError(t, err)
	out, err = execute(t, "count", outPath, "--json")
	require.NoError(t, err)
	var res pipeline.CollisionResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 0, res.Collisions)
	assert.Len(t, ds.Chromosomes, 4)

	// The run was archived.
	out, err = execute(t, "solutions", "square")
	require.NoError(t, err)
	assert.Contains(t, out, "archived layouts for square")
}

func TestOptimizeCommandJSON(t *testing.T) {
	dir := isolate(t)
	path := writeSquare(t, dir)

	out, err := execute(t, "optimize", path, "--seed", "7", "--json")
	require.NoError(t, err)
	var res pipeline.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.InitialCollisions)
	assert.Equal(t, 0, res.Collisions)
	assert.Equal(t, res.Order, perm.Apply([]string{"A", "B", "C", "D"}, res.Swaps))
}

func TestOptimizeCommandInvalidOptions(t *testing.T) {
	dir := isolate(t)
	path := writeSquare(t, dir)

	_, err := execute(t, "optimize", path, "--flip-frequency", "2")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidOptions, errors.GetCode(err))
}

func TestSwapsCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "swaps", "--from", "at1,at2,at3,at4", "--to", "at3,at2,at4,at1", "--json")
	require.NoError(t, err)
	var swaps []perm.Swap
	require.NoError(t, json.Unmarshal([]byte(out), &swaps))
	assert.Len(t, swaps, 2)
	assert.Equal(t, []string{"at3", "at2", "at4", "at1"}, perm.Apply([]string{"at1", "at2", "at3", "at4"}, swaps))

	out, err = execute(t, "swaps", "--from", "a,b", "--to", "b,a", "--dot")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")

	_, err = execute(t, "swaps", "--from", "a,b", "--to", "a,c")
	assert.Equal(t, errors.ErrCodeInvalidArrangement, errors.GetCode(err))
}

func TestETACommand(t *testing.T) {
	dir := isolate(t)
	path := writeSquare(t, dir)

	out, err := execute(t, "eta", path)
	require.NoError(t, err)
	assert.Contains(t, out, "iterations")
	assert.Contains(t, out, "estimate")
}

func TestEstimateRun(t *testing.T) {
	dir := isolate(t)
	sess, err := openSession(writeSquare(t, dir), layoutFlags{})
	require.NoError(t, err)

	est, err := estimateRun(context.Background(), sess, pipeline.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, est.collisions)
	assert.Equal(t, anneal.DefaultSchedule(1).Iterations(), est.iterations)

	untangled, err := openSession(filepath.Join(dir, "square.json"), layoutFlags{order: "A,C,B,D"})
	require.NoError(t, err)
	est, err = estimateRun(context.Background(), untangled, pipeline.Options{})
	require.NoError(t, err)
	assert.Zero(t, est.iterations)
	assert.Zero(t, est.total())
}

func TestSolutionsCommandEmpty(t *testing.T) {
	isolate(t)
	out, err := execute(t, "solutions", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No archived layouts")
}

func TestCacheCommands(t *testing.T) {
	base := isolate(t)
	dir := writeSquare(t, base)

	out, err := execute(t, "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "xdg_cache_home", appName), strings.TrimSpace(out))

	_, err = execute(t, "optimize", dir, "--seed", "3")
	require.NoError(t, err)
	out, err = execute(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared")
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, appName)
}

func TestConfigFlag(t *testing.T) {
	dir := isolate(t)
	path := writeSquare(t, dir)
	cfg := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[cache]\nbackend = \"carrier-pigeon\"\n"), 0o644))

	_, err := execute(t, "--config", cfg, "count", path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidOptions, errors.GetCode(err))
}

func TestAnnealFlagsResolve(t *testing.T) {
	newCmd := func() (*cobra.Command, *annealFlags) {
		var af annealFlags
		cmd := &cobra.Command{Use: "x"}
		af.bind(cmd)
		return cmd, &af
	}
	base := pipeline.Options{Auto: true, Seed: 4, KeepTogether: true}

	cmd, af := newCmd()
	require.NoError(t, cmd.Flags().Parse(nil))
	assert.Equal(t, base, af.resolve(cmd, base), "unset flags keep config values")

	cmd, af = newCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--temperature", "100", "--ratio", "0.1", "--seed", "8"}))
	got := af.resolve(cmd, base)
	assert.False(t, got.Auto, "an explicit schedule overrides auto")
	assert.Equal(t, 100.0, got.Temperature)
	assert.Equal(t, uint64(8), got.Seed)
	assert.True(t, got.KeepTogether)
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitIDs(" a, ,b,"))
	assert.Nil(t, splitIDs(""))
}

func TestOptimizedPath(t *testing.T) {
	assert.Equal(t, "data/maize.optimized.toml", optimizedPath("data/maize.toml"))
}

// ===== TUI =====

func TestAnnealModelUpdate(t *testing.T) {
	cancelled := false
	m := newAnnealModel("square", nil, nil, func() { cancelled = true })

	next, _ := m.Update(stepMsg(anneal.Step{Iteration: 1, Total: 10, Energy: 8, Best: 8}))
	next, _ = next.Update(stepMsg(anneal.Step{Iteration: 5, Total: 10, Energy: 6, Best: 4}))
	m = next.(annealModel)
	assert.Equal(t, 8, m.initial)
	assert.Equal(t, []int{8, 4}, m.history)
	assert.Contains(t, m.View(), "5/10")
	assert.Contains(t, m.View(), "50.0%")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(annealModel)
	assert.True(t, cancelled)
	assert.True(t, m.stopping)

	next, cmd := m.Update(doneMsg{res: &pipeline.Result{}})
	m = next.(annealModel)
	require.NotNil(t, m.result)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, 10, len([]rune(stripANSI(progressBar(3, 10, 10)))))
	assert.Equal(t, "█████░░░░░", stripANSI(progressBar(5, 10, 10)))
	assert.Equal(t, "░░░░", stripANSI(progressBar(0, 0, 4)))
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", sparkline(nil))
	assert.Equal(t, "▁▁", sparkline([]int{3, 3}))
	assert.Equal(t, "█▁", sparkline([]int{9, 1}))
}

// stripANSI removes escape sequences from styled output.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
