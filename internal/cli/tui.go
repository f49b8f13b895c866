package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/synvisio/pkg/anneal"
	"github.com/matzehuels/synvisio/pkg/pipeline"
	"github.com/matzehuels/synvisio/pkg/session"
)

var (
	barFullStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
	tuiLabelStyle = lipgloss.NewStyle().Foreground(colorGray).Width(14)
	tuiBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

const (
	defaultBarWidth = 40
	historyLen      = 40
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// =============================================================================
// Messages
// =============================================================================

type stepMsg anneal.Step

type doneMsg struct {
	res *pipeline.Result
	hit bool
	err error
}

func waitStep(steps <-chan anneal.Step) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-steps
		if !ok {
			return nil
		}
		return stepMsg(s)
	}
}

func waitDone(done <-chan doneMsg) tea.Cmd {
	return func() tea.Msg { return <-done }
}

// =============================================================================
// annealModel - live optimizer monitor
// =============================================================================

// annealModel is the bubbletea model showing optimizer progress.
type annealModel struct {
	dataset  string
	steps    <-chan anneal.Step
	done     <-chan doneMsg
	cancel   context.CancelFunc
	last     anneal.Step
	initial  int
	seen     bool
	history  []int
	result   *doneMsg
	stopping bool
	width    int
}

func newAnnealModel(dataset string, steps <-chan anneal.Step, done <-chan doneMsg, cancel context.CancelFunc) annealModel {
	return annealModel{
		dataset: dataset,
		steps:   steps,
		done:    done,
		cancel:  cancel,
		width:   defaultBarWidth,
	}
}

func (m annealModel) Init() tea.Cmd {
	return tea.Batch(waitStep(m.steps), waitDone(m.done))
}

func (m annealModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		s := anneal.Step(msg)
		if !m.seen {
			m.initial = s.Energy
			m.seen = true
		}
		m.last = s
		m.history = append(m.history, s.Best)
		if len(m.history) > historyLen {
			m.history = m.history[len(m.history)-historyLen:]
		}
		return m, waitStep(m.steps)
	case doneMsg:
		m.result = &msg
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// Stop the search; the result arrives as a doneMsg.
			m.stopping = true
			m.cancel()
		}
	case tea.WindowSizeMsg:
		m.width = min(max(msg.Width-30, 10), 80)
	}
	return m, nil
}

func (m annealModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Optimizing " + m.dataset))
	b.WriteString("\n\n")

	s := m.last
	b.WriteString(progressBar(s.Iteration, s.Total, m.width))
	fmt.Fprintf(&b, " %s\n\n", StyleDim.Render(fmt.Sprintf("%d/%d", s.Iteration, s.Total)))

	row := func(label, value string) {
		b.WriteString(tuiLabelStyle.Render(label) + " " + StyleValue.Render(value) + "\n")
	}
	row("temperature", fmt.Sprintf("%.2f", s.Temperature))
	row("current", fmt.Sprintf("%d", s.Energy))
	row("best", fmt.Sprintf("%d", s.Best))
	if m.seen && m.initial > 0 {
		row("improvement", fmt.Sprintf("%.1f%%", 100*float64(m.initial-s.Best)/float64(m.initial)))
	}
	row("history", sparkline(m.history))

	b.WriteString("\n")
	switch {
	case m.result != nil:
		b.WriteString(StyleSuccess.Render("done"))
	case m.stopping:
		b.WriteString(StyleWarning.Render("stopping..."))
	default:
		b.WriteString(StyleDim.Render("q stop and keep best"))
	}
	return tuiBoxStyle.Render(b.String()) + "\n"
}

// progressBar renders done/total as a bar of the given width.
func progressBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(width, done*width/total)
	}
	return barFullStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// sparkline renders values scaled between their minimum and maximum.
func sparkline(values []int) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	out := make([]rune, len(values))
	for i, v := range values {
		idx := 0
		if hi > lo {
			idx = (v - lo) * (len(sparkBlocks) - 1) / (hi - lo)
		}
		out[i] = sparkBlocks[idx]
	}
	return string(out)
}

// runOptimizeTUI runs the optimizer behind the live monitor. Quitting the
// monitor stops the search and keeps the best layout found so far.
func runOptimizeTUI(ctx context.Context, runner *pipeline.Runner, sess *session.Session, opts pipeline.Options) (*pipeline.Result, bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	steps := make(chan anneal.Step, 1)
	done := make(chan doneMsg, 1)
	opts.Progress = func(s anneal.Step) {
		select {
		case steps <- s:
		default:
		}
	}
	go func() {
		res, hit, err := runner.Optimize(ctx, sess, opts)
		done <- doneMsg{res: res, hit: hit, err: err}
	}()

	model := newAnnealModel(sess.Dataset.Name, steps, done, cancel)
	final, err := tea.NewProgram(model, tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		cancel()
		d := <-done
		return d.res, d.hit, err
	}
	m := final.(annealModel)
	if m.result == nil {
		cancel()
		d := <-done
		return d.res, d.hit, d.err
	}
	return m.result.res, m.result.hit, m.result.err
}
