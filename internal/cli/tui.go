package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kverran/starmap/pkg/graph"
	"github.com/kverran/starmap/pkg/pipeline"
	"github.com/kverran/starmap/pkg/similarity"
)

// Watch view styles
var (
	watchBarStyle   = lipgloss.NewStyle().Foreground(colorCyan)
	watchLabelStyle = lipgloss.NewStyle().Foreground(colorGray).Width(16)
	watchDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Watch Mode - Live layout convergence
// =============================================================================

// watchLayout runs the layout stage under a live convergence view. The
// optimizer streams per-sweep updates into the bubbletea program; the
// finished layout (or error) arrives with the done message. A cache hit
// skips the optimizer, so the view closes immediately.
func (c *CLI) watchLayout(ctx context.Context, runner *pipeline.Runner, m *similarity.Matrix, opts pipeline.Options) (graph.Layout, bool, error) {
	p := tea.NewProgram(newWatchModel(opts.Iterations, len(m.IDs())))

	opts.OnIteration = func(u pipeline.IterationUpdate) {
		p.Send(sweepMsg(u))
	}

	go func() {
		lay, hit, err := runner.ComputeLayoutWithCacheInfo(ctx, m, opts)
		p.Send(layoutDoneMsg{layout: lay, cacheHit: hit, err: err})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return graph.Layout{}, false, err
	}

	fm, ok := finalModel.(watchModel)
	if !ok {
		return graph.Layout{}, false, fmt.Errorf("unexpected watch model type %T", finalModel)
	}
	if fm.err != nil {
		return graph.Layout{}, false, fm.err
	}
	if fm.quit {
		// User abort; the main entrypoint treats this as an interrupt.
		return graph.Layout{}, false, context.Canceled
	}
	return fm.layout, fm.cacheHit, nil
}

// sweepMsg carries one optimizer sweep into the watch view.
type sweepMsg pipeline.IterationUpdate

// layoutDoneMsg carries the finished layout stage result.
type layoutDoneMsg struct {
	layout   graph.Layout
	cacheHit bool
	err      error
}

// watchModel is the bubbletea model for live layout convergence.
type watchModel struct {
	total    int
	nodes    int
	barWidth int
	started  time.Time

	update   pipeline.IterationUpdate
	done     bool
	quit     bool
	cacheHit bool
	layout   graph.Layout
	err      error
}

// newWatchModel creates a watch model for a run of total sweeps.
func newWatchModel(total, nodes int) watchModel {
	return watchModel{
		total:    total,
		nodes:    nodes,
		barWidth: 34,
		started:  time.Now(),
	}
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quit = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.barWidth = msg.Width - 24
		if m.barWidth < 10 {
			m.barWidth = 10
		}
		if m.barWidth > 60 {
			m.barWidth = 60
		}
	case sweepMsg:
		m.update = pipeline.IterationUpdate(msg)
	case layoutDoneMsg:
		m.done = true
		m.layout = msg.layout
		m.cacheHit = msg.cacheHit
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Watching layout"))
	b.WriteString("\n")
	b.WriteString(watchDimStyle.Render("q quit"))
	b.WriteString("\n\n")

	u := m.update
	frac := 0.0
	if m.total > 0 {
		frac = float64(u.Iteration) / float64(m.total)
	}
	b.WriteString(fmt.Sprintf("  %s %s\n\n",
		renderBar(m.barWidth, frac),
		watchDimStyle.Render(fmt.Sprintf("%d/%d", u.Iteration, m.total))))

	metric := func(label, value string) {
		b.WriteString("  ")
		b.WriteString(watchLabelStyle.Render(label))
		b.WriteString(StyleNumber.Render(value))
		b.WriteString("\n")
	}
	metric("Nodes", strconv.Itoa(m.nodes))
	metric("Avg movement", fmt.Sprintf("%.3f", u.AverageMovement))
	metric("Max movement", fmt.Sprintf("%.3f", u.MaxMovement))
	metric("Stable", fmt.Sprintf("%.0f%%", u.StabilityRatio*100))

	status := "settling"
	if u.Converged {
		status = "converged"
	}
	metric("Status", status)

	b.WriteString("\n")
	b.WriteString(watchDimStyle.Render(fmt.Sprintf("  %s elapsed", time.Since(m.started).Round(time.Second))))
	b.WriteString("\n")

	return b.String()
}

// renderBar draws a fixed-width progress bar filled to frac.
func renderBar(width int, frac float64) string {
	if width <= 0 {
		width = 30
	}
	filled := int(frac * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return watchBarStyle.Render(strings.Repeat("█", filled)) +
		watchDimStyle.Render(strings.Repeat("░", width-filled))
}
