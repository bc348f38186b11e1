package cli

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kverran/starmap/pkg/graph"
	"github.com/kverran/starmap/pkg/pipeline"
)

func TestWatchModelSweep(t *testing.T) {
	m := newWatchModel(40, 12)

	next, cmd := m.Update(sweepMsg(pipeline.IterationUpdate{
		Iteration:       10,
		Total:           40,
		AverageMovement: 2.5,
		MaxMovement:     8.1,
		StabilityRatio:  0.25,
	}))
	if cmd != nil {
		t.Error("sweep update should not emit a command")
	}

	wm, ok := next.(watchModel)
	if !ok {
		t.Fatalf("Update returned %T, want watchModel", next)
	}
	if wm.update.Iteration != 10 {
		t.Errorf("Iteration = %d, want 10", wm.update.Iteration)
	}

	view := wm.View()
	if !strings.Contains(view, "10/40") {
		t.Errorf("view missing sweep counter:\n%s", view)
	}
	if !strings.Contains(view, "12") {
		t.Errorf("view missing node count:\n%s", view)
	}
}

func TestWatchModelQuitKeys(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
		{"esc", tea.KeyMsg{Type: tea.KeyEscape}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newWatchModel(10, 5)

			next, cmd := m.Update(tt.msg)
			wm := next.(watchModel)

			if !wm.quit {
				t.Error("quit key should mark the model as quit")
			}
			if cmd == nil {
				t.Fatal("quit key should return a command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("quit key should quit the program")
			}
		})
	}
}

func TestWatchModelDone(t *testing.T) {
	m := newWatchModel(10, 5)
	lay := graph.Layout{Dimensions: graph.Dims2D, Stress: 0.5}

	next, cmd := m.Update(layoutDoneMsg{layout: lay, cacheHit: true})
	wm := next.(watchModel)

	if !wm.done {
		t.Error("done message should finish the model")
	}
	if !wm.cacheHit {
		t.Error("cache hit flag should carry through")
	}
	if wm.layout.Stress != 0.5 {
		t.Errorf("layout not carried through: %+v", wm.layout)
	}
	if cmd == nil {
		t.Fatal("done message should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("done message should quit the program")
	}
}

func TestWatchModelDoneError(t *testing.T) {
	m := newWatchModel(10, 5)
	boom := errors.New("optimizer exploded")

	next, _ := m.Update(layoutDoneMsg{err: boom})
	wm := next.(watchModel)

	if !errors.Is(wm.err, boom) {
		t.Errorf("err = %v, want the pipeline error", wm.err)
	}
}

func TestWatchModelResize(t *testing.T) {
	m := newWatchModel(10, 5)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 200})
	if wm := next.(watchModel); wm.barWidth != 60 {
		t.Errorf("barWidth = %d, want cap of 60", wm.barWidth)
	}

	next, _ = m.Update(tea.WindowSizeMsg{Width: 20})
	if wm := next.(watchModel); wm.barWidth != 10 {
		t.Errorf("barWidth = %d, want floor of 10", wm.barWidth)
	}
}

func TestRenderBar(t *testing.T) {
	full := renderBar(10, 1.0)
	if !strings.Contains(full, strings.Repeat("█", 10)) {
		t.Errorf("full bar missing fill: %q", full)
	}

	empty := renderBar(10, 0)
	if strings.Contains(empty, "█") {
		t.Errorf("empty bar should have no fill: %q", empty)
	}

	over := renderBar(10, 2.0)
	if strings.Contains(over, strings.Repeat("█", 11)) {
		t.Errorf("overfull bar should clamp at the bar width: %q", over)
	}
}
