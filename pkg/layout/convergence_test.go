package layout

import (
	"errors"
	"testing"

	"github.com/kverran/starmap/pkg/geom"
)

func TestMonitorConvergenceIdenticalPositions(t *testing.T) {
	o, _ := NewOptimizer(Config{})
	positions := []geom.Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}

	conv, err := o.MonitorConvergence(positions, positions)
	if err != nil {
		t.Fatalf("MonitorConvergence() error = %v", err)
	}
	if !conv.IsConverged {
		t.Error("IsConverged = false for identical snapshots")
	}
	if conv.StabilityRatio != 1 {
		t.Errorf("StabilityRatio = %v, want 1", conv.StabilityRatio)
	}
	if conv.AverageMovement != 0 || conv.MaxMovement != 0 {
		t.Errorf("movements = (%v, %v), want zero", conv.AverageMovement, conv.MaxMovement)
	}
}

func TestMonitorConvergenceMismatchedLengths(t *testing.T) {
	o, _ := NewOptimizer(Config{})
	_, err := o.MonitorConvergence([]geom.Point{{}}, []geom.Point{{}, {}})
	if !errors.Is(err, ErrMismatchedLengths) {
		t.Errorf("error = %v, want ErrMismatchedLengths", err)
	}

	// A failed call must not advance the counters.
	if got := o.Convergence().IterationCount; got != 0 {
		t.Errorf("IterationCount after failed call = %d, want 0", got)
	}
}

func TestMonitorConvergenceMovement(t *testing.T) {
	o, _ := NewOptimizer(Config{})
	previous := []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}
	positions := []geom.Point{{X: 5, Y: 0}, {X: 10, Y: 10}}

	conv, err := o.MonitorConvergence(positions, previous)
	if err != nil {
		t.Fatalf("MonitorConvergence() error = %v", err)
	}
	if conv.IsConverged {
		t.Error("IsConverged = true despite a node moving 5 units")
	}
	if conv.StabilityRatio != 0.5 {
		t.Errorf("StabilityRatio = %v, want 0.5", conv.StabilityRatio)
	}
	if conv.MaxMovement != 5 {
		t.Errorf("MaxMovement = %v, want 5", conv.MaxMovement)
	}
	if conv.AverageMovement != 2.5 {
		t.Errorf("AverageMovement = %v, want 2.5", conv.AverageMovement)
	}
}

func TestMonitorConvergenceAccumulatesAcrossCalls(t *testing.T) {
	o, _ := NewOptimizer(Config{})
	positions := []geom.Point{{X: 1, Y: 1}}

	for range 3 {
		if _, err := o.MonitorConvergence(positions, positions); err != nil {
			t.Fatalf("MonitorConvergence() error = %v", err)
		}
	}

	conv := o.Convergence()
	if conv.IterationCount != 3 {
		t.Errorf("IterationCount = %d, want 3", conv.IterationCount)
	}
	if conv.TimeElapsed != 3*frameInterval {
		t.Errorf("TimeElapsed = %v, want %v", conv.TimeElapsed, 3*frameInterval)
	}

	o.ResetConvergence()
	if o.Convergence() != (Convergence{}) {
		t.Errorf("Convergence after reset = %+v, want zero", o.Convergence())
	}
}

func TestMonitorConvergenceEmptySnapshots(t *testing.T) {
	o, _ := NewOptimizer(Config{})
	conv, err := o.MonitorConvergence(nil, nil)
	if err != nil {
		t.Fatalf("MonitorConvergence() error = %v", err)
	}
	if !conv.IsConverged || conv.StabilityRatio != 1 {
		t.Errorf("empty snapshot metrics = %+v, want converged with ratio 1", conv)
	}
	if conv.IterationCount != 1 {
		t.Errorf("IterationCount = %d, want 1", conv.IterationCount)
	}
}

func TestMonitorConvergenceRatioBoundary(t *testing.T) {
	// 19 of 20 stable is a ratio of exactly 0.95, which does not clear
	// the strict 0.95 bar.
	o, _ := NewOptimizer(Config{})
	previous := make([]geom.Point, 20)
	positions := make([]geom.Point, 20)
	positions[0] = geom.Point{X: 1}

	conv, err := o.MonitorConvergence(positions, previous)
	if err != nil {
		t.Fatalf("MonitorConvergence() error = %v", err)
	}
	if conv.StabilityRatio != 0.95 {
		t.Fatalf("StabilityRatio = %v, want 0.95", conv.StabilityRatio)
	}
	if conv.IsConverged {
		t.Error("IsConverged = true at ratio exactly 0.95")
	}
}
