package layout

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kverran/starmap/pkg/geom"
)

// ErrMismatchedLengths reports convergence or stress inputs whose
// position slices differ in size.
var ErrMismatchedLengths = errors.New("position slices have mismatched lengths")

const (
	// convergedStabilityRatio is the fraction of stable nodes required
	// before a layout counts as converged.
	convergedStabilityRatio = 0.95

	// frameInterval is the fixed per-call time charge for convergence
	// monitoring. Monitoring assumes one call per rendered frame rather
	// than measuring wall clock.
	frameInterval = 16670 * time.Microsecond
)

// Convergence captures how settled a layout is between two successive
// position snapshots. IterationCount and TimeElapsed accumulate across
// monitor calls until [Optimizer.ResetConvergence].
type Convergence struct {
	IsConverged     bool          `json:"is_converged"`
	StabilityRatio  float64       `json:"stability_ratio"`
	AverageMovement float64       `json:"average_movement"`
	MaxMovement     float64       `json:"max_movement"`
	IterationCount  int           `json:"iteration_count"`
	TimeElapsed     time.Duration `json:"time_elapsed"`
}

// MonitorConvergence compares two successive position snapshots and
// updates the optimizer's convergence metrics.
//
// A node is stable when it moved less than the configured stability
// threshold. The layout is converged when more than 95% of nodes are
// stable and the largest movement is under the threshold. Each call
// increments IterationCount and charges one frame interval (16.67ms) to
// TimeElapsed. Empty snapshots count as fully converged.
func (o *Optimizer) MonitorConvergence(positions, previous []geom.Point) (Convergence, error) {
	if len(positions) != len(previous) {
		return Convergence{}, fmt.Errorf("%w: %d current vs %d previous",
			ErrMismatchedLengths, len(positions), len(previous))
	}

	o.conv.IterationCount++
	o.conv.TimeElapsed += frameInterval

	if len(positions) == 0 {
		o.conv.IsConverged = true
		o.conv.StabilityRatio = 1
		o.conv.AverageMovement = 0
		o.conv.MaxMovement = 0
		return o.conv, nil
	}

	movements := make([]float64, len(positions))
	stable := 0
	for i := range positions {
		movements[i] = positions[i].DistanceTo(previous[i])
		if movements[i] < o.cfg.StabilityThreshold {
			stable++
		}
	}

	o.conv.StabilityRatio = float64(stable) / float64(len(positions))
	o.conv.AverageMovement = stat.Mean(movements, nil)
	o.conv.MaxMovement = floats.Max(movements)
	o.conv.IsConverged = o.conv.StabilityRatio > convergedStabilityRatio &&
		o.conv.MaxMovement < o.cfg.StabilityThreshold

	return o.conv, nil
}

// Convergence returns the metrics from the most recent monitor call.
func (o *Optimizer) Convergence() Convergence {
	return o.conv
}

// ResetConvergence clears the accumulated metrics, typically between
// layout runs.
func (o *Optimizer) ResetConvergence() {
	o.conv = Convergence{}
}
