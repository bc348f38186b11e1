package pipeline

import (
	"github.com/kverran/starmap/pkg/errors"
	"github.com/kverran/starmap/pkg/geom"
	"github.com/kverran/starmap/pkg/graph"
	"github.com/kverran/starmap/pkg/layout"
	"github.com/kverran/starmap/pkg/similarity"
)

// =============================================================================
// Layout Stage
// =============================================================================

// ComputeLayout optimizes positions for every node of m and returns the
// serializable layout document, including stress and convergence
// metrics for the run.
func ComputeLayout(m *similarity.Matrix, opts Options) (graph.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}
	if m == nil {
		return graph.Layout{}, errors.New(errors.ErrCodeInvalidMatrix, "similarity matrix is nil")
	}

	strategy, err := similarity.ParseStrategy(opts.Strategy)
	if err != nil {
		return graph.Layout{}, err
	}
	mapper := similarity.NewMapper(strategy)
	if opts.Mapper != nil {
		mapper = *opts.Mapper
	}

	bounds := geom.Bounds{Max: geom.Point{X: opts.Width, Y: opts.Height, Z: opts.Depth}}
	cfg := layout.Config{
		MaxIterations: opts.Iterations,
		LearningRate:  opts.LearningRate,
		Dimensions:    opts.Dimensions,
		Bounds:        &bounds,
		Seed:          opts.Seed,
		Mapper:        mapper,
	}

	// Track settling between sweeps so the layout document carries the
	// final convergence metrics.
	var opt *layout.Optimizer
	var prev []geom.Point
	cfg.OnIteration = func(iter int, positions []geom.Point) {
		var conv layout.Convergence
		if opt != nil && prev != nil {
			conv, _ = opt.MonitorConvergence(positions, prev)
		}
		prev = positions
		if opts.OnIteration != nil {
			opts.OnIteration(IterationUpdate{
				Iteration:       iter + 1,
				Total:           opts.Iterations,
				Converged:       conv.IsConverged,
				StabilityRatio:  conv.StabilityRatio,
				AverageMovement: conv.AverageMovement,
				MaxMovement:     conv.MaxMovement,
			})
		}
	}

	opt, err = layout.NewOptimizer(cfg)
	if err != nil {
		return graph.Layout{}, err
	}
	prev = opt.SeedPositions(m)

	positions, err := opt.OptimizePositions(m)
	if err != nil {
		return graph.Layout{}, err
	}

	ids := m.IDs()
	nodes, err := graph.FromPoints(ids, positions, opts.Dimensions)
	if err != nil {
		return graph.Layout{}, err
	}

	stress, err := opt.CalculateStress(m, positions, ids)
	if err != nil {
		return graph.Layout{}, err
	}

	lay := graph.Layout{
		Nodes:      nodes,
		Dimensions: opts.Dimensions,
		Strategy:   strategy,
		Seed:       opts.Seed,
		Stress:     stress,
	}
	if conv := opt.Convergence(); conv.IterationCount > 0 {
		lay.Convergence = &conv
	}
	return lay, nil
}
