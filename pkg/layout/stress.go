package layout

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kverran/starmap/pkg/geom"
	"github.com/kverran/starmap/pkg/similarity"
)

// CalculateStress measures how far a layout sits from its target
// distances: the root mean square of (target - actual) over every pair
// of ids with a matrix entry.
//
// The ids slice is parallel to positions; entries referencing unknown
// ids are skipped, matching the treatment of malformed keys. A matrix
// with no usable pairs has stress 0, as does a layout whose distances
// all match their targets exactly.
func (o *Optimizer) CalculateStress(m *similarity.Matrix, positions []geom.Point, ids []string) (float64, error) {
	if len(positions) != len(ids) {
		return 0, fmt.Errorf("%w: %d positions vs %d ids", ErrMismatchedLengths, len(positions), len(ids))
	}
	if m == nil || m.Len() == 0 || len(ids) == 0 {
		return 0, nil
	}

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	var squares []float64
	for _, e := range m.Entries() {
		i, iOK := index[e.A]
		j, jOK := index[e.B]
		if !iOK || !jOK {
			continue
		}
		target := math.Max(o.cfg.Mapper.Distance(e.Score), 0)
		actual := positions[i].DistanceTo(positions[j])
		d := target - actual
		squares = append(squares, d*d)
	}
	if len(squares) == 0 {
		return 0, nil
	}
	return math.Sqrt(stat.Mean(squares, nil)), nil
}

// =============================================================================
// Mapper Benchmarking
// =============================================================================

// BenchmarkResult is one mapper candidate's layout quality measurement.
type BenchmarkResult struct {
	Strategy similarity.Strategy `json:"strategy"`
	Mapper   similarity.Mapper   `json:"mapper"`
	Stress   float64             `json:"stress"`
	Elapsed  time.Duration       `json:"elapsed"`
	Score    float64             `json:"score"`
}

// BenchmarkMappers lays out m once per candidate mapper and ranks the
// candidates by combined quality and speed, best first. The score is
// 1/(1+stress+seconds), so lower stress and faster runs both raise it.
//
// A nil candidates slice benchmarks every strategy with default
// parameters. The context is checked between candidates; cancellation
// aborts with the context's error.
func (o *Optimizer) BenchmarkMappers(ctx context.Context, m *similarity.Matrix, candidates []similarity.Mapper) ([]BenchmarkResult, error) {
	if candidates == nil {
		for _, s := range similarity.Strategies() {
			candidates = append(candidates, similarity.NewMapper(s))
		}
	}

	results := make([]BenchmarkResult, 0, len(candidates))
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := candidate.ValidateAndSetDefaults(); err != nil {
			return nil, err
		}

		cfg := o.cfg
		cfg.Mapper = candidate
		cfg.OnIteration = nil
		run := &Optimizer{cfg: cfg}

		start := time.Now()
		positions, err := run.OptimizePositions(m)
		if err != nil {
			return nil, err
		}
		elapsed := time.Since(start)

		stress, err := run.CalculateStress(m, positions, m.IDs())
		if err != nil {
			return nil, err
		}

		results = append(results, BenchmarkResult{
			Strategy: candidate.Strategy,
			Mapper:   candidate,
			Stress:   stress,
			Elapsed:  elapsed,
			Score:    1 / (1 + stress + elapsed.Seconds()),
		})
	}

	slices.SortFunc(results, func(a, b BenchmarkResult) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return results, nil
}
