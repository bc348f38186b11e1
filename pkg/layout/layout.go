// Package layout turns a sparse pairwise similarity matrix into 2D or 3D
// coordinates by stress majorization.
//
// An [Optimizer] repositions points over a fixed number of sweeps so that
// pairwise distances approach the targets produced by a
// [similarity.Mapper]. Convergence is observed separately through
// [Optimizer.MonitorConvergence], stress quality through
// [Optimizer.CalculateStress], and mapper candidates can be compared with
// [Optimizer.BenchmarkMappers].
//
// Optimizer instances are independent and own no shared state, but a
// single instance must not be used from multiple goroutines at once.
package layout

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/kverran/starmap/pkg/errors"
	"github.com/kverran/starmap/pkg/geom"
	"github.com/kverran/starmap/pkg/similarity"
)

// =============================================================================
// Configuration
// =============================================================================

// Default optimizer parameters, applied by [Config.ValidateAndSetDefaults]
// for fields left at zero.
const (
	DefaultMaxIterations      = 50
	DefaultLearningRate       = 0.1
	DefaultStabilityThreshold = 0.01
	DefaultSeed               = uint64(42)

	// Default bounding volume extents when no bounds are supplied.
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
	DefaultDepth  = 400.0
)

// IterationHook observes positions after each majorization sweep. The
// slice is a copy; the hook may retain it.
type IterationHook func(iteration int, positions []geom.Point)

// Config parameterizes an [Optimizer].
type Config struct {
	// MaxIterations is the fixed number of majorization sweeps per
	// OptimizePositions call.
	MaxIterations int `json:"max_iterations,omitempty" toml:"max_iterations"`

	// LearningRate scales each pairwise correction.
	LearningRate float64 `json:"learning_rate,omitempty" toml:"learning_rate"`

	// StabilityThreshold is the per-node movement below which a node
	// counts as stable during convergence monitoring.
	StabilityThreshold float64 `json:"stability_threshold,omitempty" toml:"stability_threshold"`

	// Dimensions is 2 or 3.
	Dimensions int `json:"dimensions,omitempty" toml:"dimensions"`

	// Bounds constrains all positions. Nil selects a default volume of
	// 800x600, with depth 400 in 3D.
	Bounds *geom.Bounds `json:"bounds,omitempty" toml:"-"`

	// Seed drives the deterministic position initialization.
	Seed uint64 `json:"seed,omitempty" toml:"seed"`

	// Mapper converts similarity scores to target distances.
	Mapper similarity.Mapper `json:"mapper" toml:"mapper"`

	// OnIteration, when set, is invoked after every sweep.
	OnIteration IterationHook `json:"-" toml:"-"`

	validated bool
}

// ValidateAndSetDefaults fills zero values with defaults and validates
// the result. Safe to call multiple times.
func (c *Config) ValidateAndSetDefaults() error {
	if c.validated {
		return nil
	}

	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.LearningRate == 0 {
		c.LearningRate = DefaultLearningRate
	}
	if c.StabilityThreshold == 0 {
		c.StabilityThreshold = DefaultStabilityThreshold
	}
	if c.Dimensions == 0 {
		c.Dimensions = 2
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}

	switch {
	case c.MaxIterations < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "max iterations must be positive, got %d", c.MaxIterations)
	case c.LearningRate < 0 || c.LearningRate > 1:
		return errors.New(errors.ErrCodeInvalidConfig, "learning rate must be in (0,1], got %g", c.LearningRate)
	case c.StabilityThreshold < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "stability threshold must be positive, got %g", c.StabilityThreshold)
	case c.Dimensions != 2 && c.Dimensions != 3:
		return errors.New(errors.ErrCodeInvalidConfig, "dimensions must be 2 or 3, got %d", c.Dimensions)
	}

	if err := c.Mapper.ValidateAndSetDefaults(); err != nil {
		return err
	}

	if c.Bounds == nil {
		b := defaultBounds(c.Dimensions)
		c.Bounds = &b
	} else {
		b := geom.NewBounds(c.Bounds.Min, c.Bounds.Max)
		if c.Dimensions == 2 {
			// 2D positions live on the z=0 plane; flatten the volume so
			// clamping cannot push them off it.
			b.Min.Z, b.Max.Z = 0, 0
		}
		c.Bounds = &b
	}

	c.validated = true
	return nil
}

func defaultBounds(dimensions int) geom.Bounds {
	b := geom.Bounds{Max: geom.Point{X: DefaultWidth, Y: DefaultHeight}}
	if dimensions == 3 {
		b.Max.Z = DefaultDepth
	}
	return b
}

// =============================================================================
// Optimizer
// =============================================================================

// Optimizer runs stress-majorization layout over a similarity matrix.
// Between calls it retains only the last convergence metrics.
type Optimizer struct {
	cfg  Config
	conv Convergence
}

// NewOptimizer creates an optimizer from cfg, validating it first.
func NewOptimizer(cfg Config) (*Optimizer, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Optimizer{cfg: cfg}, nil
}

// Config returns the validated configuration.
func (o *Optimizer) Config() Config {
	return o.cfg
}

// OptimizePositions lays out every node of m and returns the final
// positions, parallel to m.IDs(). An empty matrix yields an empty slice.
//
// Positions initialize uniformly at random inside the bounds from the
// configured seed, then a fixed number of sweeps applies pairwise spring
// corrections. Forces accumulate over all pairs and apply simultaneously
// at the end of each sweep, after which positions clamp back into the
// bounds. The call never exits early; interleave
// [Optimizer.MonitorConvergence] to observe stabilization.
func (o *Optimizer) OptimizePositions(m *similarity.Matrix) ([]geom.Point, error) {
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidMatrix, "similarity matrix is nil")
	}

	ids := m.IDs()
	if len(ids) == 0 {
		return []geom.Point{}, nil
	}

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	rng := rand.New(rand.NewPCG(o.cfg.Seed, o.cfg.Seed^0xdeadbeef))
	positions := make([]geom.Point, len(ids))
	for i := range positions {
		positions[i] = randomPoint(rng, *o.cfg.Bounds, o.cfg.Dimensions)
	}

	type pair struct {
		i, j   int
		target float64
	}
	entries := m.Entries()
	pairs := make([]pair, 0, len(entries))
	for _, e := range entries {
		i, iOK := index[e.A]
		j, jOK := index[e.B]
		if !iOK || !jOK {
			continue
		}
		// Spring targets may come back negative; treat that as zero.
		pairs = append(pairs, pair{i: i, j: j, target: math.Max(o.cfg.Mapper.Distance(e.Score), 0)})
	}

	forces := make([]geom.Vector, len(ids))
	for iter := range o.cfg.MaxIterations {
		for i := range forces {
			forces[i] = geom.Vector{}
		}

		for _, p := range pairs {
			delta := positions[p.j].Sub(positions[p.i])
			current := delta.Length()
			// The floor keeps coincident points from dividing by zero
			// and caps the correction for sub-unit separations.
			scale := (current - p.target) / math.Max(current, 1) * o.cfg.LearningRate
			f := delta.Scale(scale)
			forces[p.i] = forces[p.i].Add(f)
			forces[p.j] = forces[p.j].Add(f.Scale(-1))
		}

		for i := range positions {
			positions[i] = o.cfg.Bounds.Clamp(positions[i].Add(forces[i]))
		}

		if o.cfg.OnIteration != nil {
			o.cfg.OnIteration(iter, slices.Clone(positions))
		}
	}

	return positions, nil
}

// SeedPositions returns the deterministic random starting positions for
// m under this configuration, without running any sweeps.
func (o *Optimizer) SeedPositions(m *similarity.Matrix) []geom.Point {
	ids := m.IDs()
	rng := rand.New(rand.NewPCG(o.cfg.Seed, o.cfg.Seed^0xdeadbeef))
	positions := make([]geom.Point, len(ids))
	for i := range positions {
		positions[i] = randomPoint(rng, *o.cfg.Bounds, o.cfg.Dimensions)
	}
	return positions
}

func randomPoint(rng *rand.Rand, b geom.Bounds, dimensions int) geom.Point {
	p := geom.Point{
		X: b.Min.X + rng.Float64()*(b.Max.X-b.Min.X),
		Y: b.Min.Y + rng.Float64()*(b.Max.Y-b.Min.Y),
	}
	if dimensions == 3 {
		p.Z = b.Min.Z + rng.Float64()*(b.Max.Z-b.Min.Z)
	}
	return p
}
