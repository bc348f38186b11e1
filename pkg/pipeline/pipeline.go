// Package pipeline provides the core layout pipeline for Starmap.
//
// This package implements the complete load → layout → index → export
// pipeline used by the CLI, the TUI, and any embedding program. By
// centralizing this logic, we ensure consistent defaults and caching
// behavior across all entry points.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Read a similarity matrix from a file, or generate a synthetic one
//  2. Layout: Optimize positions so distances match mapped similarities
//  3. Index: Build a spatial index over the positioned nodes
//  4. Export: Generate output artifacts (DOT, SVG, PNG, CSV, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  "scores.json",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Load only
//	m, err := runner.Load(ctx, opts)
//
//	// Layout with an existing matrix
//	lay, err := runner.ComputeLayout(ctx, m, opts)
//
//	// Export with an existing layout
//	artifacts, err := runner.Export(ctx, lay, m, opts)
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kverran/starmap/pkg/cache"
	"github.com/kverran/starmap/pkg/export"
	"github.com/kverran/starmap/pkg/graph"
	"github.com/kverran/starmap/pkg/layout"
	"github.com/kverran/starmap/pkg/similarity"
	"github.com/kverran/starmap/pkg/source"
	"github.com/kverran/starmap/pkg/spatial"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and TUI
// =============================================================================

// Pipeline defaults mirror the layout package so that a zero options
// value and an explicitly defaulted one produce identical cache keys.
const (
	DefaultIterations   = layout.DefaultMaxIterations
	DefaultLearningRate = layout.DefaultLearningRate
	DefaultWidth        = layout.DefaultWidth
	DefaultHeight       = layout.DefaultHeight
	DefaultDepth        = layout.DefaultDepth

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = layout.DefaultSeed
)

// DefaultStrategy is the default similarity-to-distance mapping strategy.
const DefaultStrategy = similarity.StrategyExponential

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatCSV:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for config files and cache keys.
type Options struct {
	// Load options
	Source   string `json:"source,omitempty"`   // matrix file path; empty selects the generator
	Nodes    int    `json:"nodes,omitempty"`    // generated node count
	Clusters int    `json:"clusters,omitempty"` // generated cluster count
	Refresh  bool   `json:"refresh,omitempty"`

	// Layout options
	Strategy string `json:"strategy,omitempty"`

	// Mapper optionally tunes the distance mapping beyond the strategy
	// name, for example a custom exponent or spring constant. When nil,
	// the strategy's default parameters apply.
	Mapper *similarity.Mapper `json:"mapper,omitempty"`

	Dimensions   int     `json:"dimensions,omitempty"`
	Iterations   int     `json:"iterations,omitempty"`
	LearningRate float64 `json:"learning_rate,omitempty"`
	Width        float64 `json:"width,omitempty"`
	Height       float64 `json:"height,omitempty"`
	Depth        float64 `json:"depth,omitempty"`
	Seed         uint64  `json:"seed,omitempty"`

	// Index options
	Preset string `json:"preset,omitempty"`

	// Export options
	Formats       []string `json:"formats,omitempty"`
	ShowEdges     bool     `json:"show_edges,omitempty"`
	EdgeThreshold float64  `json:"edge_threshold,omitempty"`
	Labels        bool     `json:"labels,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// OnIteration, when set, observes every optimizer sweep of the
	// layout stage. Cache hits skip the optimizer entirely, so a hit
	// produces no updates.
	OnIteration func(IterationUpdate) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// IterationUpdate describes one optimizer sweep for live observers such
// as the CLI watch mode.
type IterationUpdate struct {
	// Iteration is the sweep number, starting at 1.
	Iteration int

	// Total is the configured number of sweeps for the run.
	Total int

	// Convergence snapshot after this sweep.
	Converged       bool
	StabilityRatio  float64
	AverageMovement float64
	MaxMovement     float64
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this run in logs.
	RunID string

	// Matrix is the loaded or generated similarity matrix.
	Matrix *similarity.Matrix

	// MatrixHash is the content hash of the matrix.
	MatrixHash string

	// Layout contains the positioned nodes and run metadata.
	Layout graph.Layout

	// IndexStats describes the spatial index built over the layout.
	IndexStats spatial.Statistics

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	PairCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	IndexTime  time.Duration
	ExportTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the matrix came from cache (generated sources only)
	LayoutHit bool // Whether the layout came from cache
	ExportHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png, csv, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStrategy checks that a mapping strategy is valid.
func ValidateStrategy(strategy string) error {
	_, err := similarity.ParseStrategy(strategy)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	o.SetExportDefaults()
	o.validated = true
	return nil
}

// IsGenerated reports whether the run uses the synthetic generator
// instead of a file source.
func (o *Options) IsGenerated() bool {
	return o.Source == ""
}

// ValidateForLoad checks required fields for matrix acquisition.
func (o *Options) ValidateForLoad() error {
	if o.Source == "" && o.Nodes == 0 {
		return fmt.Errorf("source or node count is required")
	}
	if o.Nodes < 0 {
		return fmt.Errorf("invalid node count: %d", o.Nodes)
	}
	if o.Clusters < 0 {
		return fmt.Errorf("invalid cluster count: %d", o.Clusters)
	}

	// Generator defaults
	if o.IsGenerated() {
		if o.Clusters == 0 {
			o.Clusters = source.DefaultClusters
		}
		if o.Seed == 0 {
			o.Seed = DefaultSeed
		}
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Strategy == "" {
		o.Strategy = string(DefaultStrategy)
	}
	if o.Dimensions == 0 {
		o.Dimensions = graph.Dims2D
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.LearningRate == 0 {
		o.LearningRate = DefaultLearningRate
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Depth == 0 && o.Dimensions == graph.Dims3D {
		o.Depth = DefaultDepth
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	if o.Dimensions != graph.Dims2D && o.Dimensions != graph.Dims3D {
		return fmt.Errorf("invalid dimensions: %d (must be 2 or 3)", o.Dimensions)
	}
	if o.Mapper != nil {
		// A mapper that only tunes parameters inherits the strategy;
		// a mapper with its own strategy wins over the plain name.
		if o.Mapper.Strategy == "" {
			s, _ := similarity.ParseStrategy(o.Strategy)
			o.Mapper.Strategy = s
		}
		if err := o.Mapper.ValidateAndSetDefaults(); err != nil {
			return err
		}
		o.Strategy = string(o.Mapper.Strategy)
	}
	return nil
}

// ValidateForIndex checks the spatial index preset, when one is named.
// An empty preset selects the default index configuration.
func (o *Options) ValidateForIndex() error {
	if o.Preset == "" {
		return nil
	}
	_, err := spatial.ParsePreset(o.Preset)
	return err
}

// SetExportDefaults sets default values for artifact generation.
func (o *Options) SetExportDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.EdgeThreshold == 0 {
		o.EdgeThreshold = export.DefaultEdgeThreshold
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForExport validates and sets defaults for artifact generation.
func (o *Options) ValidateForExport() error {
	o.SetLayoutDefaults()
	o.SetExportDefaults()
	return ValidateFormats(o.Formats)
}

// MatrixKeyOpts returns cache key options for matrix generation.
func (o *Options) MatrixKeyOpts() cache.MatrixKeyOpts {
	return cache.MatrixKeyOpts{
		Nodes:    o.Nodes,
		Clusters: o.Clusters,
		Seed:     o.Seed,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{
		Strategy:     o.Strategy,
		Dimensions:   o.Dimensions,
		Iterations:   o.Iterations,
		LearningRate: o.LearningRate,
		Seed:         o.Seed,
		Width:        o.Width,
		Height:       o.Height,
		Depth:        o.Depth,
	}
	// Tuned mapper parameters change the layout, so they join the key
	// as a canonical fingerprint.
	if o.Mapper != nil {
		if data, err := json.Marshal(o.Mapper); err == nil {
			k.Mapper = string(data)
		}
	}
	return k
}

// ArtifactKeyOpts returns cache key options for artifact generation.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:        format,
		ShowEdges:     o.ShowEdges,
		EdgeThreshold: o.EdgeThreshold,
		Labels:        o.Labels,
	}
}
