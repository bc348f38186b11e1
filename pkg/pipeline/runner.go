package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/kverran/starmap/pkg/cache"
	"github.com/kverran/starmap/pkg/graph"
	"github.com/kverran/starmap/pkg/observability"
	"github.com/kverran/starmap/pkg/similarity"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and TUI use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → index → export pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	hooks := observability.Pipeline()

	r.Logger.Debug("starting pipeline run",
		"run_id", result.RunID,
		"source", sourceLabel(opts))

	// Stage 1: Load
	loadStart := time.Now()
	hooks.OnLoadStart(ctx, sourceLabel(opts))
	m, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	result.Stats.LoadTime = time.Since(loadStart)
	if err != nil {
		hooks.OnLoadComplete(ctx, sourceLabel(opts), 0, 0, result.Stats.LoadTime, err)
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Matrix = m
	result.Stats.NodeCount = len(m.IDs())
	result.Stats.PairCount = m.Len()
	result.CacheInfo.LoadHit = loadHit
	hooks.OnLoadComplete(ctx, sourceLabel(opts),
		result.Stats.NodeCount, result.Stats.PairCount, result.Stats.LoadTime, nil)

	// Compute matrix hash for cache keys and result metadata
	if matrixData, err := marshalMatrix(m); err == nil {
		result.MatrixHash = cache.Hash(matrixData)
	}

	r.Logger.Info("loaded similarity matrix",
		"nodes", result.Stats.NodeCount,
		"pairs", result.Stats.PairCount,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx, opts.Strategy, result.Stats.NodeCount)
	lay, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, m, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	hooks.OnLayoutComplete(ctx, opts.Strategy, result.Stats.LayoutTime, err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = lay
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"strategy", opts.Strategy,
		"stress", lay.Stress,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Index
	indexStart := time.Now()
	ix, err := BuildIndex(lay, opts)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	result.IndexStats = ix.Stats()
	result.Stats.IndexTime = time.Since(indexStart)
	observability.Index().OnBuild(ctx,
		result.Stats.NodeCount, result.IndexStats.MaxDepth, result.Stats.IndexTime)

	r.Logger.Info("built spatial index",
		"dimensions", result.IndexStats.Dimensions,
		"tree_nodes", result.IndexStats.NodeCount,
		"max_depth", result.IndexStats.MaxDepth,
		"duration", result.Stats.IndexTime)

	// Stage 4: Export
	exportStart := time.Now()
	hooks.OnExportStart(ctx, opts.Formats)
	artifacts, exportHit, err := r.ExportWithCacheInfo(ctx, lay, m, opts)
	result.Stats.ExportTime = time.Since(exportStart)
	hooks.OnExportComplete(ctx, opts.Formats, result.Stats.ExportTime, err)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.ExportHit = exportHit

	r.Logger.Info("exported artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// LoadWithCacheInfo acquires the similarity matrix with caching and returns cache hit info.
// File sources are re-read every run so edits take effect immediately;
// only generated matrices go through the cache.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*similarity.Matrix, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	if !opts.IsGenerated() {
		m, err := Load(opts)
		return m, false, err
	}

	cacheKey := r.Keyer.MatrixKey(syntheticSource, opts.MatrixKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if m, err := unmarshalMatrix(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "matrix")
				return m, true, nil // Cache hit
			}
			// If deserialization fails, fall through to regenerate
		}
		observability.Cache().OnCacheMiss(ctx, "matrix")
	}

	m, err := Load(opts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := marshalMatrix(m); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLMatrix)
		observability.Cache().OnCacheSet(ctx, "matrix", len(data))
	}

	return m, false, nil // Cache miss
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*similarity.Matrix, error) {
	m, _, err := r.LoadWithCacheInfo(ctx, opts)
	return m, err
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, m *similarity.Matrix, opts Options) (graph.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, err
	}
	if m == nil {
		return graph.Layout{}, false, fmt.Errorf("similarity matrix is nil")
	}
	r.applyLogger(&opts)

	// Compute cache key
	matrixData, _ := marshalMatrix(m)
	cacheKey := r.Keyer.LayoutKey(cache.Hash(matrixData), opts.LayoutKeyOpts())

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		cached, err := graph.UnmarshalLayout(data)
		if err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return cached, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	lay, err := ComputeLayout(m, opts)
	if err != nil {
		return graph.Layout{}, false, err
	}

	// Cache the result
	if data, err := graph.MarshalLayout(lay); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	return lay, false, nil // Cache miss
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, m *similarity.Matrix, opts Options) (graph.Layout, error) {
	lay, _, err := r.ComputeLayoutWithCacheInfo(ctx, m, opts)
	return lay, err
}

// ExportWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, lay graph.Layout, m *similarity.Matrix, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from layout data
	layoutData, err := graph.MarshalLayout(lay)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	rendered, err := ExportArtifacts(lay, m, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil // Cache miss
}

// Export is a convenience wrapper that calls ExportWithCacheInfo and discards the cache hit info.
func (r *Runner) Export(ctx context.Context, lay graph.Layout, m *similarity.Matrix, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.ExportWithCacheInfo(ctx, lay, m, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// =============================================================================
// Matrix Cache Serialization
// =============================================================================

// matrixEnvelope is the cache serialization of a matrix. The bare wire
// format drops id registration order and pair-less ids, both of which
// the seeded optimizer depends on, so cached matrices carry the id list
// alongside the scores.
type matrixEnvelope struct {
	IDs    []string           `json:"ids"`
	Scores *similarity.Matrix `json:"scores"`
}

func marshalMatrix(m *similarity.Matrix) ([]byte, error) {
	return json.Marshal(matrixEnvelope{IDs: m.IDs(), Scores: m})
}

func unmarshalMatrix(data []byte) (*similarity.Matrix, error) {
	env := matrixEnvelope{Scores: similarity.NewMatrix()}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if missing := env.Scores.SetIDs(env.IDs); len(missing) > 0 {
		return nil, fmt.Errorf("cached matrix drops ids: %v", missing)
	}
	return env.Scores, nil
}
