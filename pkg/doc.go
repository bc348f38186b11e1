// Package pkg provides the core libraries for Starmap similarity mapping.
//
// # Overview
//
// Starmap turns pairwise similarity scores into navigable spatial maps:
// nodes that score alike end up close together, and the resulting layout
// can be indexed for spatial queries or exported as an image. The pkg
// directory is organized into four main areas:
//
//  1. [similarity] - Domain input (score matrices, distance mappers)
//  2. [layout] - Force-directed optimization and convergence tracking
//  3. [spatial] - Query index over positioned nodes
//  4. [pipeline] - Orchestration (load → layout → index → export)
//
// # Architecture
//
// The typical data flow through Starmap:
//
//	Similarity scores (JSON/CSV or generated)
//	         ↓
//	    [similarity] package (matrix + score→distance mapper)
//	         ↓
//	    [layout] package (force optimizer, convergence, stress)
//	         ↓
//	    [graph] package (positioned nodes, layout serialization)
//	         ↓
//	    [spatial] queries / [export] DOT/SVG/PNG/CSV/JSON output
//
// # Quick Start
//
// Lay out a matrix and query the result:
//
//	import (
//	    "github.com/kverran/starmap/pkg/geom"
//	    "github.com/kverran/starmap/pkg/pipeline"
//	)
//
//	// 1. Load scores and compute a layout
//	m, _ := pipeline.Load(pipeline.Options{Source: "scores.json"})
//	lay, _ := pipeline.ComputeLayout(m, pipeline.Options{Iterations: 100})
//
//	// 2. Index it for spatial queries
//	ix, _ := pipeline.BuildIndex(lay, pipeline.Options{Preset: "balanced"})
//
//	// 3. Find everything near a point
//	nearby := ix.QueryPoint(geom.Point{X: 400, Y: 300}, 50)
//
// # Main Packages
//
// ## Domain
//
// [similarity] - Score matrices with symmetric pair storage, plus the
// mapper that converts similarity scores into target distances
// (exponential, linear, inverse, spring).
//
// [layout] - Gradient-descent layout optimizer with per-sweep convergence
// tracking, deterministic seeding, and stress scoring. BenchmarkMappers
// compares mapping strategies on a single matrix.
//
// [graph] - Serialization types for positioned nodes and layouts
// (2D and 3D JSON round-trip).
//
// [geom] - Points, vectors, rays, and bounds shared by layout and
// spatial queries.
//
// [spatial] - Octree-backed index over a layout: point, region, ray,
// nearest, and within-distance queries with tunable presets.
//
// ## Input and Output
//
// [source] - Matrix loading from JSON/CSV files and deterministic
// synthetic generation for benchmarks and demos.
//
// [io] - Matrix readers and writers (JSON envelope, CSV triples).
//
// [export] - Layout renderers: Graphviz DOT, SVG/PNG via go-graphviz,
// CSV, and JSON.
//
// ## Infrastructure
//
// [pipeline] - Complete pipeline (load → layout → index → export) used by
// the CLI. The Runner adds caching and observability hooks around each
// stage.
//
// [cache] - Content-addressed result cache with memory, file, Redis, and
// null backends.
//
// [config] - starmap.toml discovery and parsing, overlaid onto pipeline
// options.
//
// [observability] - Process-wide hook registry for cache and index
// instrumentation.
//
// [errors] - Error kinds and validation helpers shared across packages.
//
// # Common Workflows
//
// Generate a synthetic matrix:
//
//	m, _ := source.Generate(source.GenerateOptions{Nodes: 200, Clusters: 5, Seed: 42})
//
// Watch convergence while optimizing:
//
//	opts := pipeline.Options{OnIteration: func(u pipeline.IterationUpdate) {
//	    fmt.Printf("sweep %d/%d stable=%.0f%%\n", u.Iteration, u.Total, u.StabilityRatio*100)
//	}}
//	lay, _ := pipeline.ComputeLayout(m, opts)
//
// Cache layouts across runs:
//
//	store, _ := cache.NewFileCache(dir)
//	runner := pipeline.NewRunner(store, nil, logger)
//	lay, _ := runner.ComputeLayout(ctx, m, opts)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                  # All tests
//	go test ./pkg/spatial/...          # Specific package
//	go test -run Example               # Examples only
//
// [similarity]: https://pkg.go.dev/github.com/kverran/starmap/pkg/similarity
// [layout]: https://pkg.go.dev/github.com/kverran/starmap/pkg/layout
// [graph]: https://pkg.go.dev/github.com/kverran/starmap/pkg/graph
// [geom]: https://pkg.go.dev/github.com/kverran/starmap/pkg/geom
// [spatial]: https://pkg.go.dev/github.com/kverran/starmap/pkg/spatial
// [source]: https://pkg.go.dev/github.com/kverran/starmap/pkg/source
// [io]: https://pkg.go.dev/github.com/kverran/starmap/pkg/io
// [export]: https://pkg.go.dev/github.com/kverran/starmap/pkg/export
// [pipeline]: https://pkg.go.dev/github.com/kverran/starmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/kverran/starmap/pkg/cache
// [config]: https://pkg.go.dev/github.com/kverran/starmap/pkg/config
// [observability]: https://pkg.go.dev/github.com/kverran/starmap/pkg/observability
// [errors]: https://pkg.go.dev/github.com/kverran/starmap/pkg/errors
package pkg
