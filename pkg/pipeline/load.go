package pipeline

import (
	"fmt"

	"github.com/kverran/starmap/pkg/similarity"
	"github.com/kverran/starmap/pkg/source"
)

// syntheticSource is the source label used for generated matrices in
// cache keys, hooks, and logs.
const syntheticSource = "synthetic"

// =============================================================================
// Load Stage
// =============================================================================

// Load acquires the similarity matrix for a run: from the source file
// when one is set, otherwise from the synthetic generator.
func Load(opts Options) (*similarity.Matrix, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	if !opts.IsGenerated() {
		m, err := source.Load(opts.Source)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", opts.Source, err)
		}
		return m, nil
	}

	return source.Generate(source.GenerateOptions{
		Nodes:    opts.Nodes,
		Clusters: opts.Clusters,
		Seed:     opts.Seed,
	})
}

// sourceLabel names the matrix source for logs and hooks.
func sourceLabel(opts Options) string {
	if opts.IsGenerated() {
		return syntheticSource
	}
	return opts.Source
}
