package pipeline

import (
	"github.com/kverran/starmap/pkg/graph"
	"github.com/kverran/starmap/pkg/spatial"
)

// =============================================================================
// Index Stage
// =============================================================================

// BuildIndex constructs a spatial index over the layout's nodes.
// An empty preset selects the default index configuration.
func BuildIndex(lay graph.Layout, opts Options) (*spatial.Index, error) {
	if err := opts.ValidateForIndex(); err != nil {
		return nil, err
	}

	cfg := spatial.DefaultConfig()
	if opts.Preset != "" {
		p, err := spatial.ParsePreset(opts.Preset)
		if err != nil {
			return nil, err
		}
		if cfg, err = spatial.PresetConfig(p); err != nil {
			return nil, err
		}
	}

	ix, err := spatial.NewIndex(cfg)
	if err != nil {
		return nil, err
	}
	ix.Build(lay.Nodes)
	return ix, nil
}
