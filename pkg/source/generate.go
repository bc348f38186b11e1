package source

import (
	"fmt"
	"math/rand/v2"

	"github.com/kverran/starmap/pkg/errors"
	"github.com/kverran/starmap/pkg/similarity"
)

// Default generator parameters, applied by
// [GenerateOptions.ValidateAndSetDefaults] for fields left at zero.
const (
	DefaultNodes    = 50
	DefaultClusters = 4
	DefaultSeed     = uint64(42)
)

// Score ranges for generated pairs. Same-cluster pairs score high so
// clusters contract under layout; cross-cluster pairs score low and the
// weakest are dropped entirely to keep the matrix sparse.
const (
	intraClusterMin = 0.6
	intraClusterMax = 0.95
	interClusterMax = 0.3
	sparsityFloor   = 0.05
)

// GenerateOptions parameterizes the synthetic matrix generator.
// This struct supports JSON serialization for cache keys.
type GenerateOptions struct {
	Nodes    int    `json:"nodes"`
	Clusters int    `json:"clusters"`
	Seed     uint64 `json:"seed"`
}

// ValidateAndSetDefaults fills zero values with defaults and validates
// the result. A cluster count above the node count is reduced to it.
func (o *GenerateOptions) ValidateAndSetDefaults() error {
	if o.Nodes == 0 {
		o.Nodes = DefaultNodes
	}
	if o.Clusters == 0 {
		o.Clusters = DefaultClusters
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}

	switch {
	case o.Nodes < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "node count must be positive, got %d", o.Nodes)
	case o.Clusters < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "cluster count must be positive, got %d", o.Clusters)
	}

	o.Clusters = min(o.Clusters, o.Nodes)
	return nil
}

// Generate builds a synthetic clustered similarity matrix.
//
// Nodes are assigned round-robin to clusters and named after their
// cluster ("c2-n017"). Same-cluster pairs draw scores from
// [0.6, 0.95), cross-cluster pairs from [0, 0.3) with near-zero draws
// dropped. All draws come from a generator seeded by opts.Seed, so the
// result is deterministic for a given options value.
func Generate(opts GenerateOptions) (*similarity.Matrix, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0xdeadbeef))

	ids := make([]string, opts.Nodes)
	clusters := make([]int, opts.Nodes)
	for i := range ids {
		clusters[i] = i % opts.Clusters
		ids[i] = fmt.Sprintf("c%d-n%03d", clusters[i], i)
	}

	m := similarity.NewMatrix()
	// Register every id up front so nodes whose cross-cluster pairs all
	// fall under the sparsity floor still appear in the matrix.
	m.SetIDs(ids)

	for i := range opts.Nodes {
		for j := i + 1; j < opts.Nodes; j++ {
			var score float64
			if clusters[i] == clusters[j] {
				score = intraClusterMin + rng.Float64()*(intraClusterMax-intraClusterMin)
			} else {
				score = rng.Float64() * interClusterMax
				if score < sparsityFloor {
					continue
				}
			}
			m.Set(ids[i], ids[j], score)
		}
	}

	return m, nil
}
