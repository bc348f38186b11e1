package layout

import (
	"math/rand/v2"

	"github.com/kverran/starmap/pkg/errors"
	"github.com/kverran/starmap/pkg/geom"
	"github.com/kverran/starmap/pkg/similarity"
)

const (
	// forceSimilarityFloor excludes weak pairs from centroid blending.
	forceSimilarityFloor = 0.1

	// externalInfluence is the fraction of a caller-supplied force
	// vector blended into the final position.
	externalInfluence = 0.1
)

// ApplyForceIntegration produces a single-pass hybrid placement: each
// node moves to the similarity-weighted centroid of its strongly related
// partners' seed positions, then takes 10% of any external force vector
// supplied for it (keyed by node id, e.g. from a physics step).
//
// Partners count when their similarity exceeds 0.1. A node with no such
// partner keeps its seed position. The result is parallel to m.IDs().
// This is an integration point for external simulations and does not run
// iterative optimization; use [Optimizer.OptimizePositions] for that.
func (o *Optimizer) ApplyForceIntegration(m *similarity.Matrix, external map[string]geom.Vector) ([]geom.Point, error) {
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
	seeds := make([]geom.Point, len(ids))
	for i := range seeds {
		seeds[i] = randomPoint(rng, *o.cfg.Bounds, o.cfg.Dimensions)
	}

	// Accumulate weighted partner centroids in one pass over the entries.
	sums := make([]geom.Vector, len(ids))
	weights := make([]float64, len(ids))
	for _, e := range m.Entries() {
		if e.Score <= forceSimilarityFloor {
			continue
		}
		i, iOK := index[e.A]
		j, jOK := index[e.B]
		if !iOK || !jOK {
			continue
		}
		sums[i] = sums[i].Add(pointVector(seeds[j]).Scale(e.Score))
		weights[i] += e.Score
		sums[j] = sums[j].Add(pointVector(seeds[i]).Scale(e.Score))
		weights[j] += e.Score
	}

	positions := make([]geom.Point, len(ids))
	for i, id := range ids {
		p := seeds[i]
		if weights[i] > 0 {
			c := sums[i].Scale(1 / weights[i])
			p = geom.Point{X: c.X, Y: c.Y, Z: c.Z}
		}
		if f, ok := external[id]; ok {
			p = p.Add(f.Scale(externalInfluence))
		}
		positions[i] = p
	}
	return positions, nil
}

func pointVector(p geom.Point) geom.Vector {
	return geom.Vector{X: p.X, Y: p.Y, Z: p.Z}
}
