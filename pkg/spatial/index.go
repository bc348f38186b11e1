// Package spatial provides a hierarchical spatial index over positioned
// nodes: a quadtree in two dimensions, an octree in three.
//
// An [Index] is built from a static snapshot of [graph.PositionedNode]
// values and answers point, region, ray, and nearest-neighbor queries.
// The tree lives in a flat arena of nodes addressed by integer index,
// with each internal node owning a contiguous block of 2^d children.
//
// The index is immutable between builds: mutation requires [Index.Rebuild].
// Queries are safe to run concurrently with each other, but never
// concurrently with Build, Rebuild, Clear, or SetConfig.
package spatial

import (
	"slices"
	"time"

	"github.com/kverran/starmap/pkg/geom"
	"github.com/kverran/starmap/pkg/graph"
)

// noChild marks a leaf in the arena.
const noChild = int32(-1)

// treeNode is one arena slot. Internal nodes hold a childBase pointing
// at 2^d contiguous children; leaves hold the indices of their items in
// the build snapshot.
type treeNode struct {
	bounds    geom.Bounds
	depth     int32
	childBase int32
	items     []int32
}

// Statistics describes the current tree, for diagnostics.
type Statistics struct {
	NodeCount  int           `json:"node_count"`
	BuildTime  time.Duration `json:"build_time"`
	MaxDepth   int           `json:"max_depth"`
	LeafCount  int           `json:"leaf_count"`
	Dimensions int           `json:"dimensions"`
	Generation uint64        `json:"generation"`
}

// =============================================================================
// Index
// =============================================================================

// Index is a quadtree/octree over a snapshot of positioned nodes.
// Construct with [NewIndex] or [NewIndexFromPreset], then [Index.Build].
type Index struct {
	cfg Config

	nodes      []graph.PositionedNode
	points     []geom.Point
	arena      []treeNode
	dimensions int

	generation   uint64
	buildTime    time.Duration
	maxDepthSeen int32
	leafCount    int

	cache *queryCache
}

// NewIndex creates an empty index with the given configuration.
func NewIndex(cfg Config) (*Index, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	ix := &Index{cfg: cfg}
	if cfg.EnableCaching {
		ix.cache = newQueryCache(cfg.CacheSize)
	}
	return ix, nil
}

// NewIndexFromPreset creates an empty index configured by a named preset.
func NewIndexFromPreset(p Preset) (*Index, error) {
	cfg, err := PresetConfig(p)
	if err != nil {
		return nil, err
	}
	return NewIndex(cfg)
}

// Config returns the active configuration.
func (ix *Index) Config() Config {
	return ix.cfg
}

// =============================================================================
// Building
// =============================================================================

// Build constructs the tree over a snapshot of nodes. The snapshot is
// copied; later changes to the argument do not affect the index.
//
// The build is 3D when any node carries a Z coordinate, else 2D, and
// that decision holds until the next build. Subdivision stops when a
// leaf holds at most MaxNodesPerLeaf items or sits at MaxDepth.
func (ix *Index) Build(nodes []graph.PositionedNode) {
	start := time.Now()
	ix.reset()

	ix.nodes = slices.Clone(nodes)
	ix.points = graph.Points(ix.nodes)
	ix.dimensions = graph.Dimensions(ix.nodes)

	if len(ix.nodes) > 0 {
		items := make([]int32, len(ix.nodes))
		for i := range items {
			items[i] = int32(i)
		}
		ix.arena = append(ix.arena, treeNode{
			bounds:    ix.snapshotBounds(),
			childBase: noChild,
			items:     items,
		})
		ix.subdivide(0)
	}

	for _, nd := range ix.arena {
		if nd.childBase == noChild {
			ix.leafCount++
		}
		ix.maxDepthSeen = max(ix.maxDepthSeen, nd.depth)
	}
	ix.buildTime = time.Since(start)
}

// Clear discards the tree and its snapshot. Queries on a cleared index
// return empty results.
func (ix *Index) Clear() {
	ix.reset()
}

// Rebuild is Clear followed by Build.
func (ix *Index) Rebuild(nodes []graph.PositionedNode) {
	ix.Clear()
	ix.Build(nodes)
}

// SetConfig swaps the configuration, rebuilding the tree in place when
// nodes are present so the new parameters take effect immediately.
func (ix *Index) SetConfig(cfg Config) error {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return err
	}
	ix.cfg = cfg
	if cfg.EnableCaching {
		ix.cache = newQueryCache(cfg.CacheSize)
	} else {
		ix.cache = nil
	}
	if len(ix.nodes) > 0 {
		ix.Build(ix.nodes)
	}
	return nil
}

// Stats returns diagnostics for the current tree. Dimensions is zero
// before the first build.
func (ix *Index) Stats() Statistics {
	return Statistics{
		NodeCount:  len(ix.nodes),
		BuildTime:  ix.buildTime,
		MaxDepth:   int(ix.maxDepthSeen),
		LeafCount:  ix.leafCount,
		Dimensions: ix.dimensions,
		Generation: ix.generation,
	}
}

// reset drops all build products and advances the generation counter,
// which implicitly invalidates every cached query result.
func (ix *Index) reset() {
	ix.nodes = nil
	ix.points = nil
	ix.arena = nil
	ix.dimensions = 0
	ix.buildTime = 0
	ix.maxDepthSeen = 0
	ix.leafCount = 0
	ix.generation++
}

// snapshotBounds covers every point, padding degenerate axes so that
// child volumes are always well defined.
func (ix *Index) snapshotBounds() geom.Bounds {
	b, _ := geom.BoundsOf(ix.points)
	const pad = 0.5
	if b.Max.X == b.Min.X {
		b.Min.X -= pad
		b.Max.X += pad
	}
	if b.Max.Y == b.Min.Y {
		b.Min.Y -= pad
		b.Max.Y += pad
	}
	if ix.dimensions == graph.Dims3D && b.Max.Z == b.Min.Z {
		b.Min.Z -= pad
		b.Max.Z += pad
	}
	return b
}

// subdivide splits the node at idx until leaves are small enough or deep
// enough. Children are appended contiguously; arena indices stay valid
// across growth.
func (ix *Index) subdivide(idx int32) {
	nd := ix.arena[idx]
	if int(nd.depth) >= ix.cfg.MaxDepth || len(nd.items) <= ix.cfg.MaxNodesPerLeaf {
		return
	}

	fan := int32(1) << ix.dimensions
	childBase := int32(len(ix.arena))
	center := nd.bounds.Center()
	for o := int32(0); o < fan; o++ {
		ix.arena = append(ix.arena, treeNode{
			bounds:    childBounds(nd.bounds, center, o, ix.dimensions),
			depth:     nd.depth + 1,
			childBase: noChild,
		})
	}

	for _, item := range nd.items {
		o := ix.octant(center, ix.points[item])
		child := &ix.arena[childBase+o]
		child.items = append(child.items, item)
	}
	ix.arena[idx].childBase = childBase
	ix.arena[idx].items = nil

	for o := int32(0); o < fan; o++ {
		ix.subdivide(childBase + o)
	}
}

// octant routes a point to a child slot: low bits select the high half
// per axis, with points on the split plane routing high.
func (ix *Index) octant(center, p geom.Point) int32 {
	var o int32
	if p.X >= center.X {
		o |= 1
	}
	if p.Y >= center.Y {
		o |= 2
	}
	if ix.dimensions == graph.Dims3D && p.Z >= center.Z {
		o |= 4
	}
	return o
}

// childBounds carves the child volume for one octant slot out of b.
func childBounds(b geom.Bounds, center geom.Point, o int32, dimensions int) geom.Bounds {
	cb := b
	if o&1 != 0 {
		cb.Min.X = center.X
	} else {
		cb.Max.X = center.X
	}
	if o&2 != 0 {
		cb.Min.Y = center.Y
	} else {
		cb.Max.Y = center.Y
	}
	if dimensions == graph.Dims3D {
		if o&4 != 0 {
			cb.Min.Z = center.Z
		} else {
			cb.Max.Z = center.Z
		}
	}
	return cb
}
