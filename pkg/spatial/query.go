package spatial

import (
	"cmp"
	"container/heap"
	"math"
	"slices"

	"github.com/kverran/starmap/pkg/geom"
	"github.com/kverran/starmap/pkg/graph"
)

// Intersection is one ray hit: the node, the closest point to it on the
// ray, and the parametric distance along the ray to that point.
type Intersection struct {
	Node     graph.PositionedNode `json:"node"`
	Point    geom.Point           `json:"point"`
	Distance float64              `json:"distance"`
}

// NodeDistance pairs a node with its distance from a query point.
type NodeDistance struct {
	Node     graph.PositionedNode `json:"node"`
	Distance float64              `json:"distance"`
}

// =============================================================================
// Queries
// =============================================================================

// QueryPoint returns all nodes within radius of center, boundary
// inclusive. Radius zero matches exact positions only; negative radii
// are treated as zero. Queries against a 3D index read center.Z, which
// is zero when the caller left it unset.
func (ix *Index) QueryPoint(center geom.Point, radius float64) []graph.PositionedNode {
	radius = math.Max(radius, 0)
	var key string
	if ix.cache != nil {
		key = pointKey(ix.generation, center, radius)
		if hit, ok := ix.cache.get(key); ok {
			return hit
		}
	}

	out := []graph.PositionedNode{}
	if len(ix.arena) > 0 {
		ix.walkWithin(0, center, radius*radius, func(item int32, _ float64) {
			out = append(out, ix.nodes[item])
		})
	}

	if ix.cache != nil {
		ix.cache.put(key, out)
	}
	return out
}

// QueryRegion returns all nodes inside the axis-aligned region,
// boundary inclusive. Inverted min/max axes are normalized first. A
// region with zero Z extent against a 3D index matches the slice at
// that Z only.
func (ix *Index) QueryRegion(region geom.Bounds) []graph.PositionedNode {
	region = geom.NewBounds(region.Min, region.Max)
	var key string
	if ix.cache != nil {
		key = regionKey(ix.generation, region)
		if hit, ok := ix.cache.get(key); ok {
			return hit
		}
	}

	out := []graph.PositionedNode{}
	if len(ix.arena) > 0 {
		ix.walkRegion(0, region, &out)
	}

	if ix.cache != nil {
		ix.cache.put(key, out)
	}
	return out
}

// QueryRay returns the nodes within the configured RayTolerance of the
// ray, ascending by parametric distance along it. Hits behind the
// origin resolve to the origin itself (parameter floored at zero). A
// zero-length direction yields no hits.
func (ix *Index) QueryRay(ray geom.Ray) []Intersection {
	norm, ok := ray.Normalized()
	if !ok {
		return []Intersection{}
	}

	out := []Intersection{}
	if len(ix.arena) > 0 {
		ix.walkRay(0, norm, ix.cfg.RayTolerance, &out)
	}
	slices.SortFunc(out, func(a, b Intersection) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return out
}

// FindNearest returns the node closest to p, descending best-first
// through the tree rather than scanning every node. The boolean is
// false when the index is empty or nothing lies within maxDistance;
// maxDistance <= 0 means unbounded.
func (ix *Index) FindNearest(p geom.Point, maxDistance float64) (graph.PositionedNode, bool) {
	if len(ix.arena) == 0 {
		return graph.PositionedNode{}, false
	}
	limit := math.Inf(1)
	if maxDistance > 0 {
		limit = maxDistance * maxDistance
	}

	q := &nearestQueue{}
	heap.Push(q, nearestEntry{
		dist: ix.arena[0].bounds.DistanceSquaredTo(p),
		node: 0,
		item: noChild,
	})
	for q.Len() > 0 {
		e := heap.Pop(q).(nearestEntry)
		if e.dist > limit {
			break
		}
		if e.item != noChild {
			return ix.nodes[e.item], true
		}
		nd := &ix.arena[e.node]
		if nd.childBase == noChild {
			for _, item := range nd.items {
				heap.Push(q, nearestEntry{
					dist: ix.points[item].DistanceSquaredTo(p),
					node: noChild,
					item: item,
				})
			}
			continue
		}
		fan := int32(1) << ix.dimensions
		for o := int32(0); o < fan; o++ {
			child := nd.childBase + o
			d := ix.arena[child].bounds.DistanceSquaredTo(p)
			if d <= limit {
				heap.Push(q, nearestEntry{dist: d, node: child, item: noChild})
			}
		}
	}
	return graph.PositionedNode{}, false
}

// NodesWithinDistance returns every node within maxDistance of p paired
// with its distance, ascending. Negative maxDistance is treated as zero.
func (ix *Index) NodesWithinDistance(p geom.Point, maxDistance float64) []NodeDistance {
	maxDistance = math.Max(maxDistance, 0)
	out := []NodeDistance{}
	if len(ix.arena) > 0 {
		ix.walkWithin(0, p, maxDistance*maxDistance, func(item int32, d2 float64) {
			out = append(out, NodeDistance{Node: ix.nodes[item], Distance: math.Sqrt(d2)})
		})
	}
	slices.SortFunc(out, func(a, b NodeDistance) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return out
}

// =============================================================================
// Traversal
// =============================================================================

// walkWithin visits every item within the squared radius of center,
// pruning subtrees whose bounds lie entirely outside it.
func (ix *Index) walkWithin(idx int32, center geom.Point, r2 float64, visit func(item int32, d2 float64)) {
	nd := &ix.arena[idx]
	if nd.bounds.DistanceSquaredTo(center) > r2 {
		return
	}
	if nd.childBase == noChild {
		for _, item := range nd.items {
			d2 := ix.points[item].DistanceSquaredTo(center)
			if d2 <= r2 {
				visit(item, d2)
			}
		}
		return
	}
	fan := int32(1) << ix.dimensions
	for o := int32(0); o < fan; o++ {
		ix.walkWithin(nd.childBase+o, center, r2, visit)
	}
}

func (ix *Index) walkRegion(idx int32, region geom.Bounds, out *[]graph.PositionedNode) {
	nd := &ix.arena[idx]
	if !nd.bounds.Intersects(region) {
		return
	}
	if nd.childBase == noChild {
		for _, item := range nd.items {
			if region.Contains(ix.points[item]) {
				*out = append(*out, ix.nodes[item])
			}
		}
		return
	}
	fan := int32(1) << ix.dimensions
	for o := int32(0); o < fan; o++ {
		ix.walkRegion(nd.childBase+o, region, out)
	}
}

func (ix *Index) walkRay(idx int32, ray geom.Ray, tol float64, out *[]Intersection) {
	nd := &ix.arena[idx]
	if !rayIntersectsBounds(ray, nd.bounds, tol) {
		return
	}
	if nd.childBase == noChild {
		for _, item := range nd.items {
			p := ix.points[item]
			t := ray.ClosestParam(p)
			closest := ray.At(t)
			if closest.DistanceSquaredTo(p) <= tol*tol {
				*out = append(*out, Intersection{Node: ix.nodes[item], Point: closest, Distance: t})
			}
		}
		return
	}
	fan := int32(1) << ix.dimensions
	for o := int32(0); o < fan; o++ {
		ix.walkRay(nd.childBase+o, ray, tol, out)
	}
}

// rayIntersectsBounds is a slab test against bounds grown by tol on
// every axis. Growing per axis over-covers the Euclidean tolerance
// region, which only admits extra subtrees, never prunes a hit.
func rayIntersectsBounds(r geom.Ray, b geom.Bounds, tol float64) bool {
	lo := [3]float64{b.Min.X - tol, b.Min.Y - tol, b.Min.Z - tol}
	hi := [3]float64{b.Max.X + tol, b.Max.Y + tol, b.Max.Z + tol}
	origin := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float64{r.Direction.X, r.Direction.Y, r.Direction.Z}

	tMin, tMax := 0.0, math.Inf(1)
	for a := range 3 {
		if dir[a] == 0 {
			if origin[a] < lo[a] || origin[a] > hi[a] {
				return false
			}
			continue
		}
		t1 := (lo[a] - origin[a]) / dir[a]
		t2 := (hi[a] - origin[a]) / dir[a]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// =============================================================================
// Best-first queue
// =============================================================================

// nearestEntry is either a tree node (item == noChild, dist = lower
// bound from the node's bounds) or a concrete item with its exact
// squared distance. Popping a concrete item first means no closer
// candidate remains.
type nearestEntry struct {
	dist float64
	node int32
	item int32
}

type nearestQueue []nearestEntry

func (q nearestQueue) Len() int           { return len(q) }
func (q nearestQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q nearestQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *nearestQueue) Push(x any) {
	*q = append(*q, x.(nearestEntry))
}

func (q *nearestQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}
