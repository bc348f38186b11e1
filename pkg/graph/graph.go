package graph

import (
	"fmt"

	"github.com/kverran/starmap/pkg/geom"
)

// =============================================================================
// Slice Conversions
// =============================================================================

// FromPoints pairs ids with positions into positioned nodes. The two
// slices must be parallel. With dimensions 3 every node carries its Z
// coordinate; with dimensions 2 the Z values are dropped.
func FromPoints(ids []string, points []geom.Point, dimensions int) ([]PositionedNode, error) {
	if len(ids) != len(points) {
		return nil, fmt.Errorf("ids and points differ in length: %d vs %d", len(ids), len(points))
	}
	if dimensions != Dims2D && dimensions != Dims3D {
		return nil, fmt.Errorf("dimensions must be 2 or 3, got %d", dimensions)
	}

	nodes := make([]PositionedNode, len(ids))
	for i, id := range ids {
		if dimensions == Dims3D {
			nodes[i] = NewNode3D(id, points[i].X, points[i].Y, points[i].Z)
		} else {
			nodes[i] = NewNode(id, points[i].X, points[i].Y)
		}
	}
	return nodes, nil
}

// Points extracts the positions of nodes, in order.
func Points(nodes []PositionedNode) []geom.Point {
	points := make([]geom.Point, len(nodes))
	for i, n := range nodes {
		points[i] = n.Point()
	}
	return points
}

// IDs extracts the ids of nodes, in order.
func IDs(nodes []PositionedNode) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// Dimensions reports the dimensionality of a node set: 3 when any node
// carries a Z coordinate, else 2. This is the single decision point for
// quadtree-versus-octree index construction.
func Dimensions(nodes []PositionedNode) int {
	for _, n := range nodes {
		if n.Has3D() {
			return Dims3D
		}
	}
	return Dims2D
}
