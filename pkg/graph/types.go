package graph

import (
	"github.com/kverran/starmap/pkg/geom"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Supported dimensionalities.
const (
	Dims2D = 2
	Dims3D = 3
)

// =============================================================================
// PositionedNode - Unified Node Type
// =============================================================================

// PositionedNode is a node id with its spatial position. It is the
// canonical input to the spatial index and the canonical output of the
// layout stage.
//
// Z is a pointer so the wire format can distinguish "no third
// dimension" (nil) from "at z=0" (explicit zero). Index builds treat a
// node set as 3D when any node carries a Z value.
type PositionedNode struct {
	ID string   `json:"id"`
	X  float64  `json:"x"`
	Y  float64  `json:"y"`
	Z  *float64 `json:"z,omitempty"`
}

// NewNode creates a 2D positioned node.
func NewNode(id string, x, y float64) PositionedNode {
	return PositionedNode{ID: id, X: x, Y: y}
}

// NewNode3D creates a 3D positioned node.
func NewNode3D(id string, x, y, z float64) PositionedNode {
	return PositionedNode{ID: id, X: x, Y: y, Z: &z}
}

// Has3D reports whether the node carries a third dimension.
func (n PositionedNode) Has3D() bool { return n.Z != nil }

// Point returns the node's position, with a nil Z read as zero.
func (n PositionedNode) Point() geom.Point {
	p := geom.Point{X: n.X, Y: n.Y}
	if n.Z != nil {
		p.Z = *n.Z
	}
	return p
}
