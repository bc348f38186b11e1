// Package graph provides the positioned-node and layout document types
// shared across the Starmap toolkit.
//
// This package defines the canonical wire format for node positions,
// used for JSON files, caching, export, and cross-tool interoperability.
//
// # Architecture
//
// The package sits at the serialization boundary between the numeric
// core and external formats:
//
//   - [PositionedNode], [Layout]: Serialization types (this package)
//   - pkg/layout.Optimizer: produces raw positions
//   - pkg/spatial.Index: consumes positioned nodes for queries
//
// Use [FromPoints] to attach ids to optimizer output and
// [Points]/[Dimensions] to go back the other way.
//
// # Dimensionality
//
// A node's Z coordinate is a pointer: nil means the node carries no
// third dimension. A node set is 3D as soon as any node has Z set; that
// single decision drives quadtree-versus-octree selection downstream.
//
// # Layout Documents
//
// [Layout] bundles positioned nodes with the convergence and stress
// metadata of the run that produced them:
//
//	{
//	  "nodes": [{"id": "a", "x": 12.5, "y": 40.1}],
//	  "dimensions": 2,
//	  "strategy": "exponential",
//	  "stress": 3.4
//	}
package graph
