// Package export renders computed layouts into shareable artifacts.
//
// Supported outputs:
//   - DOT: Graphviz source with every node pinned at its computed
//     position, suitable for further styling or manual rendering
//   - SVG: the DOT source rendered through Graphviz (neato honors the
//     pinned positions)
//   - PNG: the same rendering rasterized by Graphviz
//   - CSV: one row per node with its coordinates, for spreadsheets and
//     plotting tools
//
// The JSON artifact is the layout document itself and is produced by
// [graph.MarshalLayout], not by this package.
//
// Three-dimensional layouts are flattened onto the XY plane for DOT,
// SVG, and PNG; CSV keeps the Z column.
package export
