package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/kverran/starmap/pkg/graph"
	"github.com/kverran/starmap/pkg/similarity"
)

// DefaultEdgeThreshold hides edges for weakly similar pairs, which
// would otherwise bury the layout under a near-complete graph.
const DefaultEdgeThreshold = 0.3

// Options configures DOT and SVG artifact generation.
type Options struct {
	// ShowEdges draws an edge for every similarity pair at or above
	// EdgeThreshold.
	ShowEdges bool

	// EdgeThreshold is the minimum similarity for a drawn edge.
	// Zero means [DefaultEdgeThreshold].
	EdgeThreshold float64

	// Labels attaches node ids as external labels.
	Labels bool
}

// ToDOT converts a layout to Graphviz DOT source. Every node carries a
// pinned position (the "!" suffix), so rendering with the neato engine
// reproduces the computed layout instead of inventing a new one.
// The matrix supplies edges and may be nil when edges are off.
func ToDOT(lay graph.Layout, m *similarity.Matrix, opts Options) string {
	threshold := opts.EdgeThreshold
	if threshold == 0 {
		threshold = DefaultEdgeThreshold
	}

	var buf bytes.Buffer
	buf.WriteString("graph starmap {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=point, width=0.12, color=\"#4c78a8\"];\n")
	buf.WriteString("  edge [color=\"#b0b0b0\"];\n")
	buf.WriteString("\n")

	for _, n := range lay.Nodes {
		fmt.Fprintf(&buf, "  %q [pos=\"%s,%s!\"%s];\n",
			n.ID, fmtCoord(n.X), fmtCoord(n.Y), labelAttr(n, opts.Labels))
	}

	if opts.ShowEdges && m != nil {
		positioned := make(map[string]struct{}, len(lay.Nodes))
		for _, n := range lay.Nodes {
			positioned[n.ID] = struct{}{}
		}

		buf.WriteString("\n")
		for _, e := range m.Entries() {
			if e.Score < threshold {
				continue
			}
			// Edges to unpositioned nodes would make Graphviz invent
			// coordinates for them.
			if _, ok := positioned[e.A]; !ok {
				continue
			}
			if _, ok := positioned[e.B]; !ok {
				continue
			}
			fmt.Fprintf(&buf, "  %q -- %q [penwidth=%s];\n",
				e.A, e.B, fmtCoord(0.5+2*e.Score))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func labelAttr(n graph.PositionedNode, labels bool) string {
	if !labels {
		return ""
	}
	return fmt.Sprintf(", xlabel=%q", n.ID)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPNG renders DOT source to PNG using Graphviz's built-in
// rasterizer. No external tools are required.
func RenderPNG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the svg element so the image scales to its
// container instead of keeping Graphviz's fixed point dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
