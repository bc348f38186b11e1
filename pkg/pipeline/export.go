package pipeline

import (
	"fmt"

	"github.com/kverran/starmap/pkg/export"
	"github.com/kverran/starmap/pkg/graph"
	"github.com/kverran/starmap/pkg/similarity"
)

// =============================================================================
// Export Stage
// =============================================================================

// ExportArtifacts renders the requested formats from a layout. The
// matrix supplies edge data for DOT and SVG output and may be nil when
// edges are off.
func ExportArtifacts(lay graph.Layout, m *similarity.Matrix, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(export.ToDOT(lay, m, exportOptions(opts)))
		case FormatSVG:
			data, err = export.RenderSVG(export.ToDOT(lay, m, exportOptions(opts)))
		case FormatPNG:
			data, err = export.RenderPNG(export.ToDOT(lay, m, exportOptions(opts)))
		case FormatCSV:
			data, err = export.ToCSV(lay)
		case FormatJSON:
			data, err = graph.MarshalLayout(lay)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("export %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// exportOptions converts pipeline options to export options.
func exportOptions(opts Options) export.Options {
	return export.Options{
		ShowEdges:     opts.ShowEdges,
		EdgeThreshold: opts.EdgeThreshold,
		Labels:        opts.Labels,
	}
}
