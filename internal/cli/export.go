package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kverran/starmap/pkg/graph"
	"github.com/kverran/starmap/pkg/pipeline"
	"github.com/kverran/starmap/pkg/similarity"
	"github.com/kverran/starmap/pkg/source"
)

// exportCommand renders a computed layout into output artifacts.
func (c *CLI) exportCommand() *cobra.Command {
	opts := c.pipelineOptions()
	var (
		output     string
		formatsStr string
		matrixPath string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "export [layout.json]",
		Short: "Render a layout as svg, png, dot, csv, or json",
		Long: `Render a computed layout into output artifacts.

Formats are comma-separated; each one writes its own file next to the
input (or under the --output base path). Edge rendering needs the
original similarity matrix, passed with --matrix.

Examples:
  starmap export stars.layout.json
  starmap export stars.layout.json -f svg,png,dot
  starmap export stars.layout.json --edges --matrix scores.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			return c.runExport(cmd.Context(), args[0], output, matrixPath, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", strings.Join(opts.Formats, ","), "output format(s): svg (default), png, dot, csv, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.ShowEdges, "edges", opts.ShowEdges, "draw similarity edges (needs --matrix)")
	cmd.Flags().Float64Var(&opts.EdgeThreshold, "edge-threshold", opts.EdgeThreshold, "minimum score for a drawn edge")
	cmd.Flags().BoolVar(&opts.Labels, "labels", opts.Labels, "label nodes with their ids")
	cmd.Flags().StringVar(&matrixPath, "matrix", "", "similarity matrix file for edge rendering")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, input, output, matrixPath string, noCache bool, opts pipeline.Options) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	lay, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}

	var m *similarity.Matrix
	if matrixPath != "" {
		if m, err = source.Load(matrixPath); err != nil {
			return fmt.Errorf("load matrix %s: %w", matrixPath, err)
		}
	} else if opts.ShowEdges {
		printWarning("--edges needs --matrix; rendering without edges")
		opts.ShowEdges = false
	}

	spinner := newSpinnerWithContext(ctx, "Rendering artifacts...")
	spinner.Start()
	artifacts, cacheHit, err := runner.ExportWithCacheInfo(ctx, lay, m, opts)
	if err != nil {
		spinner.StopWithError("Export failed")
		return fmt.Errorf("export artifacts: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := basePath(output, input)
	single := len(opts.Formats) == 1 && output != ""

	printSuccess("Export complete")
	for _, format := range opts.Formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if single {
			path = output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	pairs := 0
	if m != nil {
		pairs = m.Len()
	}
	printStats(len(lay.Nodes), pairs, cacheHit)
	return nil
}

// basePath derives the base output path from the output and input paths.
// An empty output strips the input's extension; an output carrying a
// known format extension loses it. Each format then appends its own
// extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
