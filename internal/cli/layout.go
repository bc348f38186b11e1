package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kverran/starmap/pkg/graph"
	"github.com/kverran/starmap/pkg/pipeline"
)

// layoutCommand creates the layout command for computing spatial layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		watch   bool
	)
	opts := c.pipelineOptions()

	cmd := &cobra.Command{
		Use:   "layout [scores.json]",
		Short: "Compute a spatial layout from a similarity matrix",
		Long: `Compute a spatial layout from a similarity matrix.

The layout command reads pairwise similarity scores from a JSON or CSV
file and optimizes node positions so that spatial distance mirrors the
mapped similarity. Without a file argument it lays out a synthetic
clustered matrix; --nodes controls its size.

The output is a layout.json document carrying positions, stress, and
convergence metrics, ready for 'query' and 'export'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Source = args[0]
			}
			return c.runLayout(cmd.Context(), opts, output, noCache, watch)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", opts.Refresh, "regenerate the synthetic matrix even when cached")
	cmd.Flags().BoolVar(&watch, "watch", false, "watch optimizer convergence live")

	// Source flags
	cmd.Flags().IntVarP(&opts.Nodes, "nodes", "n", opts.Nodes, "synthetic node count (without an input file)")
	cmd.Flags().IntVar(&opts.Clusters, "clusters", opts.Clusters, "synthetic cluster count")

	// Layout flags
	cmd.Flags().StringVarP(&opts.Strategy, "mapper", "m", opts.Strategy, "distance mapping strategy: exponential (default), linear, logarithmic, spring, threshold, powerLaw")
	cmd.Flags().IntVar(&opts.Dimensions, "dims", opts.Dimensions, "layout dimensionality: 2 or 3")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", opts.Iterations, "optimizer sweep count")
	cmd.Flags().Float64Var(&opts.LearningRate, "learning-rate", opts.LearningRate, "correction step scale in (0,1]")
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "bounding volume width")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "bounding volume height")
	cmd.Flags().Float64Var(&opts.Depth, "depth", opts.Depth, "bounding volume depth (3D only)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed for reproducible layouts")

	return cmd
}

// runLayout acquires the matrix, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache, watch bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	m, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load matrix: %w", err)
	}

	var lay graph.Layout
	var cacheHit bool
	if watch {
		lay, cacheHit, err = c.watchLayout(ctx, runner, m, opts)
		if err != nil {
			return fmt.Errorf("compute layout: %w", err)
		}
	} else {
		spinner := newSpinnerWithContext(ctx, "Computing layout...")
		spinner.Start()
		lay, cacheHit, err = runner.ComputeLayoutWithCacheInfo(ctx, m, opts)
		if err != nil {
			spinner.StopWithError("Layout failed")
			return fmt.Errorf("compute layout: %w", err)
		}
		spinner.Stop()
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = defaultLayoutPath(opts.Source)
	}

	if err := graph.WriteLayoutFile(lay, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(m.IDs()), m.Len(), cacheHit)
	printDetail("Stress: %.3f", lay.Stress)
	printNewline()
	printNextStep("Render", "starmap export "+outputPath)

	return nil
}

// defaultLayoutPath derives the layout output path from the matrix
// source; synthetic runs fall back to a fixed name.
func defaultLayoutPath(source string) string {
	if source == "" {
		return appName + ".layout.json"
	}
	return strings.TrimSuffix(source, filepath.Ext(source)) + ".layout.json"
}
