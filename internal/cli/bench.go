package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/kverran/starmap/pkg/geom"
	"github.com/kverran/starmap/pkg/layout"
	"github.com/kverran/starmap/pkg/pipeline"
	"github.com/kverran/starmap/pkg/similarity"
)

// benchCommand compares every mapping strategy against one dataset.
func (c *CLI) benchCommand() *cobra.Command {
	opts := c.pipelineOptions()

	cmd := &cobra.Command{
		Use:   "bench [scores.json]",
		Short: "Benchmark every mapping strategy against one dataset",
		Long: `Benchmark every mapping strategy against one dataset.

Each strategy lays out the same similarity matrix once. Candidates are
ranked by a combined score that rewards low stress and fast runs.
Without an input file a synthetic clustered dataset is generated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Source = args[0]
			}
			return c.runBench(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Nodes, "nodes", "n", opts.Nodes, "synthetic node count (without an input file)")
	cmd.Flags().IntVar(&opts.Clusters, "clusters", opts.Clusters, "synthetic cluster count")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", opts.Iterations, "optimizer sweeps per candidate")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed shared by all candidates")

	return cmd
}

func (c *CLI) runBench(ctx context.Context, opts pipeline.Options) error {
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	m, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load matrix: %w", err)
	}

	bounds := geom.Bounds{Max: geom.Point{X: opts.Width, Y: opts.Height, Z: opts.Depth}}
	opt, err := layout.NewOptimizer(layout.Config{
		MaxIterations: opts.Iterations,
		LearningRate:  opts.LearningRate,
		Dimensions:    opts.Dimensions,
		Bounds:        &bounds,
		Seed:          opts.Seed,
		Mapper:        similarity.DefaultMapper(),
	})
	if err != nil {
		return fmt.Errorf("configure optimizer: %w", err)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Benchmarking %d strategies...", len(similarity.Strategies())))
	spinner.Start()
	results, err := opt.BenchmarkMappers(ctx, m, nil)
	if err != nil {
		spinner.StopWithError("Benchmark failed")
		return fmt.Errorf("benchmark mappers: %w", err)
	}
	spinner.Stop()

	printBenchTable(results)

	best := results[0]
	printKeyValue("Best", string(best.Strategy))

	stresses := make([]float64, len(results))
	for i, r := range results {
		stresses[i] = r.Stress
	}
	printDetail("Stress %.3f ± %.3f across %d strategies",
		stat.Mean(stresses, nil), stat.StdDev(stresses, nil), len(results))

	printNewline()
	printNextStep("Use the winner", fmt.Sprintf("starmap layout --mapper %s", best.Strategy))
	return nil
}

// printBenchTable renders the ranked benchmark results, best first.
func printBenchTable(results []layout.BenchmarkResult) {
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			string(r.Strategy),
			fmt.Sprintf("%.3f", r.Stress),
			r.Elapsed.Round(time.Millisecond).String(),
			fmt.Sprintf("%.3f", r.Score),
		}
	}
	fmt.Println(renderTable([]string{"Rank", "Strategy", "Stress", "Time", "Score"}, rows))
}
