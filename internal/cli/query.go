package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kverran/starmap/pkg/geom"
	"github.com/kverran/starmap/pkg/graph"
	"github.com/kverran/starmap/pkg/observability"
	"github.com/kverran/starmap/pkg/pipeline"
	"github.com/kverran/starmap/pkg/spatial"
)

// queryOpts carries the flags shared by every query subcommand.
type queryOpts struct {
	preset string
}

// queryCommand groups the spatial query subcommands. Each one reads a
// layout file, builds an index over its nodes, and prints the matches.
func (c *CLI) queryCommand() *cobra.Command {
	opts := queryOpts{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run spatial queries against a computed layout",
		Long: `Run spatial queries against a computed layout.

Every subcommand takes a layout file produced by 'starmap layout' and
builds a spatial index over its nodes before querying. Coordinates are
comma-separated, with the third component optional for 2D layouts.

Examples:
  starmap query point stars.layout.json --at 400,300 --radius 80
  starmap query region stars.layout.json --min 0,0 --max 200,200
  starmap query ray stars.layout.json --origin 0,0 --direction 1,1
  starmap query nearest stars.layout.json --at 120,40
  starmap query within stars.layout.json --at 120,40 --distance 60`,
	}

	cmd.PersistentFlags().StringVar(&opts.preset, "preset", "", "index preset: fast, precise, balanced, memoryEfficient")

	cmd.AddCommand(queryPointCommand(&opts))
	cmd.AddCommand(queryRegionCommand(&opts))
	cmd.AddCommand(queryRayCommand(&opts))
	cmd.AddCommand(queryNearestCommand(&opts))
	cmd.AddCommand(queryWithinCommand(&opts))

	return cmd
}

// queryPointCommand finds nodes within a radius of a center point.
func queryPointCommand(opts *queryOpts) *cobra.Command {
	var (
		at     string
		radius float64
	)

	cmd := &cobra.Command{
		Use:   "point [layout.json]",
		Short: "Find nodes within a radius of a point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			center, err := parsePoint(at)
			if err != nil {
				return err
			}
			return runQuery(cmd.Context(), args[0], opts.preset, "point", func(ix *spatial.Index, dims int) queryResult {
				return nodeResult(dims, ix.QueryPoint(center, radius))
			})
		},
	}

	cmd.Flags().StringVar(&at, "at", "0,0", "center coordinates as x,y[,z]")
	cmd.Flags().Float64Var(&radius, "radius", 50, "search radius")

	return cmd
}

// queryRegionCommand finds nodes inside an axis-aligned region.
func queryRegionCommand(opts *queryOpts) *cobra.Command {
	var lo, hi string

	cmd := &cobra.Command{
		Use:   "region [layout.json]",
		Short: "Find nodes inside an axis-aligned region",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minCorner, err := parsePoint(lo)
			if err != nil {
				return err
			}
			maxCorner, err := parsePoint(hi)
			if err != nil {
				return err
			}
			region := geom.NewBounds(minCorner, maxCorner)
			return runQuery(cmd.Context(), args[0], opts.preset, "region", func(ix *spatial.Index, dims int) queryResult {
				return nodeResult(dims, ix.QueryRegion(region))
			})
		},
	}

	cmd.Flags().StringVar(&lo, "min", "0,0", "minimum corner as x,y[,z]")
	cmd.Flags().StringVar(&hi, "max", "100,100", "maximum corner as x,y[,z]")

	return cmd
}

// queryRayCommand finds nodes along a ray, closest hits first.
func queryRayCommand(opts *queryOpts) *cobra.Command {
	var origin, direction string

	cmd := &cobra.Command{
		Use:   "ray [layout.json]",
		Short: "Find nodes along a ray, nearest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := parsePoint(origin)
			if err != nil {
				return err
			}
			d, err := parsePoint(direction)
			if err != nil {
				return err
			}
			ray := geom.Ray{Origin: o, Direction: geom.Vector{X: d.X, Y: d.Y, Z: d.Z}}
			return runQuery(cmd.Context(), args[0], opts.preset, "ray", func(ix *spatial.Index, dims int) queryResult {
				return intersectionResult(dims, ix.QueryRay(ray))
			})
		},
	}

	cmd.Flags().StringVar(&origin, "origin", "0,0", "ray origin as x,y[,z]")
	cmd.Flags().StringVar(&direction, "direction", "1,0", "ray direction as x,y[,z]")

	return cmd
}

// queryNearestCommand finds the single node closest to a point.
func queryNearestCommand(opts *queryOpts) *cobra.Command {
	var (
		at          string
		maxDistance float64
	)

	cmd := &cobra.Command{
		Use:   "nearest [layout.json]",
		Short: "Find the single node closest to a point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(at)
			if err != nil {
				return err
			}
			return runQuery(cmd.Context(), args[0], opts.preset, "nearest", func(ix *spatial.Index, dims int) queryResult {
				n, ok := ix.FindNearest(p, maxDistance)
				if !ok {
					return queryResult{}
				}
				match := spatial.NodeDistance{Node: n, Distance: n.Point().DistanceTo(p)}
				return distanceResult(dims, []spatial.NodeDistance{match})
			})
		},
	}

	cmd.Flags().StringVar(&at, "at", "0,0", "query coordinates as x,y[,z]")
	cmd.Flags().Float64Var(&maxDistance, "max-distance", 0, "give up beyond this distance (0 = unbounded)")

	return cmd
}

// queryWithinCommand lists nodes within a distance of a point.
func queryWithinCommand(opts *queryOpts) *cobra.Command {
	var (
		at       string
		distance float64
	)

	cmd := &cobra.Command{
		Use:   "within [layout.json]",
		Short: "List nodes within a distance of a point, closest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(at)
			if err != nil {
				return err
			}
			return runQuery(cmd.Context(), args[0], opts.preset, "within", func(ix *spatial.Index, dims int) queryResult {
				return distanceResult(dims, ix.NodesWithinDistance(p, distance))
			})
		},
	}

	cmd.Flags().StringVar(&at, "at", "0,0", "query coordinates as x,y[,z]")
	cmd.Flags().Float64Var(&distance, "distance", 50, "maximum distance from the point")

	return cmd
}

// =============================================================================
// Query Execution
// =============================================================================

// queryResult is the rendered form of one query's matches.
type queryResult struct {
	headers []string
	rows    [][]string
}

// runQuery loads the layout, builds the index over it, runs a single
// query, and prints the matches as a table.
func runQuery(ctx context.Context, input, preset, kind string, query func(ix *spatial.Index, dims int) queryResult) error {
	logger := loggerFromContext(ctx)

	lay, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}

	prog := newProgress(logger)
	ix, err := pipeline.BuildIndex(lay, pipeline.Options{Preset: preset})
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	prog.done(fmt.Sprintf("Indexed %d nodes", len(lay.Nodes)))

	start := time.Now()
	res := query(ix, lay.Dimensions)
	elapsed := time.Since(start)
	observability.Index().OnQuery(ctx, kind, len(res.rows), elapsed)

	if len(res.rows) == 0 {
		printInfo("No matches")
		return nil
	}

	fmt.Println(renderTable(res.headers, res.rows))
	printDetail("%d of %d nodes · %s", len(res.rows), len(lay.Nodes), elapsed.Round(time.Microsecond))
	return nil
}

// nodeResult renders plain node matches with their coordinates.
func nodeResult(dims int, nodes []graph.PositionedNode) queryResult {
	res := queryResult{headers: coordHeaders(dims)}
	for _, n := range nodes {
		res.rows = append(res.rows, coordRow(dims, n))
	}
	return res
}

// distanceResult renders node matches with a distance column.
func distanceResult(dims int, matches []spatial.NodeDistance) queryResult {
	res := queryResult{headers: append(coordHeaders(dims), "Distance")}
	for _, m := range matches {
		res.rows = append(res.rows, append(coordRow(dims, m.Node), fmt.Sprintf("%.2f", m.Distance)))
	}
	return res
}

// intersectionResult renders ray hits with their parametric distance
// along the ray.
func intersectionResult(dims int, hits []spatial.Intersection) queryResult {
	res := queryResult{headers: append(coordHeaders(dims), "Along Ray")}
	for _, h := range hits {
		res.rows = append(res.rows, append(coordRow(dims, h.Node), fmt.Sprintf("%.2f", h.Distance)))
	}
	return res
}

func coordHeaders(dims int) []string {
	if dims == graph.Dims3D {
		return []string{"ID", "X", "Y", "Z"}
	}
	return []string{"ID", "X", "Y"}
}

func coordRow(dims int, n graph.PositionedNode) []string {
	row := []string{n.ID, fmt.Sprintf("%.1f", n.X), fmt.Sprintf("%.1f", n.Y)}
	if dims == graph.Dims3D {
		var z float64
		if n.Z != nil {
			z = *n.Z
		}
		row = append(row, fmt.Sprintf("%.1f", z))
	}
	return row
}

// parsePoint parses "x,y" or "x,y,z" into a point.
func parsePoint(s string) (geom.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return geom.Point{}, fmt.Errorf("invalid coordinates %q (want x,y or x,y,z)", s)
	}
	var coords [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geom.Point{}, fmt.Errorf("invalid coordinate %q in %q", part, s)
		}
		coords[i] = v
	}
	return geom.Point{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}
