package cli

import (
	"testing"

	"github.com/kverran/starmap/pkg/geom"
	"github.com/kverran/starmap/pkg/graph"
	"github.com/kverran/starmap/pkg/spatial"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    geom.Point
		wantErr bool
	}{
		{
			name: "2d",
			in:   "1,2",
			want: geom.Point{X: 1, Y: 2},
		},
		{
			name: "3d with spaces",
			in:   "1.5, -2, 3",
			want: geom.Point{X: 1.5, Y: -2, Z: 3},
		},
		{
			name:    "too few coordinates",
			in:      "7",
			wantErr: true,
		},
		{
			name:    "too many coordinates",
			in:      "1,2,3,4",
			wantErr: true,
		},
		{
			name:    "not a number",
			in:      "a,b",
			wantErr: true,
		},
		{
			name:    "empty",
			in:      "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePoint(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePoint(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parsePoint(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoordHeaders(t *testing.T) {
	if got := coordHeaders(graph.Dims2D); len(got) != 3 || got[2] != "Y" {
		t.Errorf("coordHeaders(2D) = %v, want ID,X,Y", got)
	}
	if got := coordHeaders(graph.Dims3D); len(got) != 4 || got[3] != "Z" {
		t.Errorf("coordHeaders(3D) = %v, want trailing Z", got)
	}
}

func TestNodeResult(t *testing.T) {
	nodes := []graph.PositionedNode{
		graph.NewNode("a", 1, 2),
		graph.NewNode("b", 3.25, 4),
	}

	res := nodeResult(graph.Dims2D, nodes)
	if len(res.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(res.rows))
	}
	if res.rows[0][0] != "a" || res.rows[0][1] != "1.0" {
		t.Errorf("first row = %v", res.rows[0])
	}
	if res.rows[1][1] != "3.2" {
		t.Errorf("coordinates should render with one decimal, got %q", res.rows[1][1])
	}

	res3 := nodeResult(graph.Dims3D, []graph.PositionedNode{graph.NewNode3D("c", 1, 2, 3)})
	if len(res3.rows[0]) != 4 || res3.rows[0][3] != "3.0" {
		t.Errorf("3D row = %v, want trailing z column", res3.rows[0])
	}
}

func TestNodeResultMissingZ(t *testing.T) {
	// A 2D node rendered in a 3D layout reads as z=0.
	res := nodeResult(graph.Dims3D, []graph.PositionedNode{graph.NewNode("flat", 1, 2)})
	if res.rows[0][3] != "0.0" {
		t.Errorf("missing z = %q, want 0.0", res.rows[0][3])
	}
}

func TestDistanceResult(t *testing.T) {
	matches := []spatial.NodeDistance{
		{Node: graph.NewNode("a", 0, 0), Distance: 1.234},
		{Node: graph.NewNode("b", 5, 5), Distance: 7.071},
	}

	res := distanceResult(graph.Dims2D, matches)
	if res.headers[len(res.headers)-1] != "Distance" {
		t.Errorf("headers = %v, want trailing Distance", res.headers)
	}
	if res.rows[0][3] != "1.23" {
		t.Errorf("distance cell = %q, want two decimals", res.rows[0][3])
	}
}

func TestIntersectionResult(t *testing.T) {
	hits := []spatial.Intersection{
		{Node: graph.NewNode("a", 10, 0), Distance: 10},
	}

	res := intersectionResult(graph.Dims2D, hits)
	if res.headers[len(res.headers)-1] != "Along Ray" {
		t.Errorf("headers = %v, want trailing Along Ray", res.headers)
	}
	if res.rows[0][3] != "10.00" {
		t.Errorf("ray distance cell = %q", res.rows[0][3])
	}
}
