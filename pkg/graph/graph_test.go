package graph

import (
	"encoding/json"
	"path/filepath"
	"slices"
	"testing"

	"github.com/kverran/starmap/pkg/geom"
)

func TestPositionedNodePoint(t *testing.T) {
	n2 := NewNode("a", 1, 2)
	if n2.Has3D() {
		t.Error("NewNode() produced a 3D node")
	}
	if got := n2.Point(); got != (geom.Point{X: 1, Y: 2}) {
		t.Errorf("Point() = %+v, want {1 2 0}", got)
	}

	n3 := NewNode3D("b", 1, 2, 3)
	if !n3.Has3D() {
		t.Error("NewNode3D() produced a 2D node")
	}
	if got := n3.Point(); got != (geom.Point{X: 1, Y: 2, Z: 3}) {
		t.Errorf("Point() = %+v, want {1 2 3}", got)
	}
}

func TestPositionedNodeJSON(t *testing.T) {
	tests := []struct {
		name string
		node PositionedNode
		want string
	}{
		{"2d omits z", NewNode("a", 1, 2), `{"id":"a","x":1,"y":2}`},
		{"3d keeps z", NewNode3D("b", 1, 2, 3), `{"id":"b","x":1,"y":2,"z":3}`},
		{"explicit zero z survives", NewNode3D("c", 1, 2, 0), `{"id":"c","x":1,"y":2,"z":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.node)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal() = %s, want %s", data, tt.want)
			}

			var back PositionedNode
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if back.Has3D() != tt.node.Has3D() {
				t.Errorf("Has3D() lost in round trip")
			}
		})
	}
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		name  string
		nodes []PositionedNode
		want  int
	}{
		{"empty", nil, Dims2D},
		{"all 2d", []PositionedNode{NewNode("a", 0, 0), NewNode("b", 1, 1)}, Dims2D},
		{"one 3d", []PositionedNode{NewNode("a", 0, 0), NewNode3D("b", 1, 1, 0)}, Dims3D},
		{"all 3d", []PositionedNode{NewNode3D("a", 0, 0, 5)}, Dims3D},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dimensions(tt.nodes); got != tt.want {
				t.Errorf("Dimensions() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFromPoints(t *testing.T) {
	ids := []string{"a", "b"}
	points := []geom.Point{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}

	nodes2, err := FromPoints(ids, points, Dims2D)
	if err != nil {
		t.Fatalf("FromPoints(2D) error = %v", err)
	}
	if nodes2[0].Has3D() {
		t.Error("2D conversion kept z coordinates")
	}

	nodes3, err := FromPoints(ids, points, Dims3D)
	if err != nil {
		t.Fatalf("FromPoints(3D) error = %v", err)
	}
	if !nodes3[1].Has3D() || *nodes3[1].Z != 6 {
		t.Errorf("3D conversion lost z: %+v", nodes3[1])
	}

	if _, err := FromPoints([]string{"a"}, points, Dims2D); err == nil {
		t.Error("FromPoints() accepted mismatched lengths")
	}
	if _, err := FromPoints(ids, points, 4); err == nil {
		t.Error("FromPoints() accepted dimensions 4")
	}
}

func TestPointsAndIDsRoundTrip(t *testing.T) {
	nodes := []PositionedNode{NewNode("a", 1, 2), NewNode3D("b", 3, 4, 5)}

	if got := IDs(nodes); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("IDs() = %v", got)
	}
	points := Points(nodes)
	if points[1] != (geom.Point{X: 3, Y: 4, Z: 5}) {
		t.Errorf("Points()[1] = %+v", points[1])
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")

	l := Layout{
		Nodes:      []PositionedNode{NewNode("a", 1, 2), NewNode("b", 3, 4)},
		Dimensions: Dims2D,
		Strategy:   "linear",
		Seed:       7,
		Stress:     1.25,
	}
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile() error = %v", err)
	}

	back, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile() error = %v", err)
	}
	if len(back.Nodes) != 2 || back.Strategy != "linear" || back.Stress != 1.25 {
		t.Errorf("round trip lost fields: %+v", back)
	}
}

func TestReadLayoutFileMissing(t *testing.T) {
	if _, err := ReadLayoutFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("ReadLayoutFile() succeeded for a missing file")
	}
}

func TestUnmarshalLayoutInfersDimensions(t *testing.T) {
	data := []byte(`{"nodes":[{"id":"a","x":0,"y":0,"z":1}]}`)
	l, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout() error = %v", err)
	}
	if l.Dimensions != Dims3D {
		t.Errorf("Dimensions = %d, want 3", l.Dimensions)
	}

	if _, err := UnmarshalLayout([]byte(`{"nodes":[],"dimensions":5}`)); err == nil {
		t.Error("UnmarshalLayout() accepted dimensions 5")
	}
}
