package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kverran/starmap/pkg/layout"
	"github.com/kverran/starmap/pkg/similarity"
)

// =============================================================================
// Layout - Positioned Node Document
// =============================================================================

// Layout is the serialization format for a finished layout run: the
// positioned nodes plus the metadata needed to reproduce or judge the
// run.
//
// Only Nodes is required. Dimensions defaults to the dimensionality of
// the node set when absent. Convergence is included when the producer
// monitored the run.
type Layout struct {
	Nodes      []PositionedNode `json:"nodes"`
	Dimensions int              `json:"dimensions,omitempty"`

	// Provenance of the run that produced the positions.
	Strategy similarity.Strategy `json:"strategy,omitempty"`
	Seed     uint64              `json:"seed,omitempty"`

	// Quality metrics, when measured.
	Stress      float64             `json:"stress,omitempty"`
	Convergence *layout.Convergence `json:"convergence,omitempty"`
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// A missing dimensions field is inferred from the node set.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	if l.Dimensions == 0 {
		l.Dimensions = Dimensions(l.Nodes)
	}
	if l.Dimensions != Dims2D && l.Dimensions != Dims3D {
		return Layout{}, fmt.Errorf("layout dimensions must be 2 or 3, got %d", l.Dimensions)
	}

	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
