package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/kverran/starmap/pkg/graph"
)

// ToCSV converts a layout to CSV with one row per node. Two-dimensional
// layouts get id,x,y columns; three-dimensional layouts add z, with
// zero filled in for nodes that never carried a Z coordinate.
func ToCSV(lay graph.Layout) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	threeD := lay.Dimensions == graph.Dims3D || graph.Dimensions(lay.Nodes) == graph.Dims3D

	header := []string{"id", "x", "y"}
	if threeD {
		header = append(header, "z")
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, n := range lay.Nodes {
		row := []string{n.ID, fmtFloat(n.X), fmtFloat(n.Y)}
		if threeD {
			var z float64
			if n.Z != nil {
				z = *n.Z
			}
			row = append(row, fmtFloat(z))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
