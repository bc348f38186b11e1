package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/kverran/starmap/pkg/similarity"
)

// WriteJSON encodes a matrix as pretty-printed JSON and writes it to w.
// Pair keys are written in sorted order, so identical matrices produce
// byte-identical output. The result can be re-imported with [ReadJSON].
func WriteJSON(m *similarity.Matrix, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a matrix to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(m *similarity.Matrix, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(m, f)
}

// WriteCSV encodes a matrix as CSV rows and writes it to w.
// The output starts with an a,b,score header and lists pairs in sorted
// key order. The result can be re-imported with [ReadCSV].
func WriteCSV(m *similarity.Matrix, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"a", "b", "score"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range m.Entries() {
		row := []string{e.A, e.B, strconv.FormatFloat(e.Score, 'g', -1, 64)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write pair %s|%s: %w", e.A, e.B, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes a matrix to a CSV file at path.
// This is a convenience wrapper around [WriteCSV] for file-based output.
func ExportCSV(m *similarity.Matrix, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteCSV(m, f)
}
