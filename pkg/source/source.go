// Package source acquires similarity matrices for the layout pipeline:
// loading them from local files and generating synthetic clustered ones
// for demos and benchmarks.
package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kverran/starmap/pkg/io"
	"github.com/kverran/starmap/pkg/similarity"
)

// Load reads a similarity matrix from path. The format follows the file
// extension (.json or .csv); for any other extension the content is
// sniffed, with a leading '{' selecting JSON and everything else CSV.
func Load(path string) (*similarity.Matrix, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return io.ImportJSON(path)
	case ".csv":
		return io.ImportCSV(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if looksLikeJSON(data) {
		return io.ReadJSON(bytes.NewReader(data))
	}
	return io.ReadCSV(bytes.NewReader(data))
}

// looksLikeJSON reports whether the first non-space byte opens a JSON
// object.
func looksLikeJSON(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return b == '{'
		}
	}
	return false
}
