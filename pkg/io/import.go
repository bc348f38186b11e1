package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kverran/starmap/pkg/similarity"
)

// ReadJSON decodes a JSON similarity matrix from r.
//
// The input must be a JSON object mapping pair keys to scores:
//
//	{"alpha|beta": 0.8, "alpha|gamma": 0.1}
//
// Malformed keys are skipped and scores are clamped into [0,1]. The
// returned matrix is independent of r; ReadJSON does not close r.
func ReadJSON(r io.Reader) (*similarity.Matrix, error) {
	m := similarity.NewMatrix()
	if err := json.NewDecoder(r).Decode(m); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return m, nil
}

// ImportJSON reads a JSON matrix file at path.
// The error wraps the underlying cause with the file path for context.
func ImportJSON(path string) (*similarity.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// ReadCSV decodes a CSV similarity matrix from r.
//
// Each row carries a pair: two node ids followed by a score. Rows with
// fewer than three fields or an unparseable score are skipped, which
// also absorbs an optional a,b,score header row.
func ReadCSV(r io.Reader) (*similarity.Matrix, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	m := similarity.NewMatrix()
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(record) < 3 {
			continue
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			continue
		}
		m.Set(record[0], record[1], score)
	}
	return m, nil
}

// ImportCSV reads a CSV matrix file at path.
func ImportCSV(path string) (*similarity.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}
