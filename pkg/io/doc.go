// Package io provides JSON and CSV import and export for similarity
// matrices.
//
// # Overview
//
// This package enables serialization of sparse pairwise similarity data
// to and from two simple formats. The formats are designed for:
//
//   - Hand-written fixtures and quick experiments
//   - Integration with external tools that score entity pairs
//   - Persisting generated matrices for later re-layout
//   - Round-trip preservation: import, lay out, export, and re-import
//
// # JSON Format
//
// The JSON form is a flat object mapping canonical pair keys to scores:
//
//	{
//	  "alpha|beta": 0.8,
//	  "alpha|gamma": 0.1
//	}
//
// A pair key joins two node ids with "|"; the order of the ids does not
// matter on import, and export always writes the sorted form. Scores
// outside [0,1] are clamped. Keys without exactly two non-empty ids are
// skipped rather than rejected, so a partially corrupted file still
// imports the pairs that survived.
//
// # CSV Format
//
// The CSV form has one pair per row with three columns:
//
//	a,b,score
//	alpha,beta,0.8
//	alpha,gamma,0.1
//
// The header row is optional on import and always written on export.
// Rows with fewer than three fields or an unparseable score are
// skipped, matching the JSON importer's tolerance.
//
// # Import
//
// Use [ImportJSON] or [ImportCSV] to read from a file path, or
// [ReadJSON] and [ReadCSV] to read from any io.Reader:
//
//	m, err := io.ImportJSON("scores.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Export
//
// Use [ExportJSON] or [ExportCSV] to write to a file, or [WriteJSON]
// and [WriteCSV] to write to any io.Writer. Export output is
// deterministic: pairs are written in sorted key order, so identical
// matrices produce byte-identical files.
//
// # Concurrency
//
// All functions create or read independent matrices and are safe to
// call concurrently, but not with concurrent modification of the same
// matrix.
package io
