// Package similarity provides the sparse pairwise similarity matrix and
// the similarity-to-distance mapping strategies consumed by the layout
// optimizer.
//
// A [Matrix] stores scores in [0,1] keyed by unordered node pairs. Keys
// are canonicalized so that (a,b) and (b,a) resolve to the same entry,
// and a pair without an entry reads as similarity 0. A [Mapper] converts
// a score into a target spatial distance under one of six named
// strategies.
package similarity

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// Separator joins two node ids into a canonical pair key. Node ids must
// not contain it; see errors.ValidateNodeID.
const Separator = "|"

// =============================================================================
// Pair Keys
// =============================================================================

// Key returns the canonical key for the unordered pair (a, b). The two
// ids are sorted before joining, so Key(a, b) == Key(b, a).
func Key(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + Separator + b
}

// SplitKey decomposes a canonical key into its two node ids. The third
// return value is false when the key is malformed: no separator, an
// empty side, or more than two ids.
func SplitKey(key string) (string, string, bool) {
	a, b, found := strings.Cut(key, Separator)
	if !found || a == "" || b == "" || strings.Contains(b, Separator) {
		return "", "", false
	}
	return a, b, true
}

// =============================================================================
// Matrix
// =============================================================================

// Entry is one pair of node ids with its similarity score.
type Entry struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Score float64 `json:"score"`
}

// Matrix is a sparse symmetric similarity matrix over string node ids.
//
// The matrix records the order in which ids first appear; that order is
// the contract for every positions slice produced from the matrix. The
// zero Matrix is not usable; construct with [NewMatrix].
type Matrix struct {
	scores map[string]float64
	ids    []string
	known  map[string]struct{}
}

// NewMatrix creates an empty similarity matrix.
func NewMatrix() *Matrix {
	return &Matrix{
		scores: make(map[string]float64),
		known:  make(map[string]struct{}),
	}
}

// Set stores the similarity score for the unordered pair (a, b), clamped
// into [0,1]. Self-pairs and pairs with an empty id are ignored. Both ids
// are registered in first-appearance order.
func (m *Matrix) Set(a, b string, score float64) {
	if a == "" || b == "" || a == b {
		return
	}
	m.register(a)
	m.register(b)
	m.scores[Key(a, b)] = clamp01(score)
}

// Get returns the similarity score for the unordered pair (a, b), or 0
// when no entry exists.
func (m *Matrix) Get(a, b string) float64 {
	return m.scores[Key(a, b)]
}

// Has reports whether the pair (a, b) has an entry.
func (m *Matrix) Has(a, b string) bool {
	_, ok := m.scores[Key(a, b)]
	return ok
}

// Len returns the number of pair entries.
func (m *Matrix) Len() int {
	return len(m.scores)
}

// IDs returns the distinct node ids in first-appearance order. The
// returned slice is a copy.
func (m *Matrix) IDs() []string {
	return slices.Clone(m.ids)
}

// SetIDs replaces the id ordering. Every id already known to the matrix
// must appear in ids; extra ids are allowed and register nodes that have
// no pair entries yet. The second return value lists ids known to the
// matrix but missing from the argument, empty on success.
func (m *Matrix) SetIDs(ids []string) []string {
	known := make(map[string]struct{}, len(ids))
	ordered := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := known[id]; dup {
			continue
		}
		known[id] = struct{}{}
		ordered = append(ordered, id)
	}

	var missing []string
	for _, id := range m.ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return missing
	}

	m.ids = ordered
	m.known = known
	return nil
}

// Entries returns all pair entries sorted by canonical key. The stable
// order keeps downstream computations reproducible under a fixed seed.
func (m *Matrix) Entries() []Entry {
	out := make([]Entry, 0, len(m.scores))
	for _, key := range slices.Sorted(maps.Keys(m.scores)) {
		a, b, ok := SplitKey(key)
		if !ok {
			continue
		}
		out = append(out, Entry{A: a, B: b, Score: m.scores[key]})
	}
	return out
}

// register adds id to the ordering if it has not been seen.
func (m *Matrix) register(id string) {
	if _, ok := m.known[id]; ok {
		return
	}
	m.known[id] = struct{}{}
	m.ids = append(m.ids, id)
}

// =============================================================================
// JSON Encoding
// =============================================================================

// MarshalJSON encodes the matrix as a flat object of canonical pair keys
// to scores: {"a|b": 0.8, ...}.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.scores)
}

// UnmarshalJSON decodes the flat pair-key object form. Malformed keys
// are silently skipped; partial matrices are an expected input shape.
// Ids register in sorted-key order so that decoding is deterministic.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.scores = make(map[string]float64, len(raw))
	m.ids = nil
	m.known = make(map[string]struct{})
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		a, b, ok := SplitKey(key)
		if !ok || a == b {
			continue
		}
		m.Set(a, b, raw[key])
	}
	return nil
}

// clamp01 clamps v into [0,1]. Floating rounding upstream may produce
// values like 1.0000001.
func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
