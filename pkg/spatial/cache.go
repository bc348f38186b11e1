package spatial

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/kverran/starmap/pkg/geom"
	"github.com/kverran/starmap/pkg/graph"
)

// queryCache memoizes point and region query results. Keys carry the
// build generation, so a rebuild or clear strands every prior entry
// without an explicit flush; stranded entries age out through FIFO
// eviction. The mutex keeps concurrent read queries safe.
type queryCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string][]graph.PositionedNode
	order    []string
}

func newQueryCache(capacity int) *queryCache {
	return &queryCache{
		capacity: capacity,
		entries:  make(map[string][]graph.PositionedNode),
	}
}

// get returns a copy of the memoized result so callers can never
// mutate cached state.
func (c *queryCache) get(key string) ([]graph.PositionedNode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	hit, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(hit), true
}

func (c *queryCache) put(key string, nodes []graph.PositionedNode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	if len(c.order) >= c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = slices.Clone(nodes)
	c.order = append(c.order, key)
}

func (c *queryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// pointKey and regionKey quantize coordinates to 1e-3 so recomputed
// query shapes that differ only by float noise still hit.

func pointKey(generation uint64, p geom.Point, radius float64) string {
	return fmt.Sprintf("point:%d:%d,%d,%d:%d",
		generation, quantize(p.X), quantize(p.Y), quantize(p.Z), quantize(radius))
}

func regionKey(generation uint64, b geom.Bounds) string {
	return fmt.Sprintf("region:%d:%d,%d,%d:%d,%d,%d",
		generation,
		quantize(b.Min.X), quantize(b.Min.Y), quantize(b.Min.Z),
		quantize(b.Max.X), quantize(b.Max.Y), quantize(b.Max.Z))
}

func quantize(v float64) int64 {
	return int64(math.Round(v * 1000))
}
