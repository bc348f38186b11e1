// Package cache provides content-addressed caching for pipeline stages.
//
// Every stage of the starmap pipeline is a pure function of its inputs,
// so results are cached under keys derived from those inputs:
//   - generated similarity matrices, keyed by generator parameters
//   - optimized layouts, keyed by the matrix hash and layout options
//   - export artifacts, keyed by the layout hash and format options
//
// Backends:
//   - file: directory of JSON entries for CLI usage
//   - memory: in-process map for tests and short-lived runs
//   - redis: shared cache for multi-instance deployments
//   - null: no-op cache that disables caching entirely
//
// Create a cache and keyer, then hand both to a pipeline runner:
//
//	c, err := cache.NewFileCache(dir)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//	keyer := cache.NewDefaultKeyer()
package cache

import (
	"context"
	"time"
)

// TTLs per pipeline stage. All stages are deterministic, so entries stay
// valid until evicted; the TTLs only bound disk and Redis growth.
const (
	// TTLMatrix applies to generated similarity matrices.
	TTLMatrix = 7 * 24 * time.Hour

	// TTLLayout applies to optimized layouts, the most expensive stage.
	TTLLayout = 30 * 24 * time.Hour

	// TTLArtifact applies to rendered export artifacts.
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl stores it without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Fetch is a strict variant of Get for callers that treat absence as an
// error. Returns ErrCacheMiss when the key is not present.
func Fetch(ctx context.Context, c Cache, key string) ([]byte, error) {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !hit {
		return nil, ErrCacheMiss
	}
	return data, nil
}
