package spatial

import (
	"strings"

	"github.com/kverran/starmap/pkg/errors"
)

// =============================================================================
// Configuration
// =============================================================================

// Default index parameters, applied by [Config.ValidateAndSetDefaults]
// for fields left at zero.
const (
	DefaultMaxDepth        = 6
	DefaultMaxNodesPerLeaf = 10
	DefaultRayTolerance    = 3.0
	DefaultCacheSize       = 256
)

// Config parameterizes index construction and querying.
type Config struct {
	// MaxDepth bounds subdivision. The root sits at depth 0.
	MaxDepth int `json:"max_depth,omitempty" toml:"max_depth"`

	// MaxNodesPerLeaf is the occupancy at which a leaf splits, unless
	// MaxDepth stops it first.
	MaxNodesPerLeaf int `json:"max_nodes_per_leaf,omitempty" toml:"max_nodes_per_leaf"`

	// EnableCaching memoizes repeated point and region queries.
	EnableCaching bool `json:"enable_caching,omitempty" toml:"enable_caching"`

	// CacheSize bounds the number of memoized queries.
	CacheSize int `json:"cache_size,omitempty" toml:"cache_size"`

	// RayTolerance is the maximum distance between a ray and a node
	// position for the node to count as hit.
	RayTolerance float64 `json:"ray_tolerance,omitempty" toml:"ray_tolerance"`
}

/// DefaultConfig returns the standalone defaults: a shallow tree with
// caching disabled.
func DefaultConfig() Config {
	return Config{
		MaxDepth:        DefaultMaxDepth,
		MaxNodesPerLeaf: DefaultMaxNodesPerLeaf,
		RayTolerance:    DefaultRayTolerance,
	}
}

// ValidateAndSetDefaults fills zero values with defaults and fails fast
// on structurally invalid configuration. Safe to call multiple times.
func (c *Config) ValidateAndSetDefaults() error {
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.MaxNodesPerLeaf == 0 {
		c.MaxNodesPerLeaf = DefaultMaxNodesPerLeaf
	}
	if c.RayTolerance == 0 {
		c.RayTolerance = DefaultRayTolerance
	}
	if c.EnableCaching && c.CacheSize == 0 {
		c.CacheSize = DefaultCacheSize
	}

	switch {
	case c.MaxDepth < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "max depth must be at least 1, got %d", c.MaxDepth)
	case c.MaxNodesPerLeaf < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "max nodes per leaf must be at least 1, got %d", c.MaxNodesPerLeaf)
	case c.CacheSize < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "cache size must not be negative, got %d", c.CacheSize)
	case c.RayTolerance < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "ray tolerance must not be negative, got %g", c.RayTolerance)
	}
	return nil
}

// =============================================================================
// Presets
// =============================================================================

// Preset names a bundled index configuration.
type Preset string

// Named configuration presets.
const (
	// PresetFast favors build speed: shallow tree, large leaves.
	PresetFast Preset = "fast"

	// PresetPrecise favors query accuracy: deep tree, small leaves,
	// tight ray tolerance.
	PresetPrecise Preset = "precise"

	// PresetBalanced is the middle ground.
	PresetBalanced Preset = "balanced"

	// PresetMemoryEfficient disables caching and keeps leaves large.
	PresetMemoryEfficient Preset = "memoryEfficient"
)

// Presets returns all presets in a fixed order.
func Presets() []Preset {
	return []Preset{PresetFast, PresetPrecise, PresetBalanced, PresetMemoryEfficient}
}

// ParsePreset resolves a preset name case-insensitively.
func ParsePreset(name string) (Preset, error) {
	for _, p := range Presets() {
		if strings.EqualFold(name, string(p)) {
			return p, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidPreset,
		"unknown index preset %q (valid: fast, precise, balanced, memoryEfficient)", name)
}

// PresetConfig returns the configuration bundle for a preset.
func PresetConfig(p Preset) (Config, error) {
	switch p {
	case PresetFast:
		return Config{MaxDepth: 6, MaxNodesPerLeaf: 20, EnableCaching: true, CacheSize: 256, RayTolerance: 5}, nil
	case PresetPrecise:
		return Config{MaxDepth: 12, MaxNodesPerLeaf: 5, EnableCaching: true, CacheSize: 512, RayTolerance: 1}, nil
	case PresetBalanced:
		return Config{MaxDepth: 8, MaxNodesPerLeaf: 10, EnableCaching: true, CacheSize: 256, RayTolerance: 3}, nil
	case PresetMemoryEfficient:
		return Config{MaxDepth: 6, MaxNodesPerLeaf: 32, EnableCaching: false, CacheSize: 0, RayTolerance: 3}, nil
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidPreset, "unknown index preset %q", string(p))
	}
}
