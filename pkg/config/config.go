// Package config loads optional starmap.toml configuration files.
//
// A configuration file overlays defaults for the layout pipeline, so
// recurring flags can live next to a project instead of in shell
// history. Command-line flags still win over file values.
//
// # Format
//
// The file is TOML with up to five tables, all optional:
//
//	[layout]
//	strategy   = "spring"
//	dimensions = 3
//	iterations = 80
//	seed       = 7
//
//	[mapper]
//	exponent     = 1.5
//	max_distance = 150.0
//
//	[index]
//	preset = "precise"
//
//	[cache]
//	backend = "redis"
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[export]
//	formats        = ["svg", "csv"]
//	show_edges     = true
//	edge_threshold = 0.25
//
// Unknown keys are rejected rather than ignored, so typos surface as
// errors instead of silently falling back to defaults.
//
// # Discovery
//
// [Discover] checks, in order: the path in $STARMAP_CONFIG, then
// ./starmap.toml, then starmap.toml under the XDG config directory.
// A missing file is not an error; discovery then yields an empty File
// that overlays nothing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/kverran/starmap/pkg/pipeline"
	"github.com/kverran/starmap/pkg/similarity"
)

// FileName is the configuration file name searched by [Discover].
const FileName = "starmap.toml"

// EnvVar names the environment variable holding an explicit config path.
const EnvVar = "STARMAP_CONFIG"

// Cache backend names for [CacheSection.Backend].
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// ValidBackends is the set of supported cache backends.
var ValidBackends = map[string]bool{
	BackendFile:   true,
	BackendMemory: true,
	BackendRedis:  true,
	BackendNone:   true,
}

// File mirrors the starmap.toml layout. Zero-valued fields overlay
// nothing when applied.
type File struct {
	Layout LayoutSection     `toml:"layout"`
	Mapper similarity.Mapper `toml:"mapper"`
	Index  IndexSection      `toml:"index"`
	Cache  CacheSection      `toml:"cache"`
	Export ExportSection     `toml:"export"`
}

// LayoutSection overlays optimizer options.
type LayoutSection struct {
	Strategy     string  `toml:"strategy"`
	Dimensions   int     `toml:"dimensions"`
	Iterations   int     `toml:"iterations"`
	LearningRate float64 `toml:"learning_rate"`
	Width        float64 `toml:"width"`
	Height       float64 `toml:"height"`
	Depth        float64 `toml:"depth"`
	Seed         uint64  `toml:"seed"`
}

// IndexSection overlays spatial index options.
type IndexSection struct {
	Preset string `toml:"preset"`
}

// CacheSection selects and configures the cache backend.
type CacheSection struct {
	// Backend is one of file, memory, redis, or none. Empty selects
	// the file backend in the user cache directory.
	Backend string `toml:"backend"`

	// Dir overrides the file backend's directory.
	Dir string `toml:"dir"`

	Redis RedisSection `toml:"redis"`
}

// RedisSection holds connection settings for the redis backend.
type RedisSection struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ExportSection overlays artifact options.
type ExportSection struct {
	Formats       []string `toml:"formats"`
	ShowEdges     bool     `toml:"show_edges"`
	EdgeThreshold float64  `toml:"edge_threshold"`
	Labels        bool     `toml:"labels"`
}

// Parse decodes TOML data into a File. Unknown keys, unknown cache
// backends, and invalid strategies or formats are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	if f.Layout.Strategy != "" {
		if err := pipeline.ValidateStrategy(f.Layout.Strategy); err != nil {
			return nil, err
		}
	}
	if err := pipeline.ValidateFormats(f.Export.Formats); err != nil {
		return nil, err
	}
	if f.Cache.Backend != "" && !ValidBackends[f.Cache.Backend] {
		return nil, fmt.Errorf("invalid cache backend: %q (must be one of: file, memory, redis, none)", f.Cache.Backend)
	}
	if f.Cache.Backend == BackendRedis && f.Cache.Redis.Addr == "" {
		return nil, fmt.Errorf("cache backend %q requires redis.addr", BackendRedis)
	}
	return &f, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Discover locates and loads the nearest configuration file. It returns
// the file and the path it came from; when no file exists the returned
// File is empty and the path is "".
//
// An unreadable or invalid file is an error only when it exists: the
// explicit $STARMAP_CONFIG path must exist, search-path candidates may
// simply be absent.
func Discover() (*File, string, error) {
	if path := os.Getenv(EnvVar); path != "" {
		f, err := Load(path)
		if err != nil {
			return nil, path, err
		}
		return f, path, nil
	}

	for _, path := range searchPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		f, err := Load(path)
		if err != nil {
			return nil, path, err
		}
		return f, path, nil
	}
	return &File{}, "", nil
}

// searchPaths returns candidate config locations in precedence order.
func searchPaths() []string {
	paths := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "starmap", FileName))
	}
	return paths
}

// Apply overlays the file's values onto opts. Only fields the file
// actually sets are copied, so flag values and pipeline defaults
// survive for the rest.
func (f *File) Apply(opts *pipeline.Options) {
	if f.Layout.Strategy != "" {
		opts.Strategy = f.Layout.Strategy
	}
	if f.Layout.Dimensions != 0 {
		opts.Dimensions = f.Layout.Dimensions
	}
	if f.Layout.Iterations != 0 {
		opts.Iterations = f.Layout.Iterations
	}
	if f.Layout.LearningRate != 0 {
		opts.LearningRate = f.Layout.LearningRate
	}
	if f.Layout.Width != 0 {
		opts.Width = f.Layout.Width
	}
	if f.Layout.Height != 0 {
		opts.Height = f.Layout.Height
	}
	if f.Layout.Depth != 0 {
		opts.Depth = f.Layout.Depth
	}
	if f.Layout.Seed != 0 {
		opts.Seed = f.Layout.Seed
	}

	if f.Mapper != (similarity.Mapper{}) {
		m := f.Mapper
		opts.Mapper = &m
	}

	if f.Index.Preset != "" {
		opts.Preset = f.Index.Preset
	}

	if len(f.Export.Formats) > 0 {
		opts.Formats = slices.Clone(f.Export.Formats)
	}
	if f.Export.ShowEdges {
		opts.ShowEdges = true
	}
	if f.Export.EdgeThreshold != 0 {
		opts.EdgeThreshold = f.Export.EdgeThreshold
	}
	if f.Export.Labels {
		opts.Labels = true
	}
}
