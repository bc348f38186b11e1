package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kverran/starmap/pkg/pipeline"
	"github.com/kverran/starmap/pkg/similarity"
)

const sampleConfig = `
[layout]
strategy   = "spring"
dimensions = 3
iterations = 80
seed       = 7

[mapper]
exponent     = 1.5
max_distance = 150.0

[index]
preset = "precise"

[cache]
backend = "redis"
[cache.redis]
addr = "localhost:6379"
db   = 2

[export]
formats        = ["svg", "csv"]
show_edges     = true
edge_threshold = 0.25
`

func TestParseFull(t *testing.T) {
	f, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if f.Layout.Strategy != "spring" {
		t.Errorf("Strategy = %q, want spring", f.Layout.Strategy)
	}
	if f.Layout.Dimensions != 3 {
		t.Errorf("Dimensions = %d, want 3", f.Layout.Dimensions)
	}
	if f.Layout.Seed != 7 {
		t.Errorf("Seed = %d, want 7", f.Layout.Seed)
	}
	if f.Mapper.Exponent != 1.5 || f.Mapper.MaxDistance != 150 {
		t.Errorf("Mapper = %+v, want exponent 1.5 and max_distance 150", f.Mapper)
	}
	if f.Index.Preset != "precise" {
		t.Errorf("Preset = %q, want precise", f.Index.Preset)
	}
	if f.Cache.Backend != BackendRedis || f.Cache.Redis.Addr != "localhost:6379" || f.Cache.Redis.DB != 2 {
		t.Errorf("Cache = %+v, want redis at localhost:6379 db 2", f.Cache)
	}
	if len(f.Export.Formats) != 2 || f.Export.EdgeThreshold != 0.25 {
		t.Errorf("Export = %+v, want [svg csv] at threshold 0.25", f.Export)
	}
}

func TestParseEmpty(t *testing.T) {
	f, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse of empty data failed: %v", err)
	}
	if f.Layout != (LayoutSection{}) || f.Cache != (CacheSection{}) || len(f.Export.Formats) != 0 {
		t.Errorf("empty data should parse to a zero File, got %+v", f)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("[layout]\nwidht = 3.0\n"))
	if err == nil {
		t.Fatal("unknown key should fail")
	}
	if !strings.Contains(err.Error(), "widht") {
		t.Errorf("error should name the offending key, got %v", err)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad strategy", "[layout]\nstrategy = \"gravity\"\n"},
		{"bad format", "[export]\nformats = [\"bmp\"]\n"},
		{"bad backend", "[cache]\nbackend = \"disk\"\n"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Errorf("Parse(%q) should fail", tt.data)
			}
		})
	}
}

func TestApplyOverlay(t *testing.T) {
	f, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	opts := pipeline.Options{Strategy: "linear", Iterations: 99}
	f.Apply(&opts)

	if opts.Strategy != "spring" {
		t.Errorf("file strategy should overlay, got %q", opts.Strategy)
	}
	if opts.Iterations != 80 {
		t.Errorf("file iterations should overlay, got %d", opts.Iterations)
	}
	if opts.LearningRate != 0 {
		t.Errorf("unset file fields should not overlay, got %v", opts.LearningRate)
	}
	if opts.Mapper == nil || opts.Mapper.Exponent != 1.5 {
		t.Errorf("mapper section should overlay, got %+v", opts.Mapper)
	}
	if opts.Preset != "precise" {
		t.Errorf("preset should overlay, got %q", opts.Preset)
	}
	if !opts.ShowEdges || opts.EdgeThreshold != 0.25 {
		t.Errorf("export section should overlay, got %+v", opts)
	}
}

func TestApplyEmptyFile(t *testing.T) {
	var f File
	opts := pipeline.Options{Strategy: "linear"}
	f.Apply(&opts)

	if opts.Strategy != "linear" {
		t.Errorf("empty file must not overlay, got %q", opts.Strategy)
	}
	if opts.Mapper != nil {
		t.Errorf("empty mapper section must stay nil, got %+v", opts.Mapper)
	}
}

func TestApplyMapperCopies(t *testing.T) {
	f := File{Mapper: similarity.Mapper{Exponent: 3}}

	var opts pipeline.Options
	f.Apply(&opts)
	if opts.Mapper == nil || opts.Mapper.Exponent != 3 {
		t.Fatalf("mapper should overlay, got %+v", opts.Mapper)
	}

	// The overlay holds a copy, so later normalization of the options
	// does not write back into the shared config.
	opts.Mapper.Exponent = 9
	if f.Mapper.Exponent != 3 {
		t.Errorf("config mapper mutated to %v", f.Mapper.Exponent)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestDiscoverEnvVar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("[layout]\nseed = 11\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	t.Setenv(EnvVar, path)

	f, from, err := Discover()
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if from != path {
		t.Errorf("Discover path = %q, want %q", from, path)
	}
	if f.Layout.Seed != 11 {
		t.Errorf("Seed = %d, want 11", f.Layout.Seed)
	}
}

func TestDiscoverEnvVarMissingFile(t *testing.T) {
	t.Setenv(EnvVar, filepath.Join(t.TempDir(), "nope.toml"))
	if _, _, err := Discover(); err == nil {
		t.Error("explicit config path must exist")
	}
}

func TestDiscoverWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("[index]\npreset = \"fast\"\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	t.Setenv(EnvVar, "")
	t.Chdir(dir)

	f, from, err := Discover()
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if from != FileName {
		t.Errorf("Discover path = %q, want %q", from, FileName)
	}
	if f.Index.Preset != "fast" {
		t.Errorf("Preset = %q, want fast", f.Index.Preset)
	}
}

func TestDiscoverNothing(t *testing.T) {
	t.Setenv(EnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	f, from, err := Discover()
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if from != "" {
		t.Errorf("no file should be found, got %q", from)
	}
	if f.Layout != (LayoutSection{}) || f.Index.Preset != "" {
		t.Errorf("missing config should yield a zero File, got %+v", f)
	}
}
