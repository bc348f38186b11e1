package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/kverran/starmap/pkg/cache"
	"github.com/kverran/starmap/pkg/config"
	"github.com/kverran/starmap/pkg/pipeline"
)

func TestCacheDirDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(".cache", appName); !strings.HasSuffix(dir, want) {
		t.Errorf("cacheDir() = %q, want suffix %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCachePathConfigOverride(t *testing.T) {
	c := &CLI{Config: &config.File{Cache: config.CacheSection{Dir: "/srv/starmap-cache"}}}

	dir, err := c.cachePath()
	if err != nil {
		t.Fatalf("cachePath() error: %v", err)
	}
	if dir != "/srv/starmap-cache" {
		t.Errorf("cachePath() = %q, want the configured dir", dir)
	}
}

func TestNewCacheBackends(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     *config.File
		noCache bool
		want    string
	}{
		{
			name:    "no-cache flag wins over config",
			cfg:     &config.File{Cache: config.CacheSection{Backend: config.BackendMemory}},
			noCache: true,
			want:    "*cache.NullCache",
		},
		{
			name: "none backend",
			cfg:  &config.File{Cache: config.CacheSection{Backend: config.BackendNone}},
			want: "*cache.NullCache",
		},
		{
			name: "memory backend",
			cfg:  &config.File{Cache: config.CacheSection{Backend: config.BackendMemory}},
			want: "*cache.MemoryCache",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &CLI{Config: tt.cfg}
			store, err := c.newCache(ctx, tt.noCache)
			if err != nil {
				t.Fatalf("newCache() error: %v", err)
			}
			defer store.Close()

			if got := fmt.Sprintf("%T", store); got != tt.want {
				t.Errorf("newCache() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewCacheFileBackend(t *testing.T) {
	c := &CLI{Config: &config.File{Cache: config.CacheSection{Dir: t.TempDir()}}}

	store, err := c.newCache(context.Background(), false)
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*cache.FileCache); !ok {
		t.Errorf("newCache() = %T, want *cache.FileCache", store)
	}
}

func TestPipelineOptionsDefaults(t *testing.T) {
	c := &CLI{}
	opts := c.pipelineOptions()

	if opts.Strategy != string(pipeline.DefaultStrategy) {
		t.Errorf("Strategy = %q, want default", opts.Strategy)
	}
	if opts.Iterations != pipeline.DefaultIterations {
		t.Errorf("Iterations = %d, want %d", opts.Iterations, pipeline.DefaultIterations)
	}
	if opts.Width != pipeline.DefaultWidth {
		t.Errorf("Width = %g, want %g", opts.Width, pipeline.DefaultWidth)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != pipeline.FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
}

func TestPipelineOptionsConfigOverlay(t *testing.T) {
	c := &CLI{Config: &config.File{
		Layout: config.LayoutSection{Strategy: "spring", Iterations: 200},
		Export: config.ExportSection{Formats: []string{"png", "dot"}},
	}}
	opts := c.pipelineOptions()

	if opts.Strategy != "spring" {
		t.Errorf("Strategy = %q, want config value", opts.Strategy)
	}
	if opts.Iterations != 200 {
		t.Errorf("Iterations = %d, want config value 200", opts.Iterations)
	}
	if opts.Width != pipeline.DefaultWidth {
		t.Errorf("Width = %g, config overlay should keep untouched defaults", opts.Width)
	}
	if !slices.Equal(opts.Formats, []string{"png", "dot"}) {
		t.Errorf("Formats = %v, want config formats", opts.Formats)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"png", []string{"png"}},
		{"svg,png,dot", []string{"svg", "png", "dot"}},
	}

	for _, tt := range tests {
		if got := parseFormats(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRootCommand(t *testing.T) {
	c := &CLI{Logger: newLogger(io.Discard, LogInfo)}
	root := c.RootCommand()

	if root.Use != appName {
		t.Errorf("Use = %q, want %q", root.Use, appName)
	}

	registered := make(map[string]bool)
	for _, cmd := range root.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range []string{"layout", "query", "bench", "generate", "export", "cache", "completion"} {
		if !registered[name] {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
