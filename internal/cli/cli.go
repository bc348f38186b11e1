// Package cli implements the starmap command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kverran/starmap/pkg/buildinfo"
	"github.com/kverran/starmap/pkg/cache"
	"github.com/kverran/starmap/pkg/config"
	"github.com/kverran/starmap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "starmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.File
}

// New creates a new CLI instance with a default logger and the
// discovered configuration file. A malformed config file fails here
// rather than at first use.
func New(w io.Writer, level log.Level) (*CLI, error) {
	cfg, _, err := config.Discover()
	if err != nil {
		return nil, err
	}
	return &CLI{
		Logger: newLogger(w, level),
		Config: cfg,
	}, nil
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "starmap",
		Short:        "Starmap lays out similarity data as navigable spatial maps",
		Long:         `Starmap is a CLI tool for turning pairwise similarity scores into spatial layouts: it optimizes node positions so distances mirror similarity, indexes the result for spatial queries, and exports it in several formats.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Commands read the logger back out of the context they run under.
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.benchCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache selects the cache backend from the config file. The file
// backend is the default; an unusable cache directory degrades to the
// null cache rather than failing the command.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}

	backend := config.BackendFile
	if c.Config != nil && c.Config.Cache.Backend != "" {
		backend = c.Config.Cache.Backend
	}

	switch backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendMemory:
		return cache.NewMemoryCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.Cache.Redis.Addr,
			Password: c.Config.Cache.Redis.Password,
			DB:       c.Config.Cache.Redis.DB,
		})
	}

	dir, err := c.cachePath()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cachePath returns the file cache directory, honoring the config
// file's override.
func (c *CLI) cachePath() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/starmap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions returns options pre-seeded with pipeline defaults and
// the config file overlay. Commands register flags against the result,
// so flag defaults show the effective values and explicit flags win.
func (c *CLI) pipelineOptions() pipeline.Options {
	opts := pipeline.Options{}
	opts.SetLayoutDefaults()
	opts.SetExportDefaults()
	if c.Config != nil {
		c.Config.Apply(&opts)
	}
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
