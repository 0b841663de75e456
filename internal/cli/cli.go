// Package cli implements the ttlayout command-line interface.
//
// # Commands
//
//   - place: place a module list on the tile grid and print the map
//   - tracks: print the pin tables of every interface boundary
//   - render: draw the floorplan or its instance hierarchy
//   - inspect: browse a placement interactively
//   - serve: expose the floorplanner over HTTP
//   - cache: manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which
// reports every placed module and every computed pin table.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/htfab/tt-multiplexer/pkg/buildinfo"
	"github.com/htfab/tt-multiplexer/pkg/cache"
	"github.com/htfab/tt-multiplexer/pkg/config"
	"github.com/htfab/tt-multiplexer/pkg/pipeline"
	"github.com/htfab/tt-multiplexer/pkg/placer"
)

const (
	// appName is the application name used for directories and display.
	appName = "ttlayout"

	// defaultModulesFile is read when neither --modules nor TT_MODULES is set.
	defaultModulesFile = "modules_placed.yaml"

	// cfgDir is searched for relative input paths missing from the working directory.
	cfgDir = "cfg"
)

// Environment variables supplying input paths.
const (
	envConfig  = "TT_CONFIG"
	envModules = "TT_MODULES"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath  string
	modulesPath string
	cacheURL    string
	noCache     bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "ttlayout floorplans a multiplexed tile grid",
		Long:         `ttlayout places user modules on a bisected tile grid, lays out the routing tracks between modules, multiplexers, spine and controller, and renders the resulting floorplan.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", os.Getenv(envConfig), "configuration file (YAML or TOML, default: embedded sky130)")
	flags.StringVarP(&c.modulesPath, "modules", "m", envOr(envModules, defaultModulesFile), "module list")
	flags.StringVar(&c.cacheURL, "cache-url", "", "cache directory or redis:// URL (default: user cache dir)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the result cache")

	root.AddCommand(c.placeCommand())
	root.AddCommand(c.tracksCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// newRunner creates a pipeline runner backed by the selected cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cc, err := c.openCache(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, c.cacheURL)
}

// loadConfig reads the selected configuration.
func (c *CLI) loadConfig() (*config.Config, error) {
	return pipeline.LoadConfig(resolvePath(c.configPath))
}

// loadInputs reads the selected configuration and module list.
func (c *CLI) loadInputs() (*config.Config, []placer.ModuleSlot, error) {
	cfg, modules, err := pipeline.LoadInputs(resolvePath(c.configPath), resolvePath(c.modulesPath))
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("loaded inputs", "modules", len(modules), "grid", cfg.TT.Grid)
	return cfg, modules, nil
}

// resolvePath returns p, or cfg/p when p is relative, missing and present
// under the cfg directory.
func resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if _, err := os.Stat(p); err == nil {
		return p
	}
	alt := filepath.Join(cfgDir, p)
	if _, err := os.Stat(alt); err == nil {
		return alt
	}
	return p
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
