package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/htfab/tt-multiplexer/pkg/cache"
	"github.com/htfab/tt-multiplexer/pkg/config"
	"github.com/htfab/tt-multiplexer/pkg/floorplan"
	"github.com/htfab/tt-multiplexer/pkg/observability"
	"github.com/htfab/tt-multiplexer/pkg/placer"
)

// Key types reported to cache hooks.
const (
	keyTypeFloorplan = "floorplan"
	keyTypeArtifact  = "artifact"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete place → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}
	hooks := observability.Pipeline()

	// Stage 1: Place
	placeStart := time.Now()
	hooks.OnPlaceStart(ctx, len(opts.Modules))
	p, placeHit, err := r.PlaceWithCacheInfo(ctx, opts)
	if err != nil {
		hooks.OnPlaceComplete(ctx, 0, 0, false, time.Since(placeStart), err)
		return nil, fmt.Errorf("place: %w", err)
	}
	result.Stats.PlaceTime = time.Since(placeStart)
	hooks.OnPlaceComplete(ctx, p.Len(), p.FreeCount(), placeHit, result.Stats.PlaceTime, nil)
	result.Stats.Modules = p.Len()
	result.Stats.FreeCells = p.FreeCount()
	result.CacheInfo.PlaceHit = placeHit

	r.Logger.Info("placed modules",
		"modules", p.Len(),
		"free", p.FreeCount(),
		"cached", placeHit,
		"duration", result.Stats.PlaceTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx)
	fp, macros, err := buildFloorplan(opts, p)
	if err != nil {
		hooks.OnLayoutComplete(ctx, 0, time.Since(layoutStart), err)
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Floorplan = fp
	result.Summary = Summary{Modules: p.Modules(), Layout: fp.Layout, Macros: macros}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Macros = len(macros)
	hooks.OnLayoutComplete(ctx, len(macros), result.Stats.LayoutTime, nil)

	if result.Hash, err = cache.HashJSON(result.Summary); err != nil {
		return nil, fmt.Errorf("hash summary: %w", err)
	}

	r.Logger.Info("computed layout",
		"macros", len(macros),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result, opts)
	if err != nil {
		hooks.OnRenderComplete(ctx, opts.Formats, false, time.Since(renderStart), err)
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, renderHit, result.Stats.RenderTime, nil)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// PlaceWithCacheInfo places opts.Modules on the configured grid. A cached
// frozen module list for the same inputs is placed instead when available.
func (r *Runner) PlaceWithCacheInfo(ctx context.Context, opts Options) (*placer.Placement, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()

	grid, err := placer.GridFromConfig(opts.Config.TT.Grid)
	if err != nil {
		return nil, false, err
	}
	cacheKey, err := r.floorplanKey(opts.Config, opts.Modules)
	if err != nil {
		return nil, false, err
	}

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var frozen []placer.ModuleSlot
			if err := json.Unmarshal(data, &frozen); err == nil {
				if p, err := placer.Place(grid, frozen, placer.WithLogger(opts.Logger)); err == nil {
					observability.Cache().OnCacheHit(ctx, keyTypeFloorplan)
					return p, true, nil
				}
			}
			// A stale entry falls through to a fresh placement.
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeFloorplan)
	}

	p, err := placer.Place(grid, opts.Modules, placer.WithLogger(opts.Logger))
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(p.Modules()); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.FloorplanTTL) == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeFloorplan, len(data))
		}
	}
	return p, false, nil
}

// Place is a convenience wrapper that calls PlaceWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Place(ctx context.Context, opts Options) (*placer.Placement, error) {
	p, _, err := r.PlaceWithCacheInfo(ctx, opts)
	return p, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *Result, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte)
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(res.Hash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit && !opts.Refresh {
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	opts.Formats = missing
	rendered, err := Render(ctx, res, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(res.Hash, opts.ArtifactKeyOpts(format))
		if r.Cache.Set(ctx, key, data, cache.ArtifactTTL) == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
		artifacts[format] = data
	}
	return artifacts, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func buildFloorplan(opts Options, p *placer.Placement) (*floorplan.Floorplan, []floorplan.MacroInstance, error) {
	fp, err := floorplan.New(opts.Config, p, floorplan.WithLogger(opts.Logger))
	if err != nil {
		return nil, nil, err
	}
	macros, err := fp.Macros()
	if err != nil {
		return nil, nil, err
	}
	return fp, macros, nil
}

func (r *Runner) floorplanKey(cfg *config.Config, modules []placer.ModuleSlot) (string, error) {
	cfgHash, err := cache.HashJSON(cfg)
	if err != nil {
		return "", fmt.Errorf("hash config: %w", err)
	}
	modHash, err := cache.HashJSON(modules)
	if err != nil {
		return "", fmt.Errorf("hash modules: %w", err)
	}
	return r.Keyer.FloorplanKey(cfgHash, modHash), nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
