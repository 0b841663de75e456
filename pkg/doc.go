// Package pkg provides the libraries behind ttlayout, the Tiny Tapeout
// multiplexer floorplanner.
//
// # Overview
//
// A Tiny Tapeout chip shares one die between many small user designs. The
// designs sit in a grid of tiles around a set of multiplexers, and every
// tile reaches its multiplexer over a bundle of vertical tracks. ttlayout
// decides where each design goes and derives the complete physical
// floorplan from that decision.
//
// # Architecture
//
// The data flow through ttlayout:
//
//	config.yaml + modules.yaml
//	         ↓
//	    [placer] package (assign every module a rectangle of tiles)
//	         ↓
//	    [tracks] package (distribute pins over the routing tracks)
//	         ↓
//	    [floorplan] package (mux, controller and pad geometry, macro instances)
//	         ↓
//	    [render] packages (SVG, PNG, PDF, JSON, Graphviz)
//
// [pipeline] runs those stages with [cache] lookups in between and is shared
// by every CLI command and the HTTP server. [archive] keeps a history of
// placements in a directory or MongoDB.
//
// # Quick Start
//
//	cfg, modules, _ := pipeline.LoadInputs("config.yaml", "modules.yaml")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Config:  cfg,
//	    Modules: modules,
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	os.WriteFile("floorplan.svg", res.Artifacts[pipeline.FormatSVG], 0o644)
//
// # Main Packages
//
// [geom] - Integer geometry in database units, site-snapped dimensions and
// floor division helpers.
//
// [config] - The YAML chip configuration (grid, tile sizes, pin tables,
// pad ring) with built-in sky130 defaults.
//
// [placer] - The tile grid and the first-fit placement of fixed, partially
// fixed and free modules.
//
// [tracks] - Pin specifications and their distribution over the available
// tracks of a block.
//
// [floorplan] - The global extents, the per-block pin layouts, element
// orientation and the final macro instance list.
//
// [render/svg] and [render/hier] draw the floorplan and the macro hierarchy;
// [render] converts SVG to PNG and PDF.
//
// [cache] - File, Redis and null caches with content-hashed keys.
//
// [observability] - Hooks for pipeline, cache and server metrics.
//
// [errors] - Coded errors shared by every package.
package pkg
