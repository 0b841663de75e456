// Package pipeline runs the complete floorplanning flow for the CLI and the
// HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Place: assign every module of the module list a grid cell
//  2. Layout: compute global dimensions, pin tables and the element tree
//  3. Render: generate output artifacts (SVG, PNG, PDF, JSON)
//
// Placement results and rendered artifacts are cached by content hash, so
// running the same configuration and module list twice only pays for the
// layout stage.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Config:  cfg,
//	    Modules: modules,
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/htfab/tt-multiplexer/pkg/cache"
	"github.com/htfab/tt-multiplexer/pkg/config"
	"github.com/htfab/tt-multiplexer/pkg/errors"
	"github.com/htfab/tt-multiplexer/pkg/floorplan"
	"github.com/htfab/tt-multiplexer/pkg/placer"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// DefaultPNGZoom scales the floorplan when converting to PNG.
const DefaultPNGZoom = 2.0

// Options contains all configuration for a pipeline run.
type Options struct {
	// Config is the floorplanner configuration. Nil uses the embedded
	// sky130 default.
	Config *config.Config `json:"-"`

	// Modules is the module list to place.
	Modules []placer.ModuleSlot `json:"modules"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Hier    bool     `json:"hier,omitempty"`    // render the instance hierarchy instead of the die
	Labels  bool     `json:"labels,omitempty"`  // label element rectangles
	NoPins  bool     `json:"no_pins,omitempty"` // omit pin bars
	Refresh bool     `json:"refresh,omitempty"` // ignore cached results

	Logger *log.Logger `json:"-"`
}

// SetDefaults fills in the configuration, output format and logger.
func (o *Options) SetDefaults() {
	if o.Config == nil {
		o.Config = config.Default()
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the output formats. The configuration and module list are
// validated by the stages that consume them.
func (o *Options) Validate() error {
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if !o.Hier {
		for _, f := range o.Formats {
			if f == FormatDOT {
				return errors.New(errors.ErrCodeInvalidFormat, "format %q requires the hierarchy view", f)
			}
		}
	}
	return nil
}

// ArtifactKeyOpts returns cache key options for rendering format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Hier:   o.Hier,
		Labels: o.Labels,
		NoPins: o.NoPins,
	}
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Summary is the serialisable outcome of a run: the frozen module table,
// the layout with its pin tables and every macro instance.
type Summary struct {
	Modules []placer.ModuleSlot       `json:"modules"`
	Layout  *floorplan.Layout         `json:"layout"`
	Macros  []floorplan.MacroInstance `json:"macros"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Floorplan is the computed floorplan.
	Floorplan *floorplan.Floorplan

	// Summary is what the json format and the HTTP API return.
	Summary Summary

	// Hash is the content hash of Summary, used for artifact cache keys.
	Hash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Modules    int
	FreeCells  int
	Macros     int
	PlaceTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	PlaceHit  bool // placement restored from a cached frozen module list
	RenderHit bool // all artifacts came from cache
}

func (s Stats) String() string {
	return fmt.Sprintf("%d modules, %d free cells, %d macros", s.Modules, s.FreeCells, s.Macros)
}
