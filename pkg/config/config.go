// Package config holds the strongly typed floorplanner configuration.
//
// A configuration has two sections: the PDK description (placement site,
// die size and routing track grid per layer) and the tile-grid description
// (grid size, margins, spine layers and user I/O counts). It is populated
// once from a YAML or TOML file, or from the embedded sky130 default, and is
// read-only afterwards.
package config

import (
	"fmt"
	"maps"
	"slices"

	"github.com/htfab/tt-multiplexer/pkg/errors"
)

// DefaultHalfOffset is the column at which the right half of the grid
// starts when tt.grid.half_offset is not configured.
const DefaultHalfOffset = 16

// Axis selects one of the two routing directions of a layer.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Config is the complete floorplanner configuration.
type Config struct {
	PDK PDK `json:"pdk" yaml:"pdk" toml:"pdk"`
	TT  TT  `json:"tt" yaml:"tt" toml:"tt"`
}

// PDK describes the process: site grid, die and routing tracks.
type PDK struct {
	Name   string                 `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Site   Size                   `json:"site" yaml:"site" toml:"site"`
	Die    Size                   `json:"die" yaml:"die" toml:"die"`
	Tracks map[string]LayerTracks `json:"tracks" yaml:"tracks" toml:"tracks"`
}

// Size is a width/height pair in database units.
type Size struct {
	Width  int `json:"width" yaml:"width" toml:"width"`
	Height int `json:"height" yaml:"height" toml:"height"`
}

// LayerTracks holds the track grid of one routing layer in both directions.
type LayerTracks struct {
	X TrackGrid `json:"x" yaml:"x" toml:"x"`
	Y TrackGrid `json:"y" yaml:"y" toml:"y"`
}

// TrackGrid places routing tracks at Offset + k*Pitch.
type TrackGrid struct {
	Offset int `json:"offset" yaml:"offset" toml:"offset"`
	Pitch  int `json:"pitch" yaml:"pitch" toml:"pitch"`
}

// TT describes the multiplexed tile grid.
type TT struct {
	Grid   Grid   `json:"grid" yaml:"grid" toml:"grid"`
	Margin Margin `json:"margin" yaml:"margin" toml:"margin"`
	Spine  Spine  `json:"spine" yaml:"spine" toml:"spine"`
	UIO    UIO    `json:"uio" yaml:"uio" toml:"uio"`
}

// Grid is the logical module grid. X is the total number of columns over
// both halves, Y the number of rows.
type Grid struct {
	X          int `json:"x" yaml:"x" toml:"x"`
	Y          int `json:"y" yaml:"y" toml:"y"`
	HalfOffset int `json:"half_offset,omitempty" yaml:"half_offset,omitempty" toml:"half_offset,omitempty"`
}

// Margin is the spacing between blocks, in sites.
type Margin struct {
	X int `json:"x" yaml:"x" toml:"x"`
	Y int `json:"y" yaml:"y" toml:"y"`
}

// Spine names the routing layers of the vertical and horizontal spines.
type Spine struct {
	VLayer string `json:"vlayer" yaml:"vlayer" toml:"vlayer"`
	HLayer string `json:"hlayer" yaml:"hlayer" toml:"hlayer"`
}

// UIO is the number of user inputs, outputs and bidirectional pins.
type UIO struct {
	I  int `json:"i" yaml:"i" toml:"i"`
	O  int `json:"o" yaml:"o" toml:"o"`
	IO int `json:"io" yaml:"io" toml:"io"`
}

// SetDefaults fills in optional fields.
func (c *Config) SetDefaults() {
	if c.TT.Grid.HalfOffset == 0 {
		c.TT.Grid.HalfOffset = DefaultHalfOffset
	}
}

// Tracks returns the track grid of layer along axis.
func (c *Config) Tracks(layer string, axis Axis) (TrackGrid, error) {
	lt, ok := c.PDK.Tracks[layer]
	if !ok {
		return TrackGrid{}, errors.New(errors.ErrCodeInvalidConfig, "unknown routing layer %q", layer)
	}
	switch axis {
	case AxisX:
		return lt.X, nil
	case AxisY:
		return lt.Y, nil
	}
	return TrackGrid{}, errors.New(errors.ErrCodeInvalidConfig, "unknown axis %q", axis)
}

// Layers returns the configured routing layer names in sorted order.
func (c *Config) Layers() []string {
	return slices.Sorted(maps.Keys(c.PDK.Tracks))
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.PDK.Site.Width <= 0 || c.PDK.Site.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "site size must be positive, got %dx%d", c.PDK.Site.Width, c.PDK.Site.Height)
	}
	if c.PDK.Die.Width <= 0 || c.PDK.Die.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "die size must be positive, got %dx%d", c.PDK.Die.Width, c.PDK.Die.Height)
	}
	for _, name := range c.Layers() {
		if err := errors.ValidateLayerName(name); err != nil {
			return err
		}
		lt := c.PDK.Tracks[name]
		if lt.X.Pitch <= 0 || lt.Y.Pitch <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "layer %q must have a positive track pitch on both axes", name)
		}
	}
	if err := c.TT.Grid.Validate(); err != nil {
		return err
	}
	if c.TT.Margin.X < 0 || c.TT.Margin.Y < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "margins cannot be negative")
	}
	for _, layer := range []string{c.TT.Spine.VLayer, c.TT.Spine.HLayer} {
		if _, ok := c.PDK.Tracks[layer]; !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "spine layer %q has no track definition", layer)
		}
	}
	if c.TT.UIO.I < 2 || c.TT.UIO.O < 0 || c.TT.UIO.IO < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid user I/O counts i=%d o=%d io=%d", c.TT.UIO.I, c.TT.UIO.O, c.TT.UIO.IO)
	}
	return nil
}

// Validate checks the grid shape: X divisible by 4, Y even, and a half
// offset that is a power of two no smaller than X/2.
func (g Grid) Validate() error {
	if g.X <= 0 || g.Y <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid size must be positive, got %dx%d", g.X, g.Y)
	}
	if g.X%4 != 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid X must be divisible by 4")
	}
	if g.Y%2 != 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid Y must be even")
	}
	h := g.HalfOffset
	if h <= 0 || h&(h-1) != 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid half offset must be a power of two, got %d", h)
	}
	if h < g.X/2 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid half offset %d is smaller than half the grid width (%d)", h, g.X/2)
	}
	return nil
}

// String returns a short human-readable summary.
func (c *Config) String() string {
	name := c.PDK.Name
	if name == "" {
		name = "unnamed"
	}
	return fmt.Sprintf("%s: grid %dx%d, die %dx%d", name, c.TT.Grid.X, c.TT.Grid.Y, c.PDK.Die.Width, c.PDK.Die.Height)
}
