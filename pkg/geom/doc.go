// Package geom provides the integer geometry primitives shared by the
// floorplanner: points, axis-aligned rectangles and site-based dimensions.
//
// All coordinates are database units of the target PDK (nanometres for
// sky130). Dimensions that must land on the standard-cell site grid are
// carried as [SDim], which keeps both the site count and the resulting
// length so that later arithmetic never has to re-derive one from the other.
package geom
