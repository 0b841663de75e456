// Package floorplan turns a configuration and a module placement into the
// physical floorplan of the multiplexed tile grid.
//
// # Layout
//
// [NewLayout] derives everything that does not depend on the placed
// modules: the global dimensions of blocks, row muxes, branches, the
// controller and the top area, and the pin tables of the four physical
// interfaces:
//
//   - user block ↔ row mux, on the vertical spine layer
//   - row mux ↔ vertical spine, on the horizontal spine layer
//   - vertical spine ↔ controller
//   - controller ↔ I/O pads
//
// Each interface is declared twice, once per side, as a [tracks.PinSpec].
// Both declarations must expand to the same number of slots before any
// tracks are allocated.
//
// # Element tree
//
// [New] adds the placement and builds the element tree: the die holds the
// top area, which holds one branch per grid half-row and the controller.
// A branch holds its row mux and the blocks of the modules anchored in its
// two grid rows. Odd branches are mirrored ([FN]) onto the right side and
// blocks of the upper row are flipped ([FS]) to face the mux.
//
// [Element.SubMacros] flattens the tree into placed macro instances with
// escaped hierarchical instance names, composing orientations on the way
// down.
package floorplan
