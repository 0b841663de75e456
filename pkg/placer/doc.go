// Package placer assigns user modules to cells of the bisected tile grid.
//
// The grid has Width columns split into two halves of Width/2 columns. The
// left half starts at column 0, the right half at column HalfOffset. A
// module is a rectangle of 1, 2, 4 or 8 columns by 1 or 2 rows, anchored at
// its lowest cell, and must satisfy three rules:
//
//   - every covered cell is free and inside the grid
//   - a two-row module starts on an odd row
//   - a multi-column module does not straddle the half boundary
//
// # Algorithm
//
// [Place] buckets modules by how constrained they are (both coordinates
// fixed, one fixed, none fixed) and places the buckets in that order. Each
// bucket is sorted largest footprint first, then every module takes the
// first suitable site of a row-major scan that visits the left half before
// the right half of each row. Placement is greedy and never backtracks, so
// the result depends only on the input list and its order.
//
// # Usage
//
//	grid, err := placer.NewGrid(32, 16, 16)
//	if err != nil {
//	    return err
//	}
//	p, err := placer.Place(grid, modules, placer.WithLogger(logger))
//	if err != nil {
//	    return err // PLACEMENT_FAILED names the module
//	}
//	frozen := p.Modules() // every module with its resolved anchor
package placer
