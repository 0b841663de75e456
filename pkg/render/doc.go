// Package render converts floorplan drawings between output formats.
//
// The drawings themselves are produced by two subpackages:
//
//   - [svg] draws the physical floorplan: element rectangles and pins
//   - [hier] draws the macro instance hierarchy with Graphviz
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg):
//
//	out := svg.Render(fp)
//	pdf, err := render.ToPDF(ctx, out)
//	png, err := render.ToPNG(ctx, out, 0.5)
package render
