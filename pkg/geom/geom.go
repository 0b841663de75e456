package geom

import "fmt"

// Point is an integer coordinate pair.
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// Add returns the component-wise sum of p and q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the component-wise difference p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

func (p Point) String() string { return fmt.Sprintf("(%d, %d)", p.X, p.Y) }

// Rect is an axis-aligned rectangle from (X0, Y0) to (X1, Y1).
type Rect struct {
	X0, Y0 int
	X1, Y1 int
}

// RectWH builds a rectangle from its lower-left corner and size.
func RectWH(x, y, w, h int) Rect { return Rect{X0: x, Y0: y, X1: x + w, Y1: y + h} }

// LL returns the lower-left corner.
func (r Rect) LL() Point { return Point{r.X0, r.Y0} }

// LR returns the lower-right corner.
func (r Rect) LR() Point { return Point{r.X1, r.Y0} }

// UL returns the upper-left corner.
func (r Rect) UL() Point { return Point{r.X0, r.Y1} }

// UR returns the upper-right corner.
func (r Rect) UR() Point { return Point{r.X1, r.Y1} }

// W returns the horizontal span.
func (r Rect) W() int { return r.X1 - r.X0 }

// H returns the vertical span.
func (r Rect) H() int { return r.Y1 - r.Y0 }

// C returns the center, rounded down to the unit grid.
func (r Rect) C() Point {
	return Point{floorDiv(r.X0+r.X1, 2), floorDiv(r.Y0+r.Y1, 2)}
}

// Move returns r translated by (dx, dy).
func (r Rect) Move(dx, dy int) Rect {
	return Rect{X0: r.X0 + dx, Y0: r.Y0 + dy, X1: r.X1 + dx, Y1: r.Y1 + dy}
}

// SDim is a length expressed both in placement sites and in units.
type SDim struct {
	Sites int `json:"sites" yaml:"sites"`
	Units int `json:"units" yaml:"units"`
}

// XDim returns a horizontal dimension of n sites of the given site width.
func XDim(siteWidth, n int) SDim { return SDim{Sites: n, Units: n * siteWidth} }

// YDim returns a vertical dimension of n sites of the given site height.
func YDim(siteHeight, n int) SDim { return SDim{Sites: n, Units: n * siteHeight} }

// FloorDiv divides rounding toward negative infinity.
func FloorDiv(a, b int) int { return floorDiv(a, b) }

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
