// Package geometry provides the small amount of 2D arithmetic shared by the
// overlay window and the pointer gesture controller.
package geometry

import "fmt"

// Point is a position in screen or surface coordinates.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Round returns the point with both coordinates rounded to whole pixels.
func (p Point) Round() (int, int) {
	return roundInt(p.X), roundInt(p.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// CenteredTop returns the origin that centres a window of the given width
// horizontally on a screen and places it offset pixels below the top edge.
// A window wider than the screen is pinned to the left edge.
func CenteredTop(screenWidth, windowWidth, offset int) Point {
	x := (screenWidth - windowWidth) / 2
	if x < 0 {
		x = 0
	}
	if offset < 0 {
		offset = 0
	}
	return Point{X: float64(x), Y: float64(offset)}
}

func roundInt(f float64) int {
	if f < 0 {
		return -int(-f + 0.5)
	}
	return int(f + 0.5)
}
