package display

import "github.com/jmylchreest/hitotop/internal/geometry"

// Size is a width and height in pixels.
type Size struct {
	Width  int
	Height int
}

// InitialOrigin picks where the overlay first appears. A remembered
// position wins when it still lands on screen; otherwise the window is
// centred horizontally, topOffset pixels below the top edge.
func InitialOrigin(saved *geometry.Point, screen, window Size, topOffset int) geometry.Point {
	if saved != nil && Visible(*saved, screen, window) {
		return *saved
	}
	return geometry.CenteredTop(screen.Width, window.Width, topOffset)
}

// Visible reports whether a window at origin overlaps the screen at all.
// An unknown screen size (zero) accepts every origin.
func Visible(origin geometry.Point, screen, window Size) bool {
	if screen.Width <= 0 || screen.Height <= 0 {
		return true
	}
	x, y := origin.Round()
	return x+window.Width > 0 && y+window.Height > 0 &&
		x < screen.Width && y < screen.Height
}

// margins converts an origin into left and top layer-shell margins.
func margins(origin geometry.Point) (left, top int) {
	return origin.Round()
}

// surfaceTracker separates the origin last requested through the margins
// from the origin the pointer coordinates are relative to. A margin change
// reaches the compositor with the next frame commit; until then events are
// still relative to the previous position.
//
// The promotion happens after GTK paints, which is when the commit is sent.
// The compositor may apply it slightly later, so a motion event can still
// be off by one step; because screen positions derive from the applied
// origin rather than the requested one, that error is corrected on the
// next event instead of feeding into every following delta.
type surfaceTracker struct {
	applied    geometry.Point
	pending    geometry.Point
	hasPending bool
}

// moved records a requested origin.
func (t *surfaceTracker) moved(origin geometry.Point) {
	t.pending = origin
	t.hasPending = true
}

// presented marks the last requested origin as committed.
func (t *surfaceTracker) presented() {
	if t.hasPending {
		t.applied = t.pending
		t.hasPending = false
	}
}

