package display

import (
	"errors"
	"testing"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/hitotop/internal/gesture"
	"github.com/jmylchreest/hitotop/internal/geometry"
	"github.com/jmylchreest/hitotop/internal/menu"
)

func ptr(p geometry.Point) *geometry.Point { return &p }

func TestInitialOrigin(t *testing.T) {
	screen := Size{Width: 1920, Height: 1080}
	window := Size{Width: 800, Height: 40}

	tests := []struct {
		name   string
		saved  *geometry.Point
		screen Size
		want   geometry.Point
	}{
		{"no saved position", nil, screen, geometry.Pt(560, 10)},
		{"saved on screen", ptr(geometry.Pt(100, 500)), screen, geometry.Pt(100, 500)},
		{"saved partly off screen", ptr(geometry.Pt(-700, 0)), screen, geometry.Pt(-700, 0)},
		{"saved fully off screen", ptr(geometry.Pt(2500, 10)), screen, geometry.Pt(560, 10)},
		{"saved above screen", ptr(geometry.Pt(0, -40)), screen, geometry.Pt(560, 10)},
		{"unknown screen keeps saved", ptr(geometry.Pt(5000, 5000)), Size{}, geometry.Pt(5000, 5000)},
		{"unknown screen without saved", nil, Size{}, geometry.Pt(0, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InitialOrigin(tt.saved, tt.screen, window, 10))
		})
	}
}

func TestMargins(t *testing.T) {
	left, top := margins(geometry.Pt(12.6, 3.4))
	assert.Equal(t, 13, left)
	assert.Equal(t, 3, top)
}

func TestToGestureEvent(t *testing.T) {
	origin := geometry.Pt(100, 20)

	tests := []struct {
		name   string
		sample pointerSample
		want   gesture.EventType
	}{
		{"left press", pointerSample{kind: gdk.ButtonPress, button: 1}, gesture.EventLeftDown},
		{"right press", pointerSample{kind: gdk.ButtonPress, button: 3}, gesture.EventRightDown},
		{"middle press", pointerSample{kind: gdk.ButtonPress, button: 2}, gesture.EventOther},
		{"left release", pointerSample{kind: gdk.ButtonRelease, button: 1}, gesture.EventLeftUp},
		{"right release", pointerSample{kind: gdk.ButtonRelease, button: 3}, gesture.EventOther},
		{"drag", pointerSample{kind: gdk.MotionNotify, state: gdk.Button1Mask}, gesture.EventLeftDragged},
		{"hover", pointerSample{kind: gdk.MotionNotify}, gesture.EventOther},
		{"scroll", pointerSample{kind: gdk.Scroll}, gesture.EventOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.sample.local = geometry.Pt(5, 6)
			ev := toGestureEvent(tt.sample, origin)
			assert.Equal(t, tt.want, ev.Type)
			assert.Equal(t, geometry.Pt(5, 6), ev.Local)
			assert.Equal(t, geometry.Pt(105, 26), ev.Screen)
		})
	}
}

// laggingSurface moves like the overlay: margins are requested at once but
// pointer coordinates stay relative to the old position until a frame is
// presented.
type laggingSurface struct {
	origin  geometry.Point
	surface surfaceTracker
}

func (w *laggingSurface) Origin() geometry.Point { return w.origin }

func (w *laggingSurface) Move(origin geometry.Point) {
	w.origin = origin
	w.surface.moved(origin)
}

// pointer builds the sample a compositor reports for a pointer at screen.
func (w *laggingSurface) pointer(kind gdk.EventType, screen geometry.Point) pointerSample {
	s := pointerSample{kind: kind, state: gdk.ControlMask, local: screen.Sub(w.surface.applied)}
	switch kind {
	case gdk.ButtonPress, gdk.ButtonRelease:
		s.button = buttonPrimary
	case gdk.MotionNotify:
		s.state |= gdk.Button1Mask
	}
	return s
}

func TestDragFollowsPointerWhileCommitLags(t *testing.T) {
	w := &laggingSurface{}
	w.Move(geometry.Pt(100, 100))
	w.surface.presented()

	c := gesture.NewController(w, nil, gesture.DefaultPolicy(), nil)
	feed := func(kind gdk.EventType, screen geometry.Point) {
		c.Handle(toGestureEvent(w.pointer(kind, screen), w.surface.applied))
	}

	feed(gdk.ButtonPress, geometry.Pt(110, 110))
	feed(gdk.MotionNotify, geometry.Pt(130, 110))
	assert.Equal(t, geometry.Pt(120, 100), w.Origin())

	// No frame yet: this event is still relative to the surface at 100,100.
	feed(gdk.MotionNotify, geometry.Pt(150, 110))
	assert.Equal(t, geometry.Pt(140, 100), w.Origin(), "no overshoot before the commit lands")

	w.surface.presented()
	feed(gdk.MotionNotify, geometry.Pt(160, 115))
	assert.Equal(t, geometry.Pt(150, 105), w.Origin())

	w.surface.presented()
	feed(gdk.ButtonRelease, geometry.Pt(160, 115))
	assert.Equal(t, geometry.Pt(150, 105), w.Origin())
}

func TestSurfaceTracker(t *testing.T) {
	var tr surfaceTracker
	tr.moved(geometry.Pt(10, 20))
	assert.Equal(t, geometry.Point{}, tr.applied, "not applied before a frame")

	tr.presented()
	assert.Equal(t, geometry.Pt(10, 20), tr.applied)

	tr.presented()
	assert.Equal(t, geometry.Pt(10, 20), tr.applied, "idle frames keep the origin")
}

func TestModifiersFromState(t *testing.T) {
	tests := []struct {
		state gdk.ModifierType
		want  gesture.Modifiers
	}{
		{0, 0},
		{gdk.ControlMask, gesture.ModCtrl},
		{gdk.ShiftMask | gdk.AltMask, gesture.ModShift | gesture.ModAlt},
		{gdk.SuperMask, gesture.ModSuper},
		{gdk.MetaMask, gesture.ModSuper},
		{gdk.Button1Mask | gdk.LockMask, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, modifiersFromState(tt.state), "state %v", tt.state)
	}
}

func TestMenuSections(t *testing.T) {
	sections := menuSections(menu.Items())
	require.Len(t, sections, 2)
	assert.Equal(t, menu.ActionRefresh, sections[0][0].Action)
	assert.Equal(t, menu.ActionCopy, sections[0][1].Action)
	assert.Equal(t, menu.ActionQuit, sections[1][0].Action)

	items := []menu.Item{{Separator: true}, {ID: 1, Action: menu.ActionQuit}, {Separator: true}}
	assert.Len(t, menuSections(items), 1, "leading and trailing separators add no sections")

	assert.Equal(t, "overlay.copy", detailedAction(menu.ActionCopy))
}

func TestDisplayError(t *testing.T) {
	cause := errors.New("unknown modifier")
	err := &DisplayError{Message: "invalid gesture settings", Cause: cause}

	assert.Equal(t, "invalid gesture settings: unknown modifier", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "no display available", (&DisplayError{Message: "no display available"}).Error())
}
