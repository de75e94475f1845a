package display

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"

	"github.com/jmylchreest/hitotop/internal/gesture"
	"github.com/jmylchreest/hitotop/internal/geometry"
)

const (
	buttonPrimary   = 1
	buttonSecondary = 3
)

// pointerSample is the subset of a gdk event the gesture controller needs.
type pointerSample struct {
	kind   gdk.EventType
	button uint
	state  gdk.ModifierType
	local  geometry.Point
}

// samplePointer extracts a pointerSample from event. It returns false for
// events without a position, such as key events.
func samplePointer(event gdk.Eventer) (pointerSample, bool) {
	base := gdk.BaseEvent(event)
	if base == nil {
		return pointerSample{}, false
	}
	x, y, ok := base.Position()
	if !ok {
		return pointerSample{}, false
	}
	s := pointerSample{
		kind:  base.EventType(),
		state: base.ModifierState(),
		local: geometry.Pt(x, y),
	}
	if btn, ok := event.(*gdk.ButtonEvent); ok {
		s.button = btn.Button()
	}
	return s, true
}

// toGestureEvent classifies s. Window-system coordinates are relative to
// the surface, so the screen position is rebuilt from surfaceOrigin, the
// origin the compositor last placed the surface at (see surfaceTracker).
func toGestureEvent(s pointerSample, surfaceOrigin geometry.Point) gesture.Event {
	ev := gesture.Event{
		Type:      gesture.EventOther,
		Modifiers: modifiersFromState(s.state),
		Local:     s.local,
		Screen:    surfaceOrigin.Add(s.local),
	}

	switch s.kind {
	case gdk.ButtonPress:
		switch s.button {
		case buttonPrimary:
			ev.Type = gesture.EventLeftDown
		case buttonSecondary:
			ev.Type = gesture.EventRightDown
		}
	case gdk.ButtonRelease:
		if s.button == buttonPrimary {
			ev.Type = gesture.EventLeftUp
		}
	case gdk.MotionNotify:
		if s.state&gdk.Button1Mask != 0 {
			ev.Type = gesture.EventLeftDragged
		}
	}
	return ev
}

func modifiersFromState(state gdk.ModifierType) gesture.Modifiers {
	var mods gesture.Modifiers
	if state&gdk.ShiftMask != 0 {
		mods |= gesture.ModShift
	}
	if state&gdk.ControlMask != 0 {
		mods |= gesture.ModCtrl
	}
	if state&gdk.AltMask != 0 {
		mods |= gesture.ModAlt
	}
	if state&(gdk.SuperMask|gdk.MetaMask) != 0 {
		mods |= gesture.ModSuper
	}
	return mods
}
