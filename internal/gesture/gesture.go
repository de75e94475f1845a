// Package gesture interprets raw pointer events on the borderless overlay
// window. The window has no title bar, so this package is what makes it
// movable (modifier + left drag) and gives it a context menu (right click).
//
// The transition logic lives in Step, a pure function over State, so it can
// be exercised without a window system. Controller adds the mutable state and
// performs the resulting effects against a Window and a MenuPresenter.
package gesture

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/hitotop/internal/geometry"
)

// EventType is the kind of a pointer event.
type EventType int

const (
	// EventOther is any event the controller does not interpret.
	EventOther EventType = iota
	// EventLeftDown is a primary button press.
	EventLeftDown
	// EventLeftDragged is pointer motion while the primary button is held.
	EventLeftDragged
	// EventLeftUp is a primary button release.
	EventLeftUp
	// EventRightDown is a secondary button press.
	EventRightDown
)

// String returns the string representation of EventType.
func (t EventType) String() string {
	switch t {
	case EventLeftDown:
		return "left-down"
	case EventLeftDragged:
		return "left-dragged"
	case EventLeftUp:
		return "left-up"
	case EventRightDown:
		return "right-down"
	default:
		return "other"
	}
}

// Modifiers is a bit set of keyboard modifiers held during an event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// Has reports whether all bits of m are set.
func (mods Modifiers) Has(m Modifiers) bool {
	return m != 0 && mods&m == m
}

// ParseModifier converts a config name ("ctrl", "alt", "shift", "super")
// into a modifier bit.
func ParseModifier(name string) (Modifiers, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ctrl", "control":
		return ModCtrl, nil
	case "alt":
		return ModAlt, nil
	case "shift":
		return ModShift, nil
	case "super", "meta", "cmd", "command":
		return ModSuper, nil
	default:
		return 0, fmt.Errorf("unknown modifier %q", name)
	}
}

// Event is a pointer event as seen by the controller.
type Event struct {
	Type      EventType
	Modifiers Modifiers

	// Screen is the pointer position in screen coordinates. Drag deltas are
	// computed from it so that moving the window does not feed back into
	// the pointer position.
	Screen geometry.Point

	// Local is the pointer position relative to the window surface.
	Local geometry.Point
}

// ReleasePolicy decides what happens to drag events that arrive after the
// drag modifier has been released while the button is still held.
type ReleasePolicy int

const (
	// PolicyTrack keeps following the pointer until the button is released.
	PolicyTrack ReleasePolicy = iota
	// PolicyHold ignores (forwards) drag events that lack the modifier. The
	// drag stays anchored and resumes if the modifier is pressed again.
	PolicyHold
)

// ParseReleasePolicy converts a config name ("track" or "hold") into a policy.
func ParseReleasePolicy(name string) (ReleasePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "track":
		return PolicyTrack, nil
	case "hold":
		return PolicyHold, nil
	default:
		return PolicyTrack, fmt.Errorf("unknown release policy %q", name)
	}
}

// Policy configures Step.
type Policy struct {
	// DragModifier must be held on the left press that starts a drag.
	DragModifier Modifiers
	Release      ReleasePolicy
}

// DefaultPolicy drags with Ctrl and keeps tracking after the modifier is
// released.
func DefaultPolicy() Policy {
	return Policy{DragModifier: ModCtrl, Release: PolicyTrack}
}

// State is the gesture state. The zero value is idle.
type State struct {
	AnchorPointer *geometry.Point
	AnchorOrigin  *geometry.Point
}

// Dragging reports whether a drag is in progress.
func (s State) Dragging() bool {
	return s.AnchorPointer != nil && s.AnchorOrigin != nil
}

// Effect is a side effect requested by Step. It is nil, MoveWindow or
// ShowContextMenu.
type Effect interface {
	isEffect()
}

// MoveWindow asks the display to place the window origin at Origin.
type MoveWindow struct {
	Origin geometry.Point
}

// ShowContextMenu asks the display to pop up the context menu at At,
// relative to the window surface.
type ShowContextMenu struct {
	At geometry.Point
}

func (MoveWindow) isEffect()      {}
func (ShowContextMenu) isEffect() {}

// Result is the outcome of feeding one event to Step.
type Result struct {
	// Consumed is true when the event must not reach default dispatch.
	Consumed bool
	Effect   Effect
}
