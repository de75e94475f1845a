package gesture

import "github.com/jmylchreest/hitotop/internal/geometry"

// Step applies ev to state and returns the next state and what to do with
// the event. origin is the current window origin, captured as the drag
// anchor on a modifier-qualified left press.
func Step(state State, ev Event, origin geometry.Point, policy Policy) (State, Result) {
	switch ev.Type {
	case EventLeftDown:
		if !ev.Modifiers.Has(policy.DragModifier) {
			return state, Result{}
		}
		pointer := ev.Screen
		anchor := origin
		return State{AnchorPointer: &pointer, AnchorOrigin: &anchor}, Result{Consumed: true}

	case EventLeftDragged:
		if !state.Dragging() {
			return state, Result{}
		}
		if policy.Release == PolicyHold && !ev.Modifiers.Has(policy.DragModifier) {
			return state, Result{}
		}
		delta := ev.Screen.Sub(*state.AnchorPointer)
		return state, Result{
			Consumed: true,
			Effect:   MoveWindow{Origin: state.AnchorOrigin.Add(delta)},
		}

	case EventLeftUp:
		return State{}, Result{}

	case EventRightDown:
		return state, Result{
			Consumed: true,
			Effect:   ShowContextMenu{At: ev.Local},
		}
	}

	return state, Result{}
}
