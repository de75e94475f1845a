package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/hitotop/internal/geometry"
)

func press(mods Modifiers, x, y float64) Event {
	return Event{Type: EventLeftDown, Modifiers: mods, Screen: geometry.Pt(x, y), Local: geometry.Pt(x, y)}
}

func drag(mods Modifiers, x, y float64) Event {
	return Event{Type: EventLeftDragged, Modifiers: mods, Screen: geometry.Pt(x, y)}
}

func release(x, y float64) Event {
	return Event{Type: EventLeftUp, Screen: geometry.Pt(x, y)}
}

func TestStep_ModifiedPressStartsDrag(t *testing.T) {
	origin := geometry.Pt(100, 200)

	next, res := Step(State{}, press(ModCtrl, 5, 6), origin, DefaultPolicy())

	assert.True(t, res.Consumed)
	assert.Nil(t, res.Effect)
	require.True(t, next.Dragging())
	assert.Equal(t, geometry.Pt(5, 6), *next.AnchorPointer)
	assert.Equal(t, origin, *next.AnchorOrigin)
}

func TestStep_PlainPressIsForwarded(t *testing.T) {
	for _, mods := range []Modifiers{0, ModShift, ModAlt, ModSuper} {
		next, res := Step(State{}, press(mods, 5, 6), geometry.Pt(1, 1), DefaultPolicy())

		assert.False(t, res.Consumed, "mods=%b", mods)
		assert.Nil(t, res.Effect)
		assert.False(t, next.Dragging())
	}
}

func TestStep_ExtraModifiersStillStartDrag(t *testing.T) {
	next, res := Step(State{}, press(ModCtrl|ModShift, 0, 0), geometry.Pt(0, 0), DefaultPolicy())

	assert.True(t, res.Consumed)
	assert.True(t, next.Dragging())
}

func TestStep_DragMovesByDelta(t *testing.T) {
	policy := DefaultPolicy()
	origin := geometry.Pt(100, 200)

	state, _ := Step(State{}, press(ModCtrl, 10, 10), origin, policy)

	// The window origin reported while dragging must not affect the result:
	// it is computed from the anchors only.
	state, res := Step(state, drag(ModCtrl, 25, 4), geometry.Pt(999, 999), policy)

	assert.True(t, res.Consumed)
	assert.Equal(t, MoveWindow{Origin: geometry.Pt(115, 194)}, res.Effect)
	assert.True(t, state.Dragging())
}

func TestStep_DragWithoutPressIsForwarded(t *testing.T) {
	next, res := Step(State{}, drag(ModCtrl, 25, 4), geometry.Pt(0, 0), DefaultPolicy())

	assert.False(t, res.Consumed)
	assert.Nil(t, res.Effect)
	assert.False(t, next.Dragging())
}

func TestStep_ModifierReleasedWhileDragging(t *testing.T) {
	origin := geometry.Pt(0, 0)

	t.Run("track keeps following", func(t *testing.T) {
		policy := Policy{DragModifier: ModCtrl, Release: PolicyTrack}
		state, _ := Step(State{}, press(ModCtrl, 0, 0), origin, policy)

		state, res := Step(state, drag(0, 7, 8), origin, policy)

		assert.True(t, res.Consumed)
		assert.Equal(t, MoveWindow{Origin: geometry.Pt(7, 8)}, res.Effect)
		assert.True(t, state.Dragging())
	})

	t.Run("hold ignores until modifier returns", func(t *testing.T) {
		policy := Policy{DragModifier: ModCtrl, Release: PolicyHold}
		state, _ := Step(State{}, press(ModCtrl, 0, 0), origin, policy)

		state, res := Step(state, drag(0, 7, 8), origin, policy)
		assert.False(t, res.Consumed)
		assert.Nil(t, res.Effect)
		assert.True(t, state.Dragging(), "anchors survive")

		state, res = Step(state, drag(ModCtrl, 9, 9), origin, policy)
		assert.True(t, res.Consumed)
		assert.Equal(t, MoveWindow{Origin: geometry.Pt(9, 9)}, res.Effect)
		assert.True(t, state.Dragging())
	})
}

func TestStep_ReleaseReturnsToIdle(t *testing.T) {
	policy := DefaultPolicy()
	state, _ := Step(State{}, press(ModCtrl, 0, 0), geometry.Pt(0, 0), policy)

	next, res := Step(state, release(3, 3), geometry.Pt(3, 3), policy)

	assert.False(t, next.Dragging())
	assert.Nil(t, next.AnchorPointer)
	assert.Nil(t, next.AnchorOrigin)
	assert.False(t, res.Consumed)
	assert.Nil(t, res.Effect)
}

func TestStep_RightClickShowsMenuInAnyState(t *testing.T) {
	policy := DefaultPolicy()
	dragging, _ := Step(State{}, press(ModCtrl, 0, 0), geometry.Pt(50, 50), policy)

	for name, state := range map[string]State{"idle": {}, "dragging": dragging} {
		t.Run(name, func(t *testing.T) {
			ev := Event{Type: EventRightDown, Screen: geometry.Pt(300, 300), Local: geometry.Pt(12, 34)}

			next, res := Step(state, ev, geometry.Pt(50, 50), policy)

			assert.True(t, res.Consumed)
			assert.Equal(t, ShowContextMenu{At: geometry.Pt(12, 34)}, res.Effect)
			assert.Equal(t, state, next, "state unchanged")
		})
	}
}

func TestStep_OtherEventsForwardedUnchanged(t *testing.T) {
	policy := DefaultPolicy()
	dragging, _ := Step(State{}, press(ModCtrl, 0, 0), geometry.Pt(0, 0), policy)

	for _, state := range []State{{}, dragging} {
		next, res := Step(state, Event{Type: EventOther, Modifiers: ModCtrl}, geometry.Pt(0, 0), policy)
		assert.Equal(t, state, next)
		assert.False(t, res.Consumed)
		assert.Nil(t, res.Effect)
	}
}

func TestState_DraggingRequiresBothAnchors(t *testing.T) {
	p := geometry.Pt(1, 1)
	assert.False(t, State{}.Dragging())
	assert.False(t, State{AnchorPointer: &p}.Dragging())
	assert.False(t, State{AnchorOrigin: &p}.Dragging())
	assert.True(t, State{AnchorPointer: &p, AnchorOrigin: &p}.Dragging())
}

func TestParseModifier(t *testing.T) {
	tests := []struct {
		in      string
		want    Modifiers
		wantErr bool
	}{
		{"ctrl", ModCtrl, false},
		{"Control", ModCtrl, false},
		{"alt", ModAlt, false},
		{"shift", ModShift, false},
		{"super", ModSuper, false},
		{"cmd", ModSuper, false},
		{"hyper", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseModifier(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReleasePolicy(t *testing.T) {
	p, err := ParseReleasePolicy("hold")
	require.NoError(t, err)
	assert.Equal(t, PolicyHold, p)

	p, err = ParseReleasePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyTrack, p)

	_, err = ParseReleasePolicy("sticky")
	assert.Error(t, err)
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "left-down", EventLeftDown.String())
	assert.Equal(t, "left-dragged", EventLeftDragged.String())
	assert.Equal(t, "left-up", EventLeftUp.String())
	assert.Equal(t, "right-down", EventRightDown.String())
	assert.Equal(t, "other", EventOther.String())
}
