package gesture

import (
	"log/slog"

	"github.com/jmylchreest/hitotop/internal/geometry"
)

// Window is the part of the overlay the controller repositions.
type Window interface {
	Origin() geometry.Point
	Move(origin geometry.Point)
}

// MenuPresenter pops up the context menu.
type MenuPresenter interface {
	ShowContextMenu(at geometry.Point)
}

// Controller feeds pointer events through Step and performs the effects.
// It is not safe for concurrent use; call it from the UI context only.
type Controller struct {
	window Window
	menu   MenuPresenter
	policy Policy
	logger *slog.Logger

	state State

	onDragEnd func(origin geometry.Point)
}

// NewController creates a controller for window. menu may be nil, in which
// case right clicks are still consumed but nothing is shown.
func NewController(window Window, menu MenuPresenter, policy Policy, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		window: window,
		menu:   menu,
		policy: policy,
		logger: logger,
	}
}

// SetPolicy replaces the policy. An in-progress drag keeps its anchors.
func (c *Controller) SetPolicy(policy Policy) {
	c.policy = policy
}

// Policy returns the current policy.
func (c *Controller) Policy() Policy {
	return c.policy
}

// SetMenuPresenter sets the presenter used for right clicks.
func (c *Controller) SetMenuPresenter(menu MenuPresenter) {
	c.menu = menu
}

// SetDragEndCallback sets a callback invoked with the final window origin
// when a drag finishes.
func (c *Controller) SetDragEndCallback(cb func(origin geometry.Point)) {
	c.onDragEnd = cb
}

// State returns a copy of the current gesture state.
func (c *Controller) State() State {
	return c.state
}

// Handle processes one event and reports whether it was consumed.
func (c *Controller) Handle(ev Event) bool {
	wasDragging := c.state.Dragging()

	next, res := Step(c.state, ev, c.window.Origin(), c.policy)
	c.state = next

	switch eff := res.Effect.(type) {
	case MoveWindow:
		c.window.Move(eff.Origin)
	case ShowContextMenu:
		if c.menu != nil {
			c.menu.ShowContextMenu(eff.At)
		}
	}

	if !wasDragging && next.Dragging() {
		c.logger.Debug("drag started", "pointer", ev.Screen, "origin", *next.AnchorOrigin)
	}
	if wasDragging && !next.Dragging() {
		origin := c.window.Origin()
		c.logger.Debug("drag finished", "origin", origin)
		if c.onDragEnd != nil {
			c.onDragEnd(origin)
		}
	}

	return res.Consumed
}
