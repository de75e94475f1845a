// Package display owns the quote overlay: a borderless, transparent GTK4
// window placed with Wayland layer-shell. It turns raw pointer events into
// gesture events, moves the window by adjusting layer-shell margins, and
// shows the right-click menu as a popover.
//
// Everything here must run on the GTK main loop.
package display
