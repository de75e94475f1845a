package display

import (
	"unsafe"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
)

// firstMonitor returns the first monitor of display. GTK4 has no notion of
// a primary monitor, and layer-shell surfaces without an explicit monitor
// land on the compositor's choice, which in practice is the first output.
func firstMonitor(display *gdk.Display) *gdk.Monitor {
	if display == nil {
		return nil
	}
	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		return nil
	}
	return wrapMonitor(monitors.Item(0))
}

// wrapMonitor wraps a glib.Object as a gdk.Monitor. gotk4 does not export
// its own wrapper, so this mirrors the struct layout it uses internally.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}

// monitorSize returns the logical size of monitor, or zero when unknown.
func monitorSize(monitor *gdk.Monitor) Size {
	if monitor == nil {
		return Size{}
	}
	geo := monitor.Geometry()
	if geo == nil {
		return Size{}
	}
	return Size{Width: geo.Width(), Height: geo.Height()}
}

// monitorName returns the connector name of monitor, e.g. "DP-1".
func monitorName(monitor *gdk.Monitor) string {
	if monitor == nil {
		return ""
	}
	return monitor.Connector()
}
