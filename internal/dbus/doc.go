// Package dbus exposes hitotop on the session bus: a control interface
// (io.github.hitotop.Control) used by the CLI, and a StatusNotifierItem
// tray icon with a com.canonical.dbusmenu menu.
package dbus
