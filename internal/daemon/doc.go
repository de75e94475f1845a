// Package daemon holds the application context shared by the overlay, the
// tray, the D-Bus control interface and the terminal UI. It owns the quote
// fetcher, the clipboard and configuration hot-reload.
package daemon
