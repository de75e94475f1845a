package display

import (
	"log/slog"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/hitotop/internal/config"
	"github.com/jmylchreest/hitotop/internal/geometry"
	"github.com/jmylchreest/hitotop/internal/gesture"
	"github.com/jmylchreest/hitotop/internal/menu"
	"github.com/jmylchreest/hitotop/internal/quote"
	"github.com/jmylchreest/hitotop/internal/theme"
)

// Namespace is the layer-shell namespace compositors can match rules on.
const Namespace = "hitotop"

// Overlay is the always-on-top quote window.
type Overlay struct {
	window   *gtk.Window
	label    *gtk.Label
	menu     *contextMenu
	provider *theme.Provider
	gestures *gesture.Controller
	logger   *slog.Logger

	styleManager *adw.StyleManager
	darkHandler  coreglib.SignalHandle

	winCfg  config.WindowConfig
	scheme  theme.Scheme
	origin  geometry.Point
	surface surfaceTracker
	monitor *gdk.Monitor

	onAction func(menu.Action)
}

// NewOverlay builds the overlay window for app. The window is not shown
// until Show is called.
func NewOverlay(app *gtk.Application, cfg *config.Config, logger *slog.Logger) (*Overlay, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	display := gdk.DisplayGetDefault()
	if display == nil {
		return nil, &DisplayError{Message: "no display available"}
	}
	if !layershell.IsSupported() {
		return nil, &DisplayError{Message: "compositor does not support wlr-layer-shell"}
	}

	policy, err := cfg.Gesture.Policy()
	if err != nil {
		return nil, &DisplayError{Message: "invalid gesture settings", Cause: err}
	}

	o := &Overlay{
		logger:       logger,
		winCfg:       cfg.Window,
		scheme:       cfg.Theme.Scheme(),
		monitor:      firstMonitor(display),
		styleManager: adw.StyleManagerGetDefault(),
	}

	o.window = gtk.NewWindow()
	o.window.SetApplication(app)
	o.window.SetTitle(menu.Title)
	o.window.SetDecorated(false)
	o.window.SetResizable(false)
	o.window.AddCSSClass("hitotop-overlay")
	o.resize(cfg.Window)

	layershell.InitForWindow(o.window)
	layershell.SetLayer(o.window, layershell.LayerShellLayerTop)
	layershell.SetExclusiveZone(o.window, 0)
	layershell.SetKeyboardMode(o.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(o.window, Namespace)
	layershell.SetAnchor(o.window, layershell.LayerShellEdgeTop, true)
	layershell.SetAnchor(o.window, layershell.LayerShellEdgeLeft, true)
	if o.monitor != nil {
		layershell.SetMonitor(o.window, o.monitor)
	}

	o.buildUI()

	o.provider = theme.NewProvider(cfg.Window.Style(o.textColor()), logger)
	o.provider.Apply(display)
	o.darkHandler = o.styleManager.NotifyProperty("dark", o.refreshTextColor)

	o.menu = newContextMenu(o.window, o.dispatch)
	o.menu.onOpen = o.setMenuOpen
	o.gestures = gesture.NewController(o, o, policy, logger)

	// Capture phase sees events before the label or popover does.
	legacy := gtk.NewEventControllerLegacy()
	legacy.SetPropagationPhase(gtk.PhaseCapture)
	legacy.ConnectEvent(o.handleEvent)
	o.window.AddController(legacy)

	o.window.ConnectRealize(func() {
		clock := gdk.BaseFrameClock(o.window.FrameClock())
		clock.ConnectAfterPaint(o.surface.presented)
	})

	return o, nil
}

func (o *Overlay) buildUI() {
	box := gtk.NewBox(gtk.OrientationVertical, 0)
	box.AddCSSClass("hitotop-content")

	o.label = gtk.NewLabel(quote.PlaceholderText)
	o.label.AddCSSClass("hitotop-text")
	o.label.SetWrap(true)
	o.label.SetJustify(gtk.JustifyCenter)
	o.label.SetHExpand(true)
	o.label.SetVExpand(true)
	o.label.SetHAlign(gtk.AlignCenter)
	o.label.SetVAlign(gtk.AlignCenter)
	o.label.SetSelectable(false)

	box.Append(o.label)
	o.window.SetChild(box)
}

func (o *Overlay) resize(w config.WindowConfig) {
	o.window.SetDefaultSize(w.Width, w.Height)
	o.window.SetSizeRequest(w.Width, w.Height)
}

// Show places the window and presents it. saved is the remembered origin,
// or nil to use the default placement.
func (o *Overlay) Show(saved *geometry.Point) {
	screen := monitorSize(o.monitor)
	origin := InitialOrigin(saved, screen, Size{Width: o.winCfg.Width, Height: o.winCfg.Height}, o.winCfg.TopOffset)
	if saved != nil && origin != *saved {
		o.logger.Info("remembered position is off screen, using default", "saved", *saved)
	}
	o.Move(origin)
	o.window.Present()
	o.logger.Debug("overlay shown", "origin", origin, "monitor", monitorName(o.monitor), "screen", screen)
}

// SetText replaces the displayed quote.
func (o *Overlay) SetText(text string) {
	o.label.SetText(text)
}

// SetTextColor overrides the text color until the next appearance change.
func (o *Overlay) SetTextColor(c theme.Color) {
	o.provider.SetTextColor(c)
}

// Text returns the displayed quote.
func (o *Overlay) Text() string {
	return o.label.Text()
}

// Origin implements gesture.Window.
func (o *Overlay) Origin() geometry.Point {
	return o.origin
}

// Move implements gesture.Window. The fractional origin is kept so that a
// long drag does not accumulate rounding error.
func (o *Overlay) Move(origin geometry.Point) {
	o.origin = origin
	o.surface.moved(origin)
	left, top := margins(origin)
	layershell.SetMargin(o.window, layershell.LayerShellEdgeLeft, left)
	layershell.SetMargin(o.window, layershell.LayerShellEdgeTop, top)
	o.window.QueueDraw()
}

// ShowContextMenu implements gesture.MenuPresenter.
func (o *Overlay) ShowContextMenu(at geometry.Point) {
	o.menu.popup(at)
}

// SetActionHandler sets the function run when a context menu item is
// chosen.
func (o *Overlay) SetActionHandler(fn func(menu.Action)) {
	o.onAction = fn
}

// SetDragEndCallback sets a callback run with the final origin after each
// drag.
func (o *Overlay) SetDragEndCallback(cb func(origin geometry.Point)) {
	o.gestures.SetDragEndCallback(cb)
}

// MonitorName returns the connector name of the overlay's monitor.
func (o *Overlay) MonitorName() string {
	return monitorName(o.monitor)
}

// ApplyConfig updates size, appearance and gesture policy from cfg. The
// current position is kept.
func (o *Overlay) ApplyConfig(cfg *config.Config) error {
	policy, err := cfg.Gesture.Policy()
	if err != nil {
		return &DisplayError{Message: "invalid gesture settings", Cause: err}
	}
	o.gestures.SetPolicy(policy)

	if cfg.Window.Width != o.winCfg.Width || cfg.Window.Height != o.winCfg.Height {
		o.resize(cfg.Window)
	}
	o.winCfg = cfg.Window
	o.scheme = cfg.Theme.Scheme()
	o.provider.Update(cfg.Window.Style(o.textColor()))
	return nil
}

// Close destroys the window.
func (o *Overlay) Close() {
	if o.darkHandler != 0 {
		o.styleManager.HandlerDisconnect(o.darkHandler)
		o.darkHandler = 0
	}
	o.menu.destroy()
	o.window.Destroy()
}

func (o *Overlay) handleEvent(event gdk.Eventer) bool {
	sample, ok := samplePointer(event)
	if !ok {
		return false
	}
	return o.gestures.Handle(toGestureEvent(sample, o.surface.applied))
}

func (o *Overlay) dispatch(action menu.Action) {
	o.logger.Debug("context menu action", "action", action)
	if o.onAction != nil {
		o.onAction(action)
	}
}

// setMenuOpen grants keyboard focus while the popover is open so it can be
// navigated and dismissed with Escape.
func (o *Overlay) setMenuOpen(open bool) {
	mode := layershell.LayerShellKeyboardModeNone
	if open {
		mode = layershell.LayerShellKeyboardModeOnDemand
	}
	layershell.SetKeyboardMode(o.window, mode)
}

func (o *Overlay) textColor() theme.Color {
	return theme.TextColor(o.scheme, o.styleManager.Dark)
}

func (o *Overlay) refreshTextColor() {
	c := o.textColor()
	o.logger.Debug("appearance changed", "dark", o.styleManager.Dark(), "text", c)
	o.SetTextColor(c)
}

// DisplayError represents a display-related error.
type DisplayError struct {
	Message string
	Cause   error
}

func (e *DisplayError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DisplayError) Unwrap() error {
	return e.Cause
}
