package dbus

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/jmylchreest/hitotop/internal/menu"
)

const (
	// ItemInterface is the StatusNotifierItem interface name.
	ItemInterface = "org.kde.StatusNotifierItem"
	// ItemPath is the object path of the tray item.
	ItemPath = dbus.ObjectPath("/StatusNotifierItem")

	watcherName      = "org.kde.StatusNotifierWatcher"
	watcherPath      = dbus.ObjectPath("/StatusNotifierWatcher")
	watcherInterface = "org.kde.StatusNotifierWatcher"
)

// pixmap is an ARGB32 icon image: (iiay).
type pixmap struct {
	Width  int32
	Height int32
	Data   []byte
}

// toolTip is the StatusNotifierItem tooltip: (sa(iiay)ss).
type toolTip struct {
	IconName    string
	IconPixmap  []pixmap
	Title       string
	Description string
}

func newToolTip(iconName, text string) toolTip {
	return toolTip{
		IconName:    iconName,
		IconPixmap:  []pixmap{},
		Title:       menu.Title,
		Description: text,
	}
}

// Tray is a StatusNotifierItem whose menu is served by MenuServer.
type Tray struct {
	logger   *slog.Logger
	iconName string
	menu     *MenuServer

	mu         sync.Mutex
	conn       *dbus.Conn
	props      *prop.Properties
	onActivate func()
	busName    string
}

// NewTray creates a tray item. Menu clicks are passed to onAction.
func NewTray(iconName string, onAction func(menu.Action), logger *slog.Logger) *Tray {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tray{
		logger:     logger,
		iconName:   iconName,
		menu:       NewMenuServer(onAction, logger),
		onActivate: func() {},
	}
}

// SetActivateHandler sets what a primary click on the icon does.
func (t *Tray) SetActivateHandler(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if fn == nil {
		fn = func() {}
	}
	t.onActivate = fn
}

// itemProperties returns the initial StatusNotifierItem properties.
func (t *Tray) itemProperties(text string) map[string]*prop.Prop {
	return map[string]*prop.Prop{
		"Category":   {Value: "ApplicationStatus", Writable: false, Emit: prop.EmitTrue},
		"Id":         {Value: "hitotop", Writable: false, Emit: prop.EmitTrue},
		"Title":      {Value: menu.Title, Writable: false, Emit: prop.EmitTrue},
		"Status":     {Value: "Active", Writable: false, Emit: prop.EmitTrue},
		"IconName":   {Value: t.iconName, Writable: false, Emit: prop.EmitTrue},
		"ToolTip":    {Value: newToolTip(t.iconName, text), Writable: false, Emit: prop.EmitTrue},
		"ItemIsMenu": {Value: false, Writable: false, Emit: prop.EmitTrue},
		"Menu":       {Value: MenuPath, Writable: false, Emit: prop.EmitTrue},
		"WindowId":   {Value: int32(0), Writable: false, Emit: prop.EmitTrue},
	}
}

// Start exports the item and its menu on conn and registers with the
// StatusNotifierWatcher. A missing watcher is logged, not returned: the
// overlay works without a tray.
func (t *Tray) Start(conn *dbus.Conn, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.menu.Export(conn); err != nil {
		return err
	}
	if err := conn.Export(t, ItemPath, ItemInterface); err != nil {
		return fmt.Errorf("failed to export tray item: %w", err)
	}

	props, err := prop.Export(conn, ItemPath, prop.Map{ItemInterface: t.itemProperties(text)})
	if err != nil {
		return fmt.Errorf("failed to export tray properties: %w", err)
	}

	node := &introspect.Node{
		Name: string(ItemPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       ItemInterface,
				Methods:    introspect.Methods(t),
				Properties: props.Introspection(ItemInterface),
				Signals:    traySignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ItemPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	t.conn = conn
	t.props = props
	t.busName = fmt.Sprintf("org.kde.StatusNotifierItem-%d-1", os.Getpid())

	if _, err := conn.RequestName(t.busName, dbus.NameFlagDoNotQueue); err != nil {
		t.logger.Warn("failed to request tray bus name", "name", t.busName, "error", err)
		t.busName = conn.Names()[0]
	}

	call := conn.Object(watcherName, watcherPath).Call(watcherInterface+".RegisterStatusNotifierItem", 0, t.busName)
	if call.Err != nil {
		t.logger.Warn("no StatusNotifierWatcher available; tray icon disabled", "error", call.Err)
		return nil
	}

	t.logger.Info("tray icon registered", "name", t.busName)
	return nil
}

// Stop releases the tray bus name.
func (t *Tray) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return
	}
	if t.busName != "" {
		_, _ = t.conn.ReleaseName(t.busName)
	}
	_ = t.conn.Export(nil, ItemPath, ItemInterface)
	_ = t.conn.Export(nil, MenuPath, MenuInterface)
	t.conn = nil
	t.props = nil
}

// SetText updates the tooltip with the current quote.
func (t *Tray) SetText(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.props == nil {
		return
	}
	t.props.SetMust(ItemInterface, "ToolTip", newToolTip(t.iconName, text))
	if err := t.conn.Emit(ItemPath, ItemInterface+".NewToolTip"); err != nil {
		t.logger.Debug("failed to emit NewToolTip", "error", err)
	}
}

// Activate handles a primary click on the icon.
// D-Bus method: Activate(ii) -> nothing
func (t *Tray) Activate(x, y int32) *dbus.Error {
	t.mu.Lock()
	fn := t.onActivate
	t.mu.Unlock()
	fn()
	return nil
}

// SecondaryActivate handles a middle click on the icon.
// D-Bus method: SecondaryActivate(ii) -> nothing
func (t *Tray) SecondaryActivate(x, y int32) *dbus.Error {
	return nil
}

// ContextMenu is called by hosts that do not render the dbusmenu.
// D-Bus method: ContextMenu(ii) -> nothing
func (t *Tray) ContextMenu(x, y int32) *dbus.Error {
	return nil
}

// Scroll handles a scroll over the icon.
// D-Bus method: Scroll(is) -> nothing
func (t *Tray) Scroll(delta int32, orientation string) *dbus.Error {
	return nil
}

func traySignals() []introspect.Signal {
	return []introspect.Signal{
		{Name: "NewTitle"},
		{Name: "NewIcon"},
		{Name: "NewToolTip"},
		{
			Name: "NewStatus",
			Args: []introspect.Arg{
				{Name: "status", Type: "s"},
			},
		},
	}
}
