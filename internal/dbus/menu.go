package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/jmylchreest/hitotop/internal/menu"
)

const (
	// MenuInterface is the dbusmenu interface name.
	MenuInterface = "com.canonical.dbusmenu"
	// MenuPath is the object path of the exported menu.
	MenuPath = dbus.ObjectPath("/MenuBar")

	menuVersion = uint32(3)
	rootID      = int32(0)
)

// menuLayout is one node of a GetLayout reply: (ia{sv}av).
type menuLayout struct {
	ID         int32
	Properties map[string]dbus.Variant
	Children   []dbus.Variant
}

// menuItemProperties is one element of a GetGroupProperties reply: (ia{sv}).
type menuItemProperties struct {
	ID         int32
	Properties map[string]dbus.Variant
}

// menuEvent is one element of an EventGroup call: (isvu).
type menuEvent struct {
	ID        int32
	EventID   string
	Data      dbus.Variant
	Timestamp uint32
}

// itemProperties returns the dbusmenu properties of an item.
func itemProperties(it menu.Item) map[string]dbus.Variant {
	if it.Separator {
		return map[string]dbus.Variant{
			"type": dbus.MakeVariant("separator"),
		}
	}
	return map[string]dbus.Variant{
		"label":   dbus.MakeVariant(it.Label),
		"enabled": dbus.MakeVariant(true),
		"visible": dbus.MakeVariant(true),
	}
}

// filterProperties keeps only the named properties; no names keeps all.
func filterProperties(props map[string]dbus.Variant, names []string) map[string]dbus.Variant {
	if len(names) == 0 {
		return props
	}
	out := make(map[string]dbus.Variant, len(names))
	for _, n := range names {
		if v, ok := props[n]; ok {
			out[n] = v
		}
	}
	return out
}

// buildLayout returns the layout rooted at parentID. The menu is flat, so
// only the root has children.
func buildLayout(items []menu.Item, parentID, depth int32, names []string) (menuLayout, bool) {
	if parentID != rootID {
		for _, it := range items {
			if it.ID == parentID {
				return menuLayout{ID: it.ID, Properties: filterProperties(itemProperties(it), names), Children: []dbus.Variant{}}, true
			}
		}
		return menuLayout{}, false
	}

	root := menuLayout{
		ID: rootID,
		Properties: map[string]dbus.Variant{
			"children-display": dbus.MakeVariant("submenu"),
		},
		Children: []dbus.Variant{},
	}
	if depth == 0 {
		return root, true
	}
	for _, it := range items {
		child := menuLayout{ID: it.ID, Properties: filterProperties(itemProperties(it), names), Children: []dbus.Variant{}}
		root.Children = append(root.Children, dbus.MakeVariant(child))
	}
	return root, true
}

// MenuServer implements com.canonical.dbusmenu for the tray icon.
type MenuServer struct {
	logger   *slog.Logger
	items    []menu.Item
	onAction func(menu.Action)

	mu       sync.RWMutex
	conn     *dbus.Conn
	revision uint32
}

// NewMenuServer creates a menu server. onAction runs on the D-Bus
// goroutine; callers hop to the UI loop themselves if needed.
func NewMenuServer(onAction func(menu.Action), logger *slog.Logger) *MenuServer {
	if logger == nil {
		logger = slog.Default()
	}
	if onAction == nil {
		onAction = func(menu.Action) {}
	}
	return &MenuServer{
		logger:   logger,
		items:    menu.Items(),
		onAction: onAction,
		revision: 1,
	}
}

// Export publishes the menu on conn.
func (m *MenuServer) Export(conn *dbus.Conn) error {
	if err := conn.Export(m, MenuPath, MenuInterface); err != nil {
		return fmt.Errorf("failed to export menu: %w", err)
	}

	props, err := prop.Export(conn, MenuPath, prop.Map{
		MenuInterface: {
			"Version":       {Value: menuVersion, Writable: false, Emit: prop.EmitTrue},
			"TextDirection": {Value: "ltr", Writable: false, Emit: prop.EmitTrue},
			"Status":        {Value: "normal", Writable: false, Emit: prop.EmitTrue},
			"IconThemePath": {Value: []string{}, Writable: false, Emit: prop.EmitTrue},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to export menu properties: %w", err)
	}

	node := &introspect.Node{
		Name: string(MenuPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       MenuInterface,
				Methods:    introspect.Methods(m),
				Properties: props.Introspection(MenuInterface),
				Signals:    menuSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), MenuPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()
	return nil
}

// GetLayout returns the menu tree.
// D-Bus method: GetLayout(iias) -> (u(ia{sv}av))
func (m *MenuServer) GetLayout(parentID int32, recursionDepth int32, propertyNames []string) (uint32, menuLayout, *dbus.Error) {
	m.mu.RLock()
	revision := m.revision
	m.mu.RUnlock()

	layout, ok := buildLayout(m.items, parentID, recursionDepth, propertyNames)
	if !ok {
		return 0, menuLayout{}, dbus.MakeFailedError(fmt.Errorf("unknown menu item %d", parentID))
	}
	return revision, layout, nil
}

// GetGroupProperties returns properties for several items.
// D-Bus method: GetGroupProperties(aias) -> a(ia{sv})
func (m *MenuServer) GetGroupProperties(ids []int32, propertyNames []string) ([]menuItemProperties, *dbus.Error) {
	out := []menuItemProperties{}
	for _, id := range ids {
		if it, ok := menu.Lookup(id); ok {
			out = append(out, menuItemProperties{ID: id, Properties: filterProperties(itemProperties(it), propertyNames)})
		}
	}
	return out, nil
}

// GetProperty returns a single property of an item.
// D-Bus method: GetProperty(is) -> v
func (m *MenuServer) GetProperty(id int32, name string) (dbus.Variant, *dbus.Error) {
	it, ok := menu.Lookup(id)
	if !ok {
		return dbus.Variant{}, dbus.MakeFailedError(fmt.Errorf("unknown menu item %d", id))
	}
	v, ok := itemProperties(it)[name]
	if !ok {
		return dbus.Variant{}, dbus.MakeFailedError(fmt.Errorf("unknown property %q", name))
	}
	return v, nil
}

// Event handles a user interaction with an item.
// D-Bus method: Event(isvu) -> nothing
func (m *MenuServer) Event(id int32, eventID string, data dbus.Variant, timestamp uint32) *dbus.Error {
	m.handleEvent(id, eventID)
	return nil
}

// EventGroup handles several events; it returns the IDs that were not found.
// D-Bus method: EventGroup(a(isvu)) -> ai
func (m *MenuServer) EventGroup(events []menuEvent) ([]int32, *dbus.Error) {
	notFound := []int32{}
	for _, ev := range events {
		if !m.handleEvent(ev.ID, ev.EventID) {
			notFound = append(notFound, ev.ID)
		}
	}
	return notFound, nil
}

// AboutToShow reports whether the menu needs an update before showing.
// D-Bus method: AboutToShow(i) -> b
func (m *MenuServer) AboutToShow(id int32) (bool, *dbus.Error) {
	return false, nil
}

// AboutToShowGroup is the batched AboutToShow.
// D-Bus method: AboutToShowGroup(ai) -> (aiai)
func (m *MenuServer) AboutToShowGroup(ids []int32) ([]int32, []int32, *dbus.Error) {
	return []int32{}, []int32{}, nil
}

// handleEvent dispatches clicks. It reports whether the item exists.
func (m *MenuServer) handleEvent(id int32, eventID string) bool {
	it, ok := menu.Lookup(id)
	if !ok {
		return id == rootID
	}
	if eventID != "clicked" || it.Separator {
		return true
	}
	m.logger.Debug("tray menu item clicked", "id", id, "action", it.Action)
	m.onAction(it.Action)
	return true
}

func menuSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "ItemsPropertiesUpdated",
			Args: []introspect.Arg{
				{Name: "updatedProps", Type: "a(ia{sv})"},
				{Name: "removedProps", Type: "a(ias)"},
			},
		},
		{
			Name: "LayoutUpdated",
			Args: []introspect.Arg{
				{Name: "revision", Type: "u"},
				{Name: "parent", Type: "i"},
			},
		},
		{
			Name: "ItemActivationRequested",
			Args: []introspect.Arg{
				{Name: "id", Type: "i"},
				{Name: "timestamp", Type: "u"},
			},
		},
	}
}
