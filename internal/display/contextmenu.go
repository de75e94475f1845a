package display

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/hitotop/internal/geometry"
	"github.com/jmylchreest/hitotop/internal/menu"
)

// actionGroupName is the prefix of the overlay's window-scoped actions.
const actionGroupName = "overlay"

func detailedAction(a menu.Action) string {
	return actionGroupName + "." + string(a)
}

// menuSections splits items at separators. Empty sections are dropped.
func menuSections(items []menu.Item) [][]menu.Item {
	var sections [][]menu.Item
	var current []menu.Item
	for _, it := range items {
		if it.Separator {
			if len(current) > 0 {
				sections = append(sections, current)
			}
			current = nil
			continue
		}
		current = append(current, it)
	}
	if len(current) > 0 {
		sections = append(sections, current)
	}
	return sections
}

// contextMenu is the popover shown on right click.
type contextMenu struct {
	popover *gtk.PopoverMenu
	window  *gtk.Window
	onOpen  func(open bool)
}

func newContextMenu(window *gtk.Window, onAction func(menu.Action)) *contextMenu {
	group := gio.NewSimpleActionGroup()
	model := gio.NewMenu()

	for _, items := range menuSections(menu.Items()) {
		section := gio.NewMenu()
		for _, it := range items {
			action := it.Action
			sa := gio.NewSimpleAction(string(action), nil)
			sa.ConnectActivate(func(_ *glib.Variant) {
				onAction(action)
			})
			group.AddAction(sa)
			section.Append(it.Label, detailedAction(action))
		}
		model.AppendSection("", section)
	}
	window.InsertActionGroup(actionGroupName, group)

	popover := gtk.NewPopoverMenuFromModel(model)
	popover.SetParent(window)
	popover.SetHasArrow(false)
	popover.SetPosition(gtk.PosBottom)

	m := &contextMenu{popover: popover, window: window}
	popover.ConnectClosed(func() {
		if m.onOpen != nil {
			m.onOpen(false)
		}
	})
	return m
}

// popup shows the menu pointing at at, relative to the window surface.
func (m *contextMenu) popup(at geometry.Point) {
	x, y := at.Round()
	rect := gdk.NewRectangle(x, y, 1, 1)
	m.popover.SetPointingTo(&rect)
	if m.onOpen != nil {
		m.onOpen(true)
	}
	m.popover.Popup()
}

func (m *contextMenu) destroy() {
	m.popover.Popdown()
	m.popover.Unparent()
}
