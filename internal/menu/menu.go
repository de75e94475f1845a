// Package menu defines the actions offered by the tray and context menus.
// Both menus render the same item list so their labels and order never
// drift apart.
package menu

import "fmt"

// Action identifies a menu command.
type Action string

const (
	ActionRefresh Action = "refresh"
	ActionCopy    Action = "copy"
	ActionQuit    Action = "quit"
)

// Item is one menu row. Separators carry no action.
type Item struct {
	ID        int32
	Label     string
	Action    Action
	Separator bool
}

// Title is the text shown next to the tray icon.
const Title = "言"

// Items returns the menu rows in display order. IDs are stable and start
// at 1; 0 is reserved for the root of an exported menu layout.
func Items() []Item {
	return []Item{
		{ID: 1, Label: "刷新一言", Action: ActionRefresh},
		{ID: 2, Label: "复制一言", Action: ActionCopy},
		{ID: 3, Separator: true},
		{ID: 4, Label: "退出", Action: ActionQuit},
	}
}

// Lookup returns the item with the given ID.
func Lookup(id int32) (Item, bool) {
	for _, it := range Items() {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Handler performs menu actions.
type Handler interface {
	Refresh()
	Copy() error
	Quit()
}

// Dispatch runs the handler method for action.
func Dispatch(h Handler, action Action) error {
	switch action {
	case ActionRefresh:
		h.Refresh()
	case ActionCopy:
		return h.Copy()
	case ActionQuit:
		h.Quit()
	default:
		return fmt.Errorf("unknown menu action %q", action)
	}
	return nil
}
