package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	reload     key.Binding
	toggleHelp key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	itemUp     key.Binding
	itemDown   key.Binding
	addItem    key.Binding
	editItem   key.Binding
	deleteItem key.Binding
	details    key.Binding
	copyItem   key.Binding
	cancel     key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "select up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "select down")),
		itemUp:     key.NewBinding(key.WithKeys("[", "shift+up", "K"), key.WithHelp("[", "move item up")),
		itemDown:   key.NewBinding(key.WithKeys("]", "shift+down", "J"), key.WithHelp("]", "move item down")),
		addItem:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new item")),
		editItem:   key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e/enter", "edit item")),
		deleteItem: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete item")),
		details:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "toggle details")),
		copyItem:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy item")),
		cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.addItem, k.editItem, k.itemUp, k.itemDown, k.deleteItem, k.toggleHelp, k.quit}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveUp, k.moveDown, k.itemUp, k.itemDown},
		{k.addItem, k.editItem, k.deleteItem, k.details, k.copyItem},
		{k.reload, k.cancel, k.toggleHelp, k.quit},
	}
}
