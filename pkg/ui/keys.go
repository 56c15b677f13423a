package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap is the table's key bindings.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	pageUp     key.Binding
	pageDown   key.Binding
	top        key.Binding
	bottom     key.Binding
	toggle     key.Binding
	sortFixed  key.Binding
	sortCustom key.Binding
	activeOnly key.Binding
	copyID     key.Binding
	reload     key.Binding
	sortPicker key.Binding
	help       key.Binding
	cancel     key.Binding
	quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		pageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		pageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		top:        key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		bottom:     key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		toggle:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand")),
		sortFixed:  key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1-3", "sort")),
		sortCustom: key.NewBinding(key.WithKeys("4", "5", "6", "7", "8", "9"), key.WithHelp("4-9", "sort field")),
		activeOnly: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "active only")),
		copyID:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		sortPicker: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort by…")),
		help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// shortHelp lists the bindings shown in the footer.
func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.sortFixed, k.sortPicker, k.activeOnly, k.help, k.quit}
}

// fullHelp lists every binding for the help modal.
func (k keyMap) fullHelp() []key.Binding {
	return []key.Binding{
		k.down, k.up, k.pageDown, k.pageUp, k.top, k.bottom,
		k.toggle, k.sortFixed, k.sortCustom, k.sortPicker,
		k.activeOnly, k.copyID, k.reload, k.help, k.quit,
	}
}
