package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	SwitchPane  key.Binding
	Refresh     key.Binding
	Search      key.Binding
	Clear       key.Binding
	Filter      key.Binding
	Sort        key.Binding
	NewCrop     key.Binding
	EditCrop    key.Binding
	CycleStatus key.Binding
	Delete      key.Binding
	SampleOrder key.Binding
	ClearAll    key.Binding
	Import      key.Binding
	Activity    key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchPane, k.Search, k.Filter, k.Sort, k.NewCrop, k.CycleStatus, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.SwitchPane},
		{k.Search, k.Clear, k.Filter, k.Sort},
		{k.NewCrop, k.EditCrop, k.CycleStatus, k.Delete, k.SampleOrder},
		{k.Refresh, k.ClearAll, k.Import, k.Activity},
		{k.Help, k.Quit},
	}
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		SwitchPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "crops/orders"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear search"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "status filter"),
		),
		Sort: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "sort"),
		),
		NewCrop: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new crop"),
		),
		EditCrop: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit crop"),
		),
		CycleStatus: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "next status"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+d", "delete"),
			key.WithHelp("ctrl+d", "delete"),
		),
		SampleOrder: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sample order"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "clear all"),
		),
		Import: key.NewBinding(
			key.WithKeys("I"),
			key.WithHelp("I", "import samples"),
		),
		Activity: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "activity"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
