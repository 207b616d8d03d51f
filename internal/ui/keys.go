package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Open        key.Binding
	Back        key.Binding
	Refresh     key.Binding
	RefreshHard key.Binding
	Diff        key.Binding
	Tree        key.Binding
	History     key.Binding
	Events      key.Binding
	Progress    key.Binding
	Settings    key.Binding
	ToggleDrift key.Binding
	SyncBatch   key.Binding
	SyncApp     key.Binding
	Rollback    key.Binding
	TerminateOp key.Binding
	DeleteApp   key.Binding
	Filter      key.Binding
	Sort        key.Binding
	Clear       key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Diff, k.Tree, k.History, k.SyncApp, k.Progress, k.Settings, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Back},
		{k.Refresh, k.RefreshHard, k.Diff, k.Tree, k.History, k.Events, k.Progress},
		{k.ToggleDrift, k.SyncBatch, k.SyncApp, k.Rollback, k.TerminateOp, k.DeleteApp},
		{k.Filter, k.Sort, k.Clear, k.Settings, k.Help, k.Quit},
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
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close panel"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		RefreshHard: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "hard refresh"),
		),
		Diff: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "diff"),
		),
		Tree: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "tree"),
		),
		History: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "history"),
		),
		Events: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "events"),
		),
		Progress: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "sync progress"),
		),
		Settings: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "settings"),
		),
		ToggleDrift: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "drift only"),
		),
		SyncBatch: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sync drifted"),
		),
		SyncApp: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "sync app"),
		),
		Rollback: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "rollback"),
		),
		TerminateOp: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "terminate op"),
		),
		DeleteApp: key.NewBinding(
			key.WithKeys("ctrl+d", "delete"),
			key.WithHelp("ctrl+d", "delete app"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Sort: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "sort"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
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
