package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap is every binding the explorer understands.
type keyMap struct {
	NextView    key.Binding
	Summary     key.Binding
	Matrix      key.Binding
	Top         key.Binding
	NextPole    key.Binding
	PrevPole    key.Binding
	NextActor   key.Binding
	PrevActor   key.Binding
	Aggregate   key.Binding
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Report      key.Binding
	Diagnostics key.Binding
	Refresh     key.Binding
	Copy        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextView:    key.NewBinding(key.WithKeys("tab", "v"), key.WithHelp("tab", "next view")),
		Summary:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "summary")),
		Matrix:      key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "matrix")),
		Top:         key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "top transitions")),
		NextPole:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p/P", "pole")),
		PrevPole:    key.NewBinding(key.WithKeys("P")),
		NextActor:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a/A", "actor")),
		PrevActor:   key.NewBinding(key.WithKeys("A")),
		Aggregate:   key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "pole aggregate")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Report:      key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "report")),
		Diagnostics: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "diagnostics")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy view")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextView, k.NextPole, k.NextActor, k.Refresh, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextView, k.Summary, k.Matrix, k.Top},
		{k.NextPole, k.NextActor, k.Aggregate},
		{k.Up, k.Down, k.Left, k.Right},
		{k.Report, k.Diagnostics, k.Refresh, k.Copy, k.Help, k.Quit},
	}
}
