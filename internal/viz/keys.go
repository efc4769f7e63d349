package viz

import "github.com/charmbracelet/bubbles/key"

type explorerKeys struct {
	Up    key.Binding
	Down  key.Binding
	Dec   key.Binding
	Inc   key.Binding
	Edit  key.Binding
	Mode  key.Binding
	Force key.Binding
	Theme key.Binding
	Help  key.Binding
	Quit  key.Binding
}

var keys = explorerKeys{
	Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "select")),
	Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "select")),
	Dec:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "decrease")),
	Inc:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "increase")),
	Edit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
	Mode:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "cutoff")),
	Force: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "energy/force")),
	Theme: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k explorerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Dec, k.Edit, k.Mode, k.Help, k.Quit}
}

func (k explorerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Dec, k.Inc},
		{k.Edit, k.Mode, k.Force, k.Theme},
		{k.Help, k.Quit},
	}
}
