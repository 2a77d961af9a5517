package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Less     key.Binding
	More     key.Binding
	MoreFive key.Binding
	LessFive key.Binding
	Toggle   key.Binding
	Extend   key.Binding
	Language key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Less, k.More, k.Toggle, k.Extend, k.Language, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Less, k.More, k.LessFive, k.MoreFive},
		{k.Toggle, k.Extend, k.Language, k.Quit},
	}
}

func defaultKeys() keyMap {
	return keyMap{
		Less: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "-1 min"),
		),
		More: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "+1 min"),
		),
		MoreFive: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "+5 min"),
		),
		LessFive: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "-5 min"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "start/stop"),
		),
		Extend: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "+10 min"),
		),
		Language: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "language"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
