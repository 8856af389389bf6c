// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package picker

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Item is one selectable target.
type Item struct {
	Name   string
	Region string
	Detail string
}

// Pick runs an interactive single-select over the items and returns the
// chosen one. ok is false when the user backed out.
func Pick(items []Item) (Item, bool) {
	if len(items) == 0 {
		return Item{}, false
	}

	p := tea.NewProgram(model{items: items})
	m, err := p.Run()
	if err != nil {
		return Item{}, false
	}

	final := m.(model)
	if !final.chosen {
		return Item{}, false
	}
	return final.items[final.cursor], true
}

type model struct {
	items  []Item
	cursor int
	chosen bool
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "w":
			return m, tea.WindowSize()
		case "q", "esc", "ctrl+c":
			m.chosen = false
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter":
			m.chosen = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	s := "Select a target:\n\n"
	for i, item := range m.items {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s  %-15s %s\n", cursor, item.Name, item.Region, item.Detail)
	}
	return s + "\nENTER: go, Q/ESCAPE: quit\n"
}
