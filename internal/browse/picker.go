package browse

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

const (
	pickerPending = -1
	pickerQuit    = -2
)

type pickerModel struct {
	title  string
	items  []string
	cursor int
	chosen int
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "esc", "ctrl+c":
		m.chosen = pickerQuit
		return m, tea.Quit
	case "up", "k":
		m.cursor = clamp(m.cursor-1, 0, len(m.items)-1)
	case "down", "j":
		m.cursor = clamp(m.cursor+1, 0, len(m.items)-1)
	case "enter":
		if len(m.items) > 0 {
			m.chosen = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := pickerTitleStyle.Render(m.title) + "\n"
	for i, it := range m.items {
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+it) + "\n"
		} else {
			s += pickerItemStyle.Render(it) + "\n"
		}
	}
	s += pickerHintStyle.Render(fmt.Sprintf("%d industries  ↑/↓/j/k navigate  enter select  q quit", len(m.items)))
	return s
}

// RunPicker lets the user choose one of items. It returns the chosen index,
// or -1 if the user quit.
func RunPicker(title string, items []string) (int, error) {
	p := tea.NewProgram(pickerModel{title: title, items: items, chosen: pickerPending})
	result, err := p.Run()
	if err != nil {
		return -1, err
	}
	if chosen := result.(pickerModel).chosen; chosen >= 0 {
		return chosen, nil
	}
	return -1, nil
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
