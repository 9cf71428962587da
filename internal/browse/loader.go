package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zaydhassan/AspireOn/internal/fetch"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))

// ErrCancelled is returned when the user aborts a loader with ctrl+c.
var ErrCancelled = errors.New("cancelled")

type loadDoneMsg struct{}

type spinnerTickMsg struct{}

type loaderModel[T any] struct {
	label   string
	tracker *fetch.Tracker[struct{}, T]
	timeout time.Duration
	frame   int
	aborted bool
	done    bool
}

func (m loaderModel[T]) Init() tea.Cmd {
	return tea.Batch(loadCmd(m.tracker, m.timeout), tick())
}

func loadCmd[T any](tracker *fetch.Tracker[struct{}, T], timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, _ = tracker.Call(ctx, struct{}{})
		return loadDoneMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.aborted = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel[T]) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s...\n", spinnerStyle.Render(spinnerFrames[m.frame]), m.label)
}

// RunLoader shows an inline spinner while tracker runs its action, then
// returns what the call settled with.
func RunLoader[T any](label string, tracker *fetch.Tracker[struct{}, T], timeout time.Duration) (T, error) {
	var zero T
	p := tea.NewProgram(loaderModel[T]{label: label, tracker: tracker, timeout: timeout})
	result, err := p.Run()
	if err != nil {
		return zero, err
	}
	if result.(loaderModel[T]).aborted {
		return zero, ErrCancelled
	}
	snap := tracker.Snapshot()
	return snap.Data, snap.Err
}
