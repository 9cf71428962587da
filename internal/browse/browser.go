package browse

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zaydhassan/AspireOn/internal/fetch"
	"github.com/zaydhassan/AspireOn/internal/model"
)

// Lines per industry in the list pane (name + subtitle + blank separator).
const itemHeight = 3

const listWidth = 36

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39"))

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	itemStyle = lipgloss.NewStyle().
			Bold(true)

	itemSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))
)

type pane int

const (
	paneList pane = iota
	paneDetail
)

type reloadedMsg struct{}

type browserModel struct {
	tracker  *fetch.Tracker[struct{}, []model.IndustryInsight]
	timeout  time.Duration
	insights []model.IndustryInsight
	now      func() time.Time

	list   viewport.Model
	detail viewport.Model
	active pane
	cursor int
	width  int
	height int
	ready  bool
	frame  int
}

func newBrowserModel(tracker *fetch.Tracker[struct{}, []model.IndustryInsight], timeout time.Duration) browserModel {
	return browserModel{
		tracker:  tracker,
		timeout:  timeout,
		insights: tracker.Snapshot().Data,
		now:      time.Now,
	}
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) reloadCmd() tea.Cmd {
	load := loadCmd(m.tracker, m.timeout)
	return tea.Batch(func() tea.Msg {
		load()
		return reloadedMsg{}
	}, tick())
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case reloadedMsg:
		snap := m.tracker.Snapshot()
		if snap.Err == nil {
			m.insights = snap.Data
			m.cursor = clamp(m.cursor, 0, len(m.insights)-1)
		}
		m.refresh()
		return m, nil

	case spinnerTickMsg:
		if !m.tracker.Loading() {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m browserModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab", "left", "right":
		m.active = 1 - m.active
		return m, nil
	case "r":
		if m.tracker.Loading() {
			return m, nil
		}
		cmd := m.reloadCmd()
		m.refresh()
		return m, cmd
	}

	if m.active == paneDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "enter":
		m.active = paneDetail
	}
	return m, nil
}

func (m *browserModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, len(m.insights)-1)
	m.refresh()
	m.detail.SetYOffset(0)

	top := m.cursor * itemHeight
	bottom := top + itemHeight - 1
	if top < m.list.YOffset {
		m.list.SetYOffset(top)
	} else if bottom >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(bottom - m.list.Height + 1)
	}
}

func (m *browserModel) layout() {
	// Header (1) + borders (2) + status bar (1).
	h := max(m.height-4, 5)
	dw := max(m.width-listWidth-5, 20)
	if !m.ready {
		m.list = viewport.New(listWidth, h)
		m.detail = viewport.New(dw, h)
		m.ready = true
	} else {
		m.list.Width, m.list.Height = listWidth, h
		m.detail.Width, m.detail.Height = dw, h
	}
	m.refresh()
}

func (m *browserModel) refresh() {
	if !m.ready {
		return
	}
	m.list.SetContent(renderList(m.insights, m.cursor, m.now()))
	if len(m.insights) == 0 {
		m.detail.SetContent("  (no insights stored yet, run `aspireon refresh`)")
		return
	}
	m.detail.SetContent(RenderInsight(m.insights[m.cursor], m.detail.Width, m.now()))
}

func (m browserModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	listBorder, detailBorder := activeBorderStyle, inactiveBorderStyle
	if m.active == paneDetail {
		listBorder, detailBorder = inactiveBorderStyle, activeBorderStyle
	}

	header := headerStyle.Render(fmt.Sprintf("Industry insights (%d)", len(m.insights)))
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		listBorder.Width(m.list.Width).Render(m.list.View()),
		" ",
		detailBorder.Width(m.detail.Width).Render(m.detail.View()),
	)
	return header + "\n" + panes + "\n" + m.statusBar()
}

func (m browserModel) statusBar() string {
	text := " ↑/↓ select  tab switch pane  r reload  q quit"
	snap := m.tracker.Snapshot()
	switch {
	case snap.State == fetch.InFlight:
		text = " " + spinnerFrames[m.frame] + " reloading..." + text
	case snap.Err != nil:
		text = " " + errorStyle.Render("reload failed: "+snap.Err.Error()) + text
	}
	return statusBarStyle.Width(m.width).Render(text)
}

func renderList(insights []model.IndustryInsight, cursor int, now time.Time) string {
	if len(insights) == 0 {
		return "  (no industries)"
	}

	var b strings.Builder
	for i, in := range insights {
		title, sub, prefix := itemStyle, itemSubtitleStyle, "  "
		if i == cursor {
			title, sub, prefix = selectedItemStyle, selectedSubtitleStyle, "> "
		}

		state := "fresh"
		if in.IsStale(now) {
			state = "stale"
		}
		b.WriteString(prefix + title.Render(in.Industry) + "\n")
		b.WriteString(prefix + sub.Render(fmt.Sprintf("%s demand · %s", strings.ToLower(string(in.DemandLevel)), state)) + "\n")
		if i < len(insights)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// RunBrowser loads insights through tracker behind a spinner, then opens the
// full-screen browser. Pressing r in the browser calls tracker again.
func RunBrowser(tracker *fetch.Tracker[struct{}, []model.IndustryInsight], timeout time.Duration) error {
	if _, err := RunLoader("Loading industry insights", tracker, timeout); err != nil {
		return err
	}

	p := tea.NewProgram(newBrowserModel(tracker, timeout), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
