package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxActivity = 200

type activityEntry struct {
	at    time.Time
	label string
	err   error
}

// activityModel lists recent action outcomes, newest first, so failures
// that only get logged (like optimistic status updates) stay visible.
type activityModel struct {
	styles styles

	width  int
	height int
	vp     viewport.Model

	entries []activityEntry
}

func newActivityModel(st styles) activityModel {
	vp := viewport.New(0, 0)
	vp.MouseWheelEnabled = false
	return activityModel{styles: st, vp: vp}
}

func (m *activityModel) add(e activityEntry) {
	m.entries = append([]activityEntry{e}, m.entries...)
	if len(m.entries) > maxActivity {
		m.entries = m.entries[:maxActivity]
	}
	m.vp.SetContent(m.renderBody())
}

func (m *activityModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.vp.Width = max(1, w)
	m.vp.Height = max(1, h-2)
	m.vp.SetContent(m.renderBody())
}

func (m activityModel) Update(msg tea.Msg) (activityModel, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m activityModel) View() string {
	head := fmt.Sprintf("Activity (%d)  esc=close", len(m.entries))
	headStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("22")).Padding(0, 1)
	return lipgloss.JoinVertical(lipgloss.Top, headStyle.Width(m.width).Render(head), m.vp.View())
}

func (m activityModel) renderBody() string {
	if len(m.entries) == 0 {
		return "(nothing yet)"
	}
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		ts := e.at.Format("15:04:05")
		if e.err != nil {
			lines = append(lines, m.styles.StatusWarn.Render(fmt.Sprintf("%s  ✗ %s: %v", ts, e.label, e.err)))
			continue
		}
		lines = append(lines, m.styles.StatusValue.Render(fmt.Sprintf("%s  ✓ %s", ts, e.label)))
	}
	return strings.Join(lines, "\n")
}
