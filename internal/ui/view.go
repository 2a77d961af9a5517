package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sleepat/internal/timer"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	timerDisplayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69")).
				Bold(true)

	timerRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)
)

func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(m.width).Render(m.text("app_title")))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.timerView()))
	sb.WriteString("\n")

	if m.Err != nil {
		sb.WriteString(errorStyle.Render(m.Err.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString(m.help.View(m.keys))

	return sb.String()
}

func (m *Model) timerView() string {
	st := m.State

	remaining := timer.FormatRemaining(st.RemainingSeconds)
	if st.Running {
		remaining = timerRunningStyle.Render(remaining)
	} else {
		remaining = timerDisplayStyle.Render(remaining)
	}

	state := inactiveStyle.Render(m.text("ui_idle"))
	if st.Running {
		state = runningStyle.Render(m.text("ui_running"))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n\n",
		labelStyle.Render(m.text("ui_selected")+":"),
		m.catalog.Textf(m.Language, "ui_minutes", st.SelectedMinutes()),
	)
	fmt.Fprintf(&sb, "%s %s\n\n", labelStyle.Render(m.text("ui_remaining")+":"), remaining)
	sb.WriteString(m.progress.ViewAs(st.Progress()))
	fmt.Fprintf(&sb, "\n\n%s\n", state)
	fmt.Fprintf(&sb, "%s %s", labelStyle.Render(m.text("ui_language")+":"), m.Language)

	return boxStyle.Render(sb.String())
}

func (m *Model) text(key string) string {
	return m.catalog.Text(m.Language, key)
}
