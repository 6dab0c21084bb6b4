package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire TUI interface.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	sections := []string{
		m.buildHeader(),
		m.buildTips(),
		"",
		m.viewport.View(),
	}
	if loading := m.buildLoadingIndicator(); loading != "" {
		sections = append(sections, loading)
	}
	sections = append(sections, m.buildInputBox(), m.buildBottomBar())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *model) buildHeader() string {
	return headerStyle.Render("  voxbrowse")
}

func (m *model) buildTips() string {
	return tipsStyle.Render("  Tips: Enter to send • 'help' lists commands • /mute • /unmute • Ctrl+Y copies the last reply • Ctrl+C to exit")
}

func (m *model) buildLoadingIndicator() string {
	if !m.busy {
		return ""
	}
	loadingStyle := lipgloss.NewStyle().
		Foreground(salmonPink).
		Width(m.width-4).
		Padding(0, 2)
	return loadingStyle.Render(fmt.Sprintf("%s Working...", m.spinner.View()))
}

func (m *model) buildInputBox() string {
	return inputBoxStyle.Width(m.width - 4).Render(m.textarea.View())
}

func (m *model) buildBottomBar() string {
	left := m.notice
	right := "voice off"
	if m.voice != nil && m.voice.Enabled() {
		right = "voice on"
	}

	padding := m.width - lipgloss.Width(left) - len(right) - 2
	if padding < 2 {
		padding = 2
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", padding) + right)
}
