package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"docent/internal/chat"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("75"))

	modelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("114"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	statusStyle = lipgloss.NewStyle().
			Faint(true)
)

// View renders the chat surface.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("docent chat"))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	if m.waiting {
		sb.WriteString(m.spinner.View())
		sb.WriteString(statusStyle.Render(" thinking..."))
	} else {
		sb.WriteString(m.textarea.View())
	}
	sb.WriteString("\n")

	help := "enter: send | ctrl+s: speak last reply | esc: quit"
	if m.speaker == nil {
		help = "enter: send | esc: quit"
	}
	if m.err != nil {
		help = fmt.Sprintf("speech error: %v", m.err)
	}
	sb.WriteString(statusStyle.Render(help))
	return sb.String()
}

// renderHistory renders the transcript for the viewport.
func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return statusStyle.Render("The document is loaded. Ask a question to begin.")
	}

	var sb strings.Builder
	for _, msg := range m.history {
		switch {
		case msg.Role == chat.RoleUser:
			sb.WriteString(userStyle.Render("You"))
			sb.WriteString("\n")
			sb.WriteString(msg.Text)
		case msg.IsError:
			sb.WriteString(modelStyle.Render("docent"))
			sb.WriteString("\n")
			sb.WriteString(errorStyle.Render(msg.Text))
		default:
			sb.WriteString(modelStyle.Render("docent"))
			sb.WriteString("\n")
			sb.WriteString(m.renderMarkdown(msg.Text))
		}
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// renderMarkdown renders model output, falling back to plain text when
// rendering fails or panics.
func (m Model) renderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		if rendered, err := m.renderer.Render(content); err == nil {
			return strings.TrimSpace(rendered)
		}
	}
	return content
}
