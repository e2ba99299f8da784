package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	guardrailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle    = lipgloss.NewStyle().Faint(true)
)

// MarkdownRenderer renders assistant markdown for the terminal.
type MarkdownRenderer interface {
	Render(content string, width int) (string, error)
}

// GlamourRenderer renders markdown using glamour.
type GlamourRenderer struct{}

// NewGlamourRenderer creates a GlamourRenderer.
func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{}
}

// Render renders content wrapped to width.
func (g *GlamourRenderer) Render(content string, width int) (string, error) {
	if width < 20 {
		width = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}

// View renders the UI.
func (m Model) View() string {
	var status string
	if m.waiting {
		status = statusStyle.Render(m.spin.View() + " Thinking...")
	} else {
		status = statusStyle.Render("Ready")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.input.View(),
		status,
	)
}

// formatChat formats the transcript for the viewport.
func formatChat(messages []message, width int, renderer MarkdownRenderer) string {
	if len(messages) == 0 {
		return "No messages yet. Type a message to start."
	}

	var lines []string
	for _, msg := range messages {
		switch msg.kind {
		case kindUser:
			lines = append(lines, userStyle.Render("You: "+msg.content))
		case kindGuardrail:
			lines = append(lines, guardrailStyle.Render("[Guardrail] "+msg.content))
		case kindError:
			lines = append(lines, errorStyle.Render("[Error] "+msg.content))
		default:
			rendered, err := renderer.Render(msg.content, width)
			if err != nil {
				// Fall back to plain text
				lines = append(lines, "Coach: "+msg.content)
			} else {
				lines = append(lines, strings.TrimRight(rendered, "\n"))
			}
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
