// Package ui provides the interactive terminal chat client built on
// Bubble Tea.
package ui

import (
	"context"
	"strings"

	"github.com/Cyclone1070/fincoach/internal/chat"
	"github.com/Cyclone1070/fincoach/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Responder handles one chat turn. *chat.Service satisfies it.
type Responder interface {
	Respond(ctx context.Context, req chat.Request) (chat.Response, error)
}

type messageKind int

const (
	kindUser messageKind = iota
	kindAssistant
	kindGuardrail
	kindError
)

type message struct {
	kind    messageKind
	content string
}

type replyMsg struct {
	resp chat.Response
	err  error
}

// Model implements tea.Model for the chat REPL.
type Model struct {
	responder Responder
	renderer  MarkdownRenderer
	userID    string

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model

	messages []message
	history  []domain.Exchange
	convoID  string
	waiting  bool
	width    int
	height   int
}

// NewModel creates the REPL model.
func NewModel(responder Responder, renderer MarkdownRenderer, userID string) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about your finances... (ctrl+c to quit)"
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		responder: responder,
		renderer:  renderer,
		userID:    userID,
		input:     ti,
		viewport:  vp,
		spin:      sp,
	}
}

// Run starts the REPL and blocks until the user exits.
func Run(responder Responder, userID string) error {
	model := NewModel(responder, NewGlamourRenderer(), userID)
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4 // Reserve space for input and status
		m.refreshViewport()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case replyMsg:
		m.waiting = false
		switch {
		case msg.err != nil:
			m.messages = append(m.messages, message{kind: kindError, content: "Something went wrong. Please try again."})
		case msg.resp.Rejected:
			m.convoID = msg.resp.ConvoID
			m.messages = append(m.messages, message{kind: kindGuardrail, content: msg.resp.Reason})
		default:
			m.convoID = msg.resp.ConvoID
			m.messages = append(m.messages, message{kind: kindAssistant, content: msg.resp.BotReply})
			m.history = append(m.history, domain.Exchange{
				User: m.messages[len(m.messages)-2].content,
				Bot:  msg.resp.BotReply,
			})
		}
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.waiting {
			return m, nil
		}
		if text == "exit" || text == "quit" {
			return m, tea.Quit
		}

		m.messages = append(m.messages, message{kind: kindUser, content: text})
		m.refreshViewport()
		m.input.SetValue("")
		m.waiting = true
		return m, tea.Batch(m.spin.Tick, m.send(text))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send runs the chat turn off the UI loop and reports back as a replyMsg.
func (m Model) send(text string) tea.Cmd {
	responder := m.responder
	req := chat.Request{
		UserID:   m.userID,
		ConvoID:  m.convoID,
		UserText: text,
		History:  m.history,
	}
	return func() tea.Msg {
		resp, err := responder.Respond(context.Background(), req)
		return replyMsg{resp: resp, err: err}
	}
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(formatChat(m.messages, m.width-4, m.renderer))
	m.viewport.GotoBottom()
}
