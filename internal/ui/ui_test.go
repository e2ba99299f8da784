package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Cyclone1070/fincoach/internal/chat"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockResponder implements Responder for testing.
type MockResponder struct {
	RespondFunc func(ctx context.Context, req chat.Request) (chat.Response, error)
	LastRequest chat.Request
}

func (m *MockResponder) Respond(ctx context.Context, req chat.Request) (chat.Response, error) {
	m.LastRequest = req
	return m.RespondFunc(ctx, req)
}

// PlainRenderer skips markdown rendering in tests.
type PlainRenderer struct{}

func (PlainRenderer) Render(content string, _ int) (string, error) {
	return content, nil
}

func newTestModel(responder Responder) Model {
	m := NewModel(responder, PlainRenderer{}, "demo-user")
	m.width = 80
	m.height = 24
	return m
}

func typeAndSubmit(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model), cmd
}

func TestUpdate_EnterSubmitsAndWaits(t *testing.T) {
	responder := &MockResponder{
		RespondFunc: func(_ context.Context, _ chat.Request) (chat.Response, error) {
			return chat.Response{ConvoID: "c1", BotReply: "hi"}, nil
		},
	}

	m, cmd := typeAndSubmit(t, newTestModel(responder), "hello")

	require.NotNil(t, cmd)
	assert.True(t, m.waiting)
	assert.Empty(t, m.input.Value())
	require.Len(t, m.messages, 1)
	assert.Equal(t, kindUser, m.messages[0].kind)
	assert.Equal(t, "hello", m.messages[0].content)
}

func TestUpdate_EmptyInput_NotSubmitted(t *testing.T) {
	m, cmd := typeAndSubmit(t, newTestModel(&MockResponder{}), "   ")

	assert.Nil(t, cmd)
	assert.False(t, m.waiting)
	assert.Empty(t, m.messages)
}

func TestUpdate_ExitWordQuits(t *testing.T) {
	_, cmd := typeAndSubmit(t, newTestModel(&MockResponder{}), "exit")

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestUpdate_ReplyAppendsAssistantMessageAndHistory(t *testing.T) {
	m, _ := typeAndSubmit(t, newTestModel(&MockResponder{}), "hello")

	updated, _ := m.Update(replyMsg{resp: chat.Response{ConvoID: "c1", BotReply: "hi there"}})
	m = updated.(Model)

	assert.False(t, m.waiting)
	assert.Equal(t, "c1", m.convoID)
	require.Len(t, m.messages, 2)
	assert.Equal(t, kindAssistant, m.messages[1].kind)
	require.Len(t, m.history, 1)
	assert.Equal(t, "hello", m.history[0].User)
	assert.Equal(t, "hi there", m.history[0].Bot)
}

func TestUpdate_RejectionShownAsGuardrailMessage(t *testing.T) {
	m, _ := typeAndSubmit(t, newTestModel(&MockResponder{}), "my ssn is ...")

	updated, _ := m.Update(replyMsg{resp: chat.Response{ConvoID: "c1", Rejected: true, Reason: "no identifiers please"}})
	m = updated.(Model)

	require.Len(t, m.messages, 2)
	assert.Equal(t, kindGuardrail, m.messages[1].kind)
	assert.Equal(t, "no identifiers please", m.messages[1].content)
	assert.Empty(t, m.history, "rejected turns never enter the prompt history")
}

func TestUpdate_ErrorShownWithoutInternals(t *testing.T) {
	m, _ := typeAndSubmit(t, newTestModel(&MockResponder{}), "hello")

	updated, _ := m.Update(replyMsg{err: errors.New("secret internals")})
	m = updated.(Model)

	require.Len(t, m.messages, 2)
	assert.Equal(t, kindError, m.messages[1].kind)
	assert.NotContains(t, m.messages[1].content, "secret internals")
}

func TestSend_CarriesConversationState(t *testing.T) {
	responder := &MockResponder{
		RespondFunc: func(_ context.Context, _ chat.Request) (chat.Response, error) {
			return chat.Response{ConvoID: "c1", BotReply: "ok"}, nil
		},
	}
	m := newTestModel(responder)
	m.convoID = "c1"

	cmd := m.send("follow-up")
	_ = cmd()

	assert.Equal(t, "c1", responder.LastRequest.ConvoID)
	assert.Equal(t, "demo-user", responder.LastRequest.UserID)
	assert.Equal(t, "follow-up", responder.LastRequest.UserText)
}

func TestFormatChat_EmptyTranscript(t *testing.T) {
	out := formatChat(nil, 76, PlainRenderer{})

	assert.Contains(t, out, "No messages yet")
}

func TestFormatChat_LabelsByKind(t *testing.T) {
	out := formatChat([]message{
		{kind: kindUser, content: "hello"},
		{kind: kindGuardrail, content: "off-topic"},
		{kind: kindError, content: "try again"},
	}, 76, PlainRenderer{})

	assert.Contains(t, out, "You: hello")
	assert.Contains(t, out, "[Guardrail] off-topic")
	assert.Contains(t, out, "[Error] try again")
}

func TestFormatChat_RendererFailure_FallsBackToPlainText(t *testing.T) {
	failing := failingRenderer{}

	out := formatChat([]message{{kind: kindAssistant, content: "plain reply"}}, 76, failing)

	assert.True(t, strings.Contains(out, "plain reply"))
}

type failingRenderer struct{}

func (failingRenderer) Render(string, int) (string, error) {
	return "", errors.New("render failed")
}
