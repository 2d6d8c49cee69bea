package chat

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/ibuy-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConversation struct {
	key      domain.ConversationKey
	self     string
	messages []domain.Message
	input    string
	sent     []string
	sendErr  error
	seen     int
}

func (c *fakeConversation) Key() domain.ConversationKey { return c.key }
func (c *fakeConversation) Self() string                { return c.self }
func (c *fakeConversation) Messages() []domain.Message  { return c.messages }
func (c *fakeConversation) SetInput(text string)        { c.input = text }

func (c *fakeConversation) Subscribe(func([]domain.Message)) func() {
	return func() {}
}

func (c *fakeConversation) MarkSeen(context.Context) error {
	c.seen++
	return nil
}

func (c *fakeConversation) Send(context.Context) (bool, error) {
	if c.sendErr != nil {
		return false, c.sendErr
	}
	c.sent = append(c.sent, c.input)
	return true, nil
}

type fakeToasts struct {
	list []domain.Toast
}

func (t *fakeToasts) Toasts() []domain.Toast { return t.list }

func (t *fakeToasts) Subscribe(func([]domain.Toast)) func() {
	return func() {}
}

func (t *fakeToasts) Error(message string) string {
	return t.add(message, domain.ToastError)
}

func (t *fakeToasts) Warning(message string) string {
	return t.add(message, domain.ToastWarning)
}

func (t *fakeToasts) add(message string, kind domain.ToastKind) string {
	t.list = append(t.list, domain.Toast{ID: message, Message: message, Kind: kind})
	return message
}

var now = time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

func newTestModel(conv *fakeConversation, toasts *fakeToasts) model {
	m := newModel(context.Background(), conv, toasts, Options{
		Title: "Desk lamp",
		Now:   func() time.Time { return now },
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(model)
}

func TestViewShowsHistoryAndHeader(t *testing.T) {
	conv := &fakeConversation{
		key:  domain.ConversationKey{ProductID: "p1", CounterpartID: "u2"},
		self: "u1",
		messages: []domain.Message{
			{ID: "m1", Sender: "u2", Content: "still available?", CreatedAt: now.Add(-5 * time.Minute)},
			{ID: "m2", Sender: "u1", Content: "yes"},
		},
	}

	view := newTestModel(conv, &fakeToasts{}).View()

	assert.Contains(t, view, "Desk lamp")
	assert.Contains(t, view, "with u2")
	assert.Contains(t, view, "connected")
	assert.Contains(t, view, "5 minutes ago u2: still available?")
	assert.Contains(t, view, "you: yes")
}

func TestViewBeforeResizeIsLoading(t *testing.T) {
	m := newModel(context.Background(), &fakeConversation{}, &fakeToasts{}, Options{})
	assert.Equal(t, "Loading conversation...", m.View())
}

func TestEnterSendsInputAndClearsItOnSuccess(t *testing.T) {
	conv := &fakeConversation{key: domain.ConversationKey{ProductID: "p1", CounterpartID: "u2"}, self: "u1"}
	m := newTestModel(conv, &fakeToasts{})
	m.input.SetValue("hello")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(model)
	require.NotNil(t, cmd)
	assert.True(t, m.sending)

	updated, _ = m.Update(cmd())
	m = updated.(model)

	assert.Equal(t, []string{"hello"}, conv.sent)
	assert.False(t, m.sending)
	assert.Empty(t, m.input.Value())
}

func TestEnterIgnoresBlankInput(t *testing.T) {
	conv := &fakeConversation{key: domain.ConversationKey{ProductID: "p1", CounterpartID: "u2"}}
	m := newTestModel(conv, &fakeToasts{})
	m.input.SetValue("   ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, conv.input)
}

func TestSendWhileDisconnectedKeepsInputAndShowsToast(t *testing.T) {
	conv := &fakeConversation{
		key:     domain.ConversationKey{ProductID: "p1", CounterpartID: "u2"},
		sendErr: domain.ErrNotConnected,
	}
	toasts := &fakeToasts{}
	m := newTestModel(conv, toasts)
	m.input.SetValue("hello")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated, _ = updated.(model).Update(cmd())
	updated, _ = updated.(model).Update(toastsMsg(toasts.list))
	m = updated.(model)

	assert.Equal(t, "hello", m.input.Value())
	require.Len(t, toasts.list, 1)
	assert.Equal(t, domain.ToastError, toasts.list[0].Kind)
	assert.Contains(t, m.View(), "Not connected")
}

func TestLiveMessagesReplaceTranscriptAndMarkSeen(t *testing.T) {
	conv := &fakeConversation{key: domain.ConversationKey{ProductID: "p1", CounterpartID: "u2"}, self: "u1"}
	m := newTestModel(conv, &fakeToasts{})
	assert.Contains(t, m.View(), "No messages yet")

	updated, cmd := m.Update(messagesMsg{{ID: "m3", Sender: "u2", Content: "hi there"}})
	m = updated.(model)
	require.NotNil(t, cmd)
	cmd()

	assert.Contains(t, m.View(), "u2: hi there")
	assert.Equal(t, 1, conv.seen)
}

func TestStatusMessageShowsOffline(t *testing.T) {
	conv := &fakeConversation{key: domain.ConversationKey{ProductID: "p1", CounterpartID: "u2"}}
	m := newTestModel(conv, &fakeToasts{})

	updated, _ := m.Update(statusMsg(false))

	assert.Contains(t, updated.(model).View(), "offline")
}

func TestToastsShrinkTranscriptToKeepInputVisible(t *testing.T) {
	m := newTestModel(&fakeConversation{}, &fakeToasts{})
	full := m.viewport.Height

	updated, _ := m.Update(toastsMsg{
		{ID: "t1", Message: "saved", Kind: domain.ToastSuccess},
		{ID: "t2", Message: "offline", Kind: domain.ToastWarning},
	})
	m = updated.(model)
	assert.Equal(t, full-2, m.viewport.Height)

	updated, _ = m.Update(toastsMsg{})
	assert.Equal(t, full, updated.(model).viewport.Height)
}

func TestEscQuits(t *testing.T) {
	m := newTestModel(&fakeConversation{}, &fakeToasts{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestSendErrorText(t *testing.T) {
	assert.Contains(t, sendErrorText(&domain.AuthError{Status: 401}), "ibuy login")
	assert.Contains(t, sendErrorText(&domain.HTTPError{Status: 500, Message: "boom"}), "Message not sent: boom")
}
