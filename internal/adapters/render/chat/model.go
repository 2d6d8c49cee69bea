// Package chat is the interactive terminal view of one conversation. It is a
// thin bubbletea shell over the chat view-model and the toast bus.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bnema/ibuy-cli/internal/adapters/render/catalog"
	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	statusInterval = time.Second
	inputCharLimit = 1000
	// header line, input line and their borders
	chromeHeight = 4
)

type Conversation interface {
	Key() domain.ConversationKey
	Self() string
	Messages() []domain.Message
	Subscribe(fn func([]domain.Message)) func()
	SetInput(text string)
	Send(ctx context.Context) (bool, error)
	MarkSeen(ctx context.Context) error
}

type Toasts interface {
	Toasts() []domain.Toast
	Subscribe(fn func([]domain.Toast)) func()
	Error(message string) string
	Warning(message string) string
}

type Options struct {
	// Title is shown in the header, e.g. the product name.
	Title string
	// Connected reports the realtime connection state. Nil means always
	// connected.
	Connected func() bool
	Now       func() time.Time
	Input     io.Reader
	Output    io.Writer
}

type (
	messagesMsg []domain.Message
	toastsMsg   []domain.Toast
	statusMsg   bool
	seenMsg     struct{ err error }
	sentMsg     struct {
		text string
		sent bool
		err  error
	}
)

type model struct {
	ctx       context.Context
	conv      Conversation
	toasts    Toasts
	title     string
	connected func() bool
	now       func() time.Time
	styles    styles

	input    textinput.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	messages  []domain.Message
	toastList []domain.Toast
	online    bool
	sending   bool
}

func newModel(ctx context.Context, conv Conversation, toasts Toasts, opts Options) model {
	input := textinput.New()
	input.Placeholder = "Type a message"
	input.CharLimit = inputCharLimit
	input.Focus()

	connected := opts.Connected
	if connected == nil {
		connected = func() bool { return true }
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	title := opts.Title
	if title == "" {
		title = string(conv.Key().ProductID)
	}

	return model{
		ctx:       ctx,
		conv:      conv,
		toasts:    toasts,
		title:     title,
		connected: connected,
		now:       now,
		styles:    newStyles(),
		input:     input,
		messages:  conv.Messages(),
		toastList: toasts.Toasts(),
		online:    connected(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.markSeen(), m.pollStatus())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.send()
		}
	case messagesMsg:
		m.messages = msg
		m.refresh()
		return m, m.markSeen()
	case toastsMsg:
		m.toastList = msg
		if m.ready {
			m.resize(m.width, m.height)
		}
		return m, nil
	case statusMsg:
		m.online = bool(msg)
		return m, m.pollStatus()
	case sentMsg:
		m.sending = false
		if msg.err != nil {
			m.toasts.Error(sendErrorText(msg.err))
			return m, nil
		}
		if msg.sent && m.input.Value() == msg.text {
			m.input.Reset()
		}
		return m, nil
	case seenMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.toasts.Warning("Could not mark messages as seen")
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m model) send() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if m.sending || strings.TrimSpace(text) == "" {
		return m, nil
	}

	m.sending = true
	m.conv.SetInput(text)
	ctx, conv := m.ctx, m.conv
	return m, func() tea.Msg {
		sent, err := conv.Send(ctx)
		return sentMsg{text: text, sent: sent, err: err}
	}
}

func (m model) markSeen() tea.Cmd {
	ctx, conv := m.ctx, m.conv
	return func() tea.Msg {
		return seenMsg{err: conv.MarkSeen(ctx)}
	}
}

func (m model) pollStatus() tea.Cmd {
	connected := m.connected
	return tea.Tick(statusInterval, func(time.Time) tea.Msg {
		return statusMsg(connected())
	})
}

func (m *model) resize(width, height int) {
	bodyHeight := height - chromeHeight - len(m.toastList)
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(width, bodyHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = bodyHeight
	}
	m.width = width
	m.height = height
	m.input.Width = width - 4
	m.refresh()
}

func (m *model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

func (m model) transcript() string {
	if len(m.messages) == 0 {
		return m.styles.empty.Render("No messages yet. Say hello.")
	}

	wrap := lipgloss.NewStyle().Width(m.width)
	lines := make([]string, 0, len(m.messages))
	now := m.now()
	for _, msg := range m.messages {
		lines = append(lines, wrap.Render(catalog.MessageLine(msg, m.conv.Self(), now)))
	}
	return strings.Join(lines, "\n")
}

func (m model) View() string {
	if !m.ready {
		return "Loading conversation..."
	}

	status := m.styles.online.Render("● connected")
	if !m.online {
		status = m.styles.offline.Render("● offline")
	}
	header := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.styles.title.Render(m.title),
		"  ",
		m.styles.meta.Render("with "+m.conv.Key().CounterpartID),
		"  ",
		status,
	)

	parts := []string{header, m.viewport.View()}
	for _, toast := range m.toastList {
		parts = append(parts, m.styles.toast(toast.Kind).Render(toast.Message))
	}
	parts = append(parts, m.styles.input.Render(m.input.View()))
	parts = append(parts, m.styles.help.Render("enter send · esc quit"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func sendErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotConnected):
		return "Not connected. Your message was kept, try again shortly."
	case domain.IsUnauthorized(err):
		return "Session expired. Run `ibuy login` again."
	default:
		return fmt.Sprintf("Message not sent: %v", err)
	}
}

// Run shows the conversation until the user quits or ctx is done.
func Run(ctx context.Context, conv Conversation, toasts Toasts, opts Options) error {
	programOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}

	p := tea.NewProgram(newModel(ctx, conv, toasts, opts), programOpts...)

	stopMessages := conv.Subscribe(func(messages []domain.Message) {
		p.Send(messagesMsg(messages))
	})
	defer stopMessages()
	stopToasts := toasts.Subscribe(func(list []domain.Toast) {
		p.Send(toastsMsg(list))
	})
	defer stopToasts()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
