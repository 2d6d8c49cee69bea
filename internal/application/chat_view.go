package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/bnema/ibuy-cli/internal/ports"
	"go.uber.org/zap"
)

var ErrChatClosed = errors.New("chat view is closed")

const viewFrameTimeout = 5 * time.Second

type ChatDeps struct {
	API      ports.ChatAPI
	Realtime ports.Realtime
	Session  *SessionStore
	Logger   *zap.Logger
}

// ChatView is the state of one open conversation: the message list and the
// unsent input. Live messages are merged into the fetched history by id.
type ChatView struct {
	api      ports.ChatAPI
	realtime ports.Realtime
	session  *SessionStore
	logger   *zap.Logger
	key      domain.ConversationKey
	self     string

	mu          sync.Mutex
	messages    []domain.Message
	seen        map[string]struct{}
	pending     []domain.Message
	seeded      bool
	input       string
	closed      bool
	unsubscribe func()
	subs        listeners[[]domain.Message]
}

// OpenChatView subscribes to live messages first and then fetches history,
// so nothing pushed while the fetch is in flight is lost.
func OpenChatView(ctx context.Context, deps ChatDeps, key domain.ConversationKey) (*ChatView, error) {
	if key.ProductID == "" || key.CounterpartID == "" {
		return nil, &domain.ValidationError{Field: "conversation", Message: "product and counterpart are required"}
	}
	user, ok := deps.Session.User()
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	view := &ChatView{
		api:      deps.API,
		realtime: deps.Realtime,
		session:  deps.Session,
		logger:   logger,
		key:      key,
		self:     user.UserID,
		seen:     map[string]struct{}{},
	}
	view.unsubscribe = deps.Realtime.AddHandler(view.onFrame)

	history, err := deps.API.Messages(ctx, key.ProductID, key.CounterpartID)
	if err != nil {
		view.unsubscribe()
		return nil, fmt.Errorf("load chat history: %w", clearOnUnauthorized(deps.Session, err))
	}
	view.seed(history)

	view.sendViewFrame(ctx, key.ProductID)
	return view, nil
}

func (v *ChatView) Key() domain.ConversationKey {
	return v.key
}

func (v *ChatView) Self() string {
	return v.self
}

func (v *ChatView) seed(history []domain.Message) {
	v.mu.Lock()
	for _, msg := range history {
		v.appendLocked(msg)
	}
	for _, msg := range v.pending {
		v.appendLocked(msg)
	}
	v.pending = nil
	v.seeded = true
	v.mu.Unlock()

	v.subs.notify(v.Messages)
}

func (v *ChatView) onFrame(frame domain.InboundFrame) {
	if frame.Type != domain.FrameMessage || frame.Message == nil {
		return
	}
	live := frame.Message
	if !v.key.Involves(v.self, live.ProductID, live.Sender, live.Receiver) {
		return
	}
	v.add(live.Message())
}

func (v *ChatView) add(msg domain.Message) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	if !v.seeded {
		v.pending = append(v.pending, msg)
		v.mu.Unlock()
		return
	}
	added := v.appendLocked(msg)
	v.mu.Unlock()

	if added {
		v.subs.notify(v.Messages)
	}
}

// appendLocked adds msg unless a message with the same id is already listed.
// Messages without an id are always appended.
func (v *ChatView) appendLocked(msg domain.Message) bool {
	if msg.ID != "" {
		if _, dup := v.seen[msg.ID]; dup {
			return false
		}
		v.seen[msg.ID] = struct{}{}
	}
	v.messages = append(v.messages, msg)
	return true
}

func (v *ChatView) Messages() []domain.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// Subscribe calls fn with the full message list after every change.
func (v *ChatView) Subscribe(fn func([]domain.Message)) func() {
	return v.subs.add(fn)
}

func (v *ChatView) SetInput(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.input = text
}

func (v *ChatView) Input() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.input
}

// Send posts the current input. Blank input is ignored and reported as not
// sent. On any failure the input is kept so nothing typed is lost.
func (v *ChatView) Send(ctx context.Context) (bool, error) {
	v.mu.Lock()
	closed := v.closed
	input := v.input
	v.mu.Unlock()

	if closed {
		return false, ErrChatClosed
	}
	content := strings.TrimSpace(input)
	if content == "" {
		return false, nil
	}
	if !v.realtime.Connected() {
		return false, domain.ErrNotConnected
	}

	msg, err := v.api.SendMessage(ctx, domain.SendMessageRequest{
		Content:   content,
		Receiver:  v.key.CounterpartID,
		ProductID: v.key.ProductID,
	})
	if err != nil {
		return false, fmt.Errorf("send message: %w", clearOnUnauthorized(v.session, err))
	}

	v.mu.Lock()
	if v.input == input {
		v.input = ""
	}
	v.mu.Unlock()

	v.add(msg)
	return true, nil
}

// MarkSeen marks the counterpart's messages in this conversation as read.
func (v *ChatView) MarkSeen(ctx context.Context) error {
	if err := v.api.MarkSeen(ctx, v.key.CounterpartID); err != nil {
		return fmt.Errorf("mark messages seen: %w", clearOnUnauthorized(v.session, err))
	}

	v.mu.Lock()
	changed := false
	for i := range v.messages {
		if v.messages[i].Sender == v.key.CounterpartID && !v.messages[i].Seen {
			v.messages[i].Seen = true
			changed = true
		}
	}
	v.mu.Unlock()

	if changed {
		v.subs.notify(v.Messages)
	}
	return nil
}

// Close stops live updates for this view. The shared connection stays open.
func (v *ChatView) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()

	v.unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), viewFrameTimeout)
	defer cancel()
	v.sendViewFrame(ctx, "")
}

func (v *ChatView) sendViewFrame(ctx context.Context, productID domain.ProductID) {
	if !v.realtime.Connected() {
		return
	}
	if err := v.realtime.Send(ctx, domain.NewUpdateViewFrame(productID)); err != nil {
		v.logger.Debug("update_view not sent", zap.String("product_id", string(productID)), zap.Error(err))
	}
}

func (v *ChatView) snapshotLocked() []domain.Message {
	return append([]domain.Message{}, v.messages...)
}
