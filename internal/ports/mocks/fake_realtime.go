package mocks

import (
	"context"
	"sync"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/bnema/ibuy-cli/internal/ports"
)

// FakeRealtime is an in-memory ports.Realtime. Emit dispatches a frame to a
// snapshot of the registered handlers, like the websocket manager does.
type FakeRealtime struct {
	mu          sync.Mutex
	connected   bool
	nextID      int
	handlers    map[int]ports.FrameHandler
	order       []int
	Sent        []any
	ConnectedAs []string
	Disconnects int
	ConnectErr  error
	SendErr     error
}

var _ ports.Realtime = (*FakeRealtime)(nil)

func NewFakeRealtime() *FakeRealtime {
	return &FakeRealtime{handlers: map[int]ports.FrameHandler{}}
}

func (f *FakeRealtime) Connect(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ConnectedAs = append(f.ConnectedAs, userID)
	if f.ConnectErr != nil {
		return f.ConnectErr
	}
	f.connected = true
	return nil
}

func (f *FakeRealtime) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Disconnects++
	f.connected = false
	return nil
}

func (f *FakeRealtime) SetConnected(connected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = connected
}

func (f *FakeRealtime) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *FakeRealtime) Send(_ context.Context, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.connected {
		return domain.ErrNotConnected
	}
	if f.SendErr != nil {
		return f.SendErr
	}
	f.Sent = append(f.Sent, payload)
	return nil
}

func (f *FakeRealtime) AddHandler(fn ports.FrameHandler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	f.handlers[id] = fn
	f.order = append(f.order, id)

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.handlers, id)
	}
}

func (f *FakeRealtime) HandlerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

func (f *FakeRealtime) SentFrames() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]any(nil), f.Sent...)
}

func (f *FakeRealtime) Emit(frame domain.InboundFrame) {
	f.mu.Lock()
	snapshot := make([]ports.FrameHandler, 0, len(f.handlers))
	for _, id := range f.order {
		if fn, ok := f.handlers[id]; ok {
			snapshot = append(snapshot, fn)
		}
	}
	f.mu.Unlock()

	for _, fn := range snapshot {
		fn(frame)
	}
}

func (f *FakeRealtime) EmitMessage(msg domain.MessageFrame) {
	f.Emit(domain.InboundFrame{Type: domain.FrameMessage, Message: &msg})
}

func (f *FakeRealtime) EmitNotification(n domain.NotificationFrame) {
	f.Emit(domain.InboundFrame{Type: domain.FrameNotification, Notification: &n})
}
