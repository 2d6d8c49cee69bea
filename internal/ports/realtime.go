package ports

import (
	"context"

	"github.com/bnema/ibuy-cli/internal/domain"
)

// FrameHandler receives every known inbound frame while registered.
type FrameHandler func(frame domain.InboundFrame)

type Realtime interface {
	Connect(ctx context.Context, userID string) error
	Disconnect() error
	Connected() bool
	Send(ctx context.Context, payload any) error
	// AddHandler registers fn and returns a function that removes it.
	AddHandler(fn FrameHandler) (unsubscribe func())
}
