package application

import (
	"fmt"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/bnema/ibuy-cli/internal/ports"
)

const maxToastPreview = 60

// RelayNotifications turns notification frames into info toasts until the
// returned function is called. Message frames are left to open chat views.
func RelayNotifications(realtime ports.Realtime, toasts *ToastBus) func() {
	return realtime.AddHandler(func(frame domain.InboundFrame) {
		if frame.Type != domain.FrameNotification || frame.Notification == nil {
			return
		}
		toasts.Info(notificationText(*frame.Notification))
	})
}

func notificationText(n domain.NotificationFrame) string {
	preview := []rune(n.Content)
	text := string(preview)
	if len(preview) > maxToastPreview {
		text = string(preview[:maxToastPreview-1]) + "…"
	}
	if n.ProductID == "" {
		return fmt.Sprintf("New message: %s", text)
	}
	return fmt.Sprintf("New message about %s: %s", n.ProductID, text)
}
