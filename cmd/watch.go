package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/bnema/ibuy-cli/internal/adapters/realtime"
	"github.com/bnema/ibuy-cli/internal/application"
	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream incoming messages and notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			out := &lockedWriter{w: cmd.OutOrStdout()}
			app.realtime.OnStateChange = func(state realtime.State) {
				out.printf("connection %s\n", state)
			}

			stopRelay := application.RelayNotifications(app.realtime, app.toasts)
			defer stopRelay()

			stopMessages := app.realtime.AddHandler(func(frame domain.InboundFrame) {
				if frame.Type != domain.FrameMessage || frame.Message == nil {
					return
				}
				msg := frame.Message
				out.printf("[%s] %s: %s\n", msg.ProductID, msg.Sender, msg.Content)
			})
			defer stopMessages()

			stopToasts := app.toasts.Subscribe(func(toasts []domain.Toast) {
				for _, toast := range toasts {
					out.printOnce(toast.ID, "%s: %s\n", toast.Kind, toast.Message)
				}
			})
			defer stopToasts()

			// Handlers are in place before the socket opens so frames pushed
			// right after the handshake are printed.
			user, err := app.requireUser(ctx, true)
			if err != nil {
				return err
			}
			out.printf("Watching as %s, press Ctrl+C to stop\n", user.DisplayName())

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Stop after this long (default: until interrupted)")

	return cmd
}

type lockedWriter struct {
	mu      sync.Mutex
	w       io.Writer
	printed map[string]struct{}
}

func (l *lockedWriter) printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(l.w, format, args...)
}

// printOnce writes at most once per key.
func (l *lockedWriter) printOnce(key, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.printed[key]; ok {
		return
	}
	if l.printed == nil {
		l.printed = map[string]struct{}{}
	}
	l.printed[key] = struct{}{}
	_, _ = fmt.Fprintf(l.w, format, args...)
}
