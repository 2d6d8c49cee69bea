package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/bnema/ibuy-cli/internal/adapters/render/catalog"
	"github.com/bnema/ibuy-cli/internal/adapters/render/chat"
	"github.com/bnema/ibuy-cli/internal/application"
	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newChatsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "chats",
		Short: "List conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var chats []domain.ChatSummary
			err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching conversations...", func(ctx context.Context) error {
				var err error
				chats, err = app.catalog.Chats(ctx)
				return err
			})
			if err != nil {
				return sessionError(err)
			}

			if asJSON {
				return writeJSON(cmd, chats)
			}
			return writeView(cmd, app, catalog.Chats(chats))
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

type conversationFlags struct {
	productID     string
	counterpartID string
}

func (f *conversationFlags) bind(cmd *cobra.Command, counterpartFlag, counterpartUsage string) {
	cmd.Flags().StringVar(&f.productID, "product", "", "Product ID the conversation is about")
	cmd.Flags().StringVar(&f.counterpartID, counterpartFlag, "", counterpartUsage)
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired(counterpartFlag)
}

func (f conversationFlags) key() domain.ConversationKey {
	return domain.ConversationKey{
		ProductID:     domain.ProductID(f.productID),
		CounterpartID: f.counterpartID,
	}
}

func newChatCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to a buyer or seller about a product",
	}

	cmd.AddCommand(newChatOpenCmd(app), newChatSendCmd(app), newChatHistoryCmd(app), newChatOnlineCmd(app))

	return cmd
}

func newChatOpenCmd(app *app) *cobra.Command {
	var flags conversationFlags

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open an interactive conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if _, err := app.requireUser(ctx, true); err != nil {
				return err
			}

			view, err := app.openChat(ctx, flags.key())
			if err != nil {
				return err
			}
			defer view.Close()

			stopRelay := application.RelayNotifications(app.realtime, app.toasts)
			defer stopRelay()

			return app.runChat(ctx, view, app.toasts, chat.Options{
				Title:     app.productTitle(ctx, flags.key().ProductID),
				Connected: app.realtime.Connected,
				Now:       app.now,
				Input:     cmd.InOrStdin(),
				Output:    cmd.OutOrStdout(),
			})
		},
	}

	flags.bind(cmd, "with", "User ID of the other participant")

	return cmd
}

func newChatSendCmd(app *app) *cobra.Command {
	var flags conversationFlags

	cmd := &cobra.Command{
		Use:   "send TEXT",
		Short: "Send one message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireUser(cmd.Context(), true); err != nil {
				return err
			}

			view, err := app.openChat(cmd.Context(), flags.key())
			if err != nil {
				return err
			}
			defer view.Close()

			view.SetInput(strings.Join(args, " "))
			sent, err := view.Send(cmd.Context())
			if err != nil {
				return sessionError(err)
			}
			if !sent {
				return errors.New("message is empty")
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Sent to %s\n", flags.counterpartID)
			return err
		},
	}

	flags.bind(cmd, "to", "User ID of the recipient")

	return cmd
}

func newChatHistoryCmd(app *app) *cobra.Command {
	var flags conversationFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the messages of a conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := app.requireUser(cmd.Context(), false)
			if err != nil {
				return err
			}

			view, err := app.openChat(cmd.Context(), flags.key())
			if err != nil {
				return err
			}
			defer view.Close()

			messages := view.Messages()
			if asJSON {
				return writeJSON(cmd, messages)
			}
			return writeView(cmd, app, catalog.Messages(messages, user.UserID, app.now()))
		},
	}

	flags.bind(cmd, "with", "User ID of the other participant")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newChatOnlineCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "online",
		Short: "List users connected to the chat hub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := app.api.OnlineUsers(cmd.Context())
			if err != nil {
				return sessionError(err)
			}
			if asJSON {
				return writeJSON(cmd, users)
			}

			out := cmd.OutOrStdout()
			if len(users) == 0 {
				_, err = fmt.Fprintln(out, "Nobody is online")
				return err
			}
			for _, id := range users {
				if _, err := fmt.Fprintln(out, id); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func (a *app) openChat(ctx context.Context, key domain.ConversationKey) (*application.ChatView, error) {
	view, err := application.OpenChatView(ctx, application.ChatDeps{
		API:      a.api,
		Realtime: a.realtime,
		Session:  a.session,
		Logger:   a.logger.Named("chat"),
	}, key)
	if err != nil {
		return nil, sessionError(err)
	}
	return view, nil
}

func (a *app) productTitle(ctx context.Context, id domain.ProductID) string {
	product, err := a.catalog.Product(ctx, id)
	if err != nil || product.Name == "" {
		a.logger.Debug("product title unavailable", zap.String("product_id", string(id)), zap.Error(err))
		return string(id)
	}
	return product.Name
}
