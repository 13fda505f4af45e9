package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/gosuda/planner/internal/client"
	"github.com/gosuda/planner/internal/i18n"
	"github.com/gosuda/planner/internal/notify"
	"github.com/gosuda/planner/internal/util"
	"github.com/gosuda/planner/internal/wire"
)

const (
	leaveCommand = "/leave"
	leaveTimeout = 5 * time.Second
)

func chatCmd() *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "chat <room>",
		Short: "Join a chat room",
		Long: `Join a chat room and send every line read from stdin as a message.

Type /leave or close stdin to leave the room.

Examples:
  planner chat general
  planner chat general --user 3f1c...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), flags, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&flags.userID, "user", "u", "", "User id to chat as (default $PLANNER_USER_ID)")
	cmd.Flags().StringVar(&flags.locale, "locale", "", "Locale for labels and dates (default $PLANNER_LOCALE)")

	return cmd
}

func runChat(ctx context.Context, flags clientFlags, room string, in io.Reader, out io.Writer) error {
	app, cfg, err := newApp(flags, nil, out)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			log.Debug().Err(closeErr).Msg("chat: close")
		}
	}()
	defer app.Errors.Recover()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return chatSession(ctx, app, cfg.Client.Locale, room, in, out)
}

// chatSession connects, joins room and sends every line of in, one after
// another, until in ends, /leave is typed or the connection drops.
func chatSession(ctx context.Context, app *client.App, locale language.Tag, room string, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.Realtime.On(wire.EventMessage, func(env wire.Envelope) {
		var msg wire.MessageEvent
		if err := env.Payload(&msg); err != nil {
			log.Warn().Err(err).Msg("chat: bad message event")
			return
		}
		if msg.Room != room {
			return
		}
		sender := msg.SenderName
		if sender == "" {
			sender = "anonymous"
		}
		fmt.Fprintf(out, "[%s] %s: %s\n", util.FormatTime(msg.Timestamp.Local(), locale), sender, msg.Content)
	})
	app.Realtime.On(wire.EventJoined, func(env wire.Envelope) {
		var p wire.RoomPayload
		if err := env.Payload(&p); err != nil {
			return
		}
		app.ShowNotification(app.Printer.Sprintf(i18n.RoomJoined, p.Room), notify.SeveritySuccess)
	})
	app.Realtime.On(wire.EventError, func(env wire.Envelope) {
		var p wire.ErrorPayload
		if err := env.Payload(&p); err != nil {
			return
		}
		app.ShowNotification(p.Message, notify.SeverityWarning)
	})
	app.Realtime.OnDisconnect(func(error) { cancel() })

	if err := app.Init(ctx); err != nil {
		return err
	}
	if err := app.Chat.JoinRoom(ctx, room); err != nil {
		return err
	}

	lines := make(chan string)
	go scanLines(ctx, in, lines)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok || line == leaveCommand {
				return leave(app, room)
			}
			if line == "" {
				continue
			}
			// One send at a time keeps input order.
			if err := app.Chat.SendMessage(ctx, room, line); err != nil {
				app.Errors.HandleRejection(err)
			}
		}
	}
}

// leave sends a best-effort leave before the connection is closed.
func leave(app *client.App, room string) error {
	ctx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
	defer cancel()
	return app.Chat.LeaveRoom(ctx, room)
}

func scanLines(ctx context.Context, in io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- strings.TrimSpace(scanner.Text()):
		case <-ctx.Done():
			return
		}
	}
}
