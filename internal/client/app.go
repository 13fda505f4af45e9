// Package client bundles everything a chat/task front end needs: task and
// chat commands, toast notifications, the connection badge, the realtime
// connection and the catch-all error handler.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gosuda/planner/internal/i18n"
	"github.com/gosuda/planner/internal/notify"
	"github.com/gosuda/planner/internal/realtime"
	"github.com/gosuda/planner/internal/status"
)

// AlertLifetime is how long alerts already present at startup are kept.
const AlertLifetime = 5 * time.Second

// ConfirmFunc asks the user to confirm a destructive action.
type ConfirmFunc func(prompt string) bool

// Config locates the server and tunes the client.
type Config struct {
	BaseURL        string // HTTP API root, e.g. http://localhost:5002
	WSURL          string // realtime endpoint, e.g. ws://localhost:5002/ws
	UserID         string // optional, sent as user_id on the realtime endpoint
	Locale         language.Tag
	NotifyDuration time.Duration
	HTTPClient     *http.Client
}

// Views are the host-provided view adapters. Every field is optional.
type Views struct {
	Notifications notify.ContainerFactory
	StatusBadge   status.Lookup
	Confirm       ConfirmFunc
}

// App is the single entry point handed to the rest of a front end.
type App struct {
	Tasks    *TaskCommands
	Chat     *ChatCommands
	Notify   *notify.Center
	Status   *status.View
	Realtime *realtime.Client
	Errors   *ErrorHandler
	Printer  *message.Printer

	cfg     Config
	confirm ConfirmFunc
}

// New builds an App. Nothing touches the network until Init.
func New(cfg Config, views Views, notifyOpts ...notify.Option) (*App, error) {
	wsURL, err := realtimeURL(cfg.WSURL, cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("client.New: %w", err)
	}
	if cfg.NotifyDuration <= 0 {
		cfg.NotifyDuration = notify.DefaultDuration
	}

	printer := i18n.Printer(cfg.Locale)
	center := notify.NewCenter(views.Notifications, notifyOpts...)
	rt := realtime.New(wsURL)

	return &App{
		Tasks:    NewTaskCommands(cfg.BaseURL, cfg.HTTPClient),
		Chat:     NewChatCommands(rt),
		Notify:   center,
		Status:   status.NewView(views.StatusBadge, printer),
		Realtime: rt,
		Errors:   NewErrorHandler(center, printer),
		Printer:  printer,
		cfg:      cfg,
		confirm:  views.Confirm,
	}, nil
}

func realtimeURL(raw, userID string) (string, error) {
	if raw == "" {
		return "", errors.New("realtime url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse realtime url: %w", err)
	}
	if userID != "" {
		q := u.Query()
		q.Set("user_id", userID)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Init creates the notification container, schedules removal of alerts
// already on screen, wires the realtime lifecycle to the badge and the
// notifications, and connects. A failed connection has already been
// reported to the user when Init returns its error.
func (a *App) Init(ctx context.Context) error {
	a.Notify.Setup()
	a.Notify.AutoDismissExisting(AlertLifetime)

	a.Realtime.OnConnect(func() {
		a.Status.Update(true)
	})
	a.Realtime.OnDisconnect(func(error) {
		a.Status.Update(false)
	})
	a.Realtime.OnError(func(err error) {
		log.Error().Err(err).Msg("client: realtime error")
		a.Notify.Show(a.Printer.Sprintf(i18n.ConnectionError), notify.SeverityError, a.cfg.NotifyDuration)
	})

	if err := a.Realtime.Connect(ctx); err != nil {
		return fmt.Errorf("client.App.Init: %w", err)
	}
	return nil
}

// Close drops the realtime connection and unregisters the error handler.
func (a *App) Close() error {
	a.Errors.Close()
	if err := a.Realtime.Close(); err != nil {
		return fmt.Errorf("client.App.Close: %w", err)
	}
	return nil
}

// ShowNotification shows message with the configured default duration.
func (a *App) ShowNotification(message string, severity notify.Severity) *notify.Notification {
	return a.Notify.Show(message, severity, a.cfg.NotifyDuration)
}

// DeleteTask asks for confirmation, when a ConfirmFunc is configured, before
// deleting taskID. It reports false without error when the user declines.
func (a *App) DeleteTask(ctx context.Context, taskID string) (*TaskResponse, bool, error) {
	if a.confirm != nil && !a.confirm(a.Printer.Sprintf(i18n.TaskDeleteConfirm, taskID)) {
		return nil, false, nil
	}
	resp, err := a.Tasks.Delete(ctx, taskID)
	if err != nil {
		return nil, true, err
	}
	return resp, true, nil
}
