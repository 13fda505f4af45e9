package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gosuda/planner/internal/client"
	"github.com/gosuda/planner/internal/config"
	"github.com/gosuda/planner/internal/i18n"
	"github.com/gosuda/planner/internal/notify"
	"github.com/gosuda/planner/internal/status"
	"github.com/gosuda/planner/internal/ui"
)

// clientFlags are shared by every command that talks to a running server.
type clientFlags struct {
	userID string
	locale string
}

// newApp builds a client.App rendering toasts and the connection badge on
// out. Confirmation prompts read a line from in; a nil in disables them.
func newApp(flags clientFlags, in io.Reader, out io.Writer, opts ...notify.Option) (*client.App, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	cc := cfg.Client
	if flags.userID != "" {
		cc.UserID = flags.userID
	}
	if flags.locale != "" {
		cc.Locale = i18n.ParseLocale(flags.locale)
	}

	toasts := ui.NewToasts(out)
	badge := ui.NewBadge(out)
	var confirm client.ConfirmFunc
	if in != nil {
		confirm = promptConfirm(bufio.NewReader(in), out)
	}

	app, err := client.New(client.Config{
		BaseURL:        cc.BaseURL,
		WSURL:          cc.WSURL,
		UserID:         cc.UserID,
		Locale:         cc.Locale,
		NotifyDuration: cc.NotifyDuration,
	}, client.Views{
		Notifications: func() notify.Container { return toasts },
		StatusBadge:   func() status.Badge { return badge },
		Confirm:       confirm,
	}, opts...)
	if err != nil {
		return nil, nil, err
	}
	cfg.Client = cc
	return app, cfg, nil
}

// promptConfirm asks on out and accepts "y" or "yes" from in.
func promptConfirm(in *bufio.Reader, out io.Writer) client.ConfirmFunc {
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}

// flushScheduler shows notifications of one-shot commands right away and
// drops their removal timers, since the process exits first.
type flushScheduler struct {
	wg sync.WaitGroup
}

func (s *flushScheduler) schedule(d time.Duration, f func()) func() bool {
	if d >= time.Second {
		return func() bool { return false }
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		f()
	}()
	return func() bool { return false }
}

// wait blocks until every scheduled entrance has rendered.
func (s *flushScheduler) wait() { s.wg.Wait() }

// runOneShot builds an App for a single request, runs fn and waits for its
// notifications to render before returning.
func runOneShot(flags clientFlags, in io.Reader, out io.Writer, fn func(app *client.App, cfg *config.Config) error) error {
	sched := &flushScheduler{}
	app, cfg, err := newApp(flags, in, out, notify.WithScheduler(sched.schedule))
	if err != nil {
		return err
	}
	defer app.Close()
	defer sched.wait()
	return fn(app, cfg)
}
