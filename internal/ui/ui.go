// Package ui renders notifications and the connection badge on a terminal.
package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/gosuda/planner/internal/notify"
	"github.com/gosuda/planner/internal/status"
)

var (
	colorInfo    = lipgloss.Color("#5f9fb0")
	colorSuccess = lipgloss.Color("#2ecc71")
	colorWarning = lipgloss.Color("#f39c12")
	colorDanger  = lipgloss.Color("#d16d7a")
	colorMuted   = lipgloss.Color("#6c757d")
)

var severityIcons = map[notify.Severity]string{
	notify.SeverityInfo:    "i",
	notify.SeveritySuccess: "✔",
	notify.SeverityWarning: "!",
	notify.SeverityError:   "✖",
	notify.SeverityDanger:  "✖",
}

// Toasts is a notify.Container that prints each notification once its
// entrance transition runs. A terminal cannot take a line back, so removal
// only updates the list of live notifications.
type Toasts struct {
	mu     sync.Mutex
	w      io.Writer
	items  []*notify.Notification
	styles map[notify.Severity]lipgloss.Style
}

// NewToasts returns Toasts writing to w.
func NewToasts(w io.Writer) *Toasts {
	r := lipgloss.NewRenderer(w)
	base := r.NewStyle().Bold(true)
	return &Toasts{
		w: w,
		styles: map[notify.Severity]lipgloss.Style{
			notify.SeverityInfo:    base.Foreground(colorInfo),
			notify.SeveritySuccess: base.Foreground(colorSuccess),
			notify.SeverityWarning: base.Foreground(colorWarning),
			notify.SeverityError:   base.Foreground(colorDanger),
			notify.SeverityDanger:  base.Foreground(colorDanger),
		},
	}
}

func (t *Toasts) Append(n *notify.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, n)
}

func (t *Toasts) Reveal(n *notify.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	style, ok := t.styles[n.Severity]
	if !ok {
		style = t.styles[notify.SeverityInfo]
	}
	icon := severityIcons[n.Severity]
	if icon == "" {
		icon = severityIcons[notify.SeverityInfo]
	}
	_, _ = fmt.Fprintln(t.w, style.Render(icon+" "+n.Message))
}

func (t *Toasts) Remove(n *notify.Notification) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, it := range t.items {
		if it == n {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Toasts) Notifications() []*notify.Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*notify.Notification(nil), t.items...)
}

// Badge is a status.Badge printed as a single line. status.View sets the
// text first and the class last, so the line is printed on SetClass.
type Badge struct {
	mu      sync.Mutex
	w       io.Writer
	text    string
	class   string
	online  lipgloss.Style
	offline lipgloss.Style
	other   lipgloss.Style
}

// NewBadge returns a Badge writing to w.
func NewBadge(w io.Writer) *Badge {
	r := lipgloss.NewRenderer(w)
	return &Badge{
		w:       w,
		online:  r.NewStyle().Bold(true).Foreground(colorSuccess),
		offline: r.NewStyle().Bold(true).Foreground(colorDanger),
		other:   r.NewStyle().Foreground(colorMuted),
	}
}

func (b *Badge) SetText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
}

func (b *Badge) SetClass(class string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if class == b.class {
		return
	}
	b.class = class

	style := b.other
	switch class {
	case status.ClassOnline:
		style = b.online
	case status.ClassOffline:
		style = b.offline
	}
	_, _ = fmt.Fprintln(b.w, style.Render("● "+b.text))
}

// Text returns the current label.
func (b *Badge) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Class returns the current style class.
func (b *Badge) Class() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.class
}
