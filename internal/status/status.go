// Package status reflects the realtime connection state onto a badge.
package status

import (
	"sync"

	"golang.org/x/text/message"

	"github.com/gosuda/planner/internal/i18n"
)

// Style classes applied to the badge.
const (
	ClassOnline  = "badge bg-success"
	ClassOffline = "badge bg-danger"
)

// Badge is the view adapter for the connection-status element.
type Badge interface {
	SetText(text string)
	SetClass(class string)
}

// Lookup finds the badge. It returns nil when the host has no such element.
type Lookup func() Badge

// View renders the connection state. A View with no badge does nothing.
type View struct {
	lookup  Lookup
	printer *message.Printer

	mu        sync.Mutex
	connected bool
}

// NewView returns a View rendering labels with printer.
func NewView(lookup Lookup, printer *message.Printer) *View {
	return &View{lookup: lookup, printer: printer}
}

// Update records the connection state and renders it, if a badge exists.
func (v *View) Update(connected bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.connected = connected

	if v.lookup == nil {
		return
	}
	badge := v.lookup()
	if badge == nil {
		return
	}

	if connected {
		badge.SetText(v.printer.Sprintf(i18n.StatusOnline))
		badge.SetClass(ClassOnline)
		return
	}
	badge.SetText(v.printer.Sprintf(i18n.StatusOffline))
	badge.SetClass(ClassOffline)
}

// Connected returns the last state passed to Update.
func (v *View) Connected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.connected
}
