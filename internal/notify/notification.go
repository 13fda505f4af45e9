package notify

import "time"

// Severity is the visual weight of a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityDanger  Severity = "danger"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError, SeverityDanger:
		return true
	default:
		return false
	}
}

// Notification is a transient, dismissible message. It has no identity
// beyond its placement in a Container; ID only helps views key their rows.
type Notification struct {
	ID        string
	Message   string // may contain markup; views decide how to render it
	Severity  Severity
	Duration  time.Duration
	CreatedAt time.Time

	visible bool
	removed bool
}

// Visible reports whether the entrance transition has run.
func (n *Notification) Visible() bool { return n.visible }

// Class returns the style classes of the notification element.
func (n *Notification) Class() string {
	class := "alert alert-" + string(n.Severity) + " alert-dismissible fade"
	if n.visible {
		class += " show"
	}
	return class
}
