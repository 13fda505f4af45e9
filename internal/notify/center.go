// Package notify renders transient toast notifications into a lazily
// created container.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/planner/internal/util"
)

const (
	// DefaultDuration is how long a notification stays when no duration is given.
	DefaultDuration = 5 * time.Second

	entranceDelay = 100 * time.Millisecond
)

// Scheduler runs f once after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (stop func() bool)

// AfterFunc is the real-time Scheduler.
func AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Option configures a Center.
type Option func(*Center)

// WithScheduler replaces the timer source.
func WithScheduler(s Scheduler) Option {
	return func(c *Center) { c.schedule = s }
}

// WithClock replaces the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// Center shows notifications. The container is resolved on first use and
// kept; at most one exists per Center.
type Center struct {
	mu        sync.Mutex
	factory   ContainerFactory
	container Container
	schedule  Scheduler
	now       func() time.Time
}

// NewCenter creates a Center that obtains its container from factory.
func NewCenter(factory ContainerFactory, opts ...Option) *Center {
	c := &Center{
		factory:  factory,
		schedule: AfterFunc,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Setup creates the container if it does not exist yet. Calling it again is
// a no-op. It reports whether a container is available.
func (c *Center) Setup() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureContainer() != nil
}

func (c *Center) ensureContainer() Container {
	if c.container == nil && c.factory != nil {
		c.container = c.factory()
	}
	return c.container
}

// Show appends a notification and schedules its entrance transition and its
// removal after duration (DefaultDuration when zero or negative). An unknown
// severity is shown as info. Without a container Show does nothing and
// returns nil.
func (c *Center) Show(message string, severity Severity, duration time.Duration) *Notification {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if !severity.Valid() {
		severity = SeverityInfo
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	container := c.ensureContainer()
	if container == nil {
		log.Debug().Str("severity", string(severity)).Msg("notify: no container, dropping notification")
		return nil
	}

	n := &Notification{
		ID:        util.GenerateID(),
		Message:   message,
		Severity:  severity,
		Duration:  duration,
		CreatedAt: c.now(),
	}
	container.Append(n)

	c.schedule(duration, func() {
		c.Dismiss(n)
	})
	c.schedule(entranceDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if n.visible || n.removed {
			return
		}
		n.visible = true
		container.Reveal(n)
	})

	return n
}

// Dismiss removes n if it is still present. It is the close affordance of
// a notification and is safe to call more than once.
func (c *Center) Dismiss(n *Notification) bool {
	if n == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.container == nil {
		return false
	}
	n.removed = true
	return c.container.Remove(n)
}

// AutoDismissExisting removes, after the given delay, every notification
// present in the container right now. Hosts call it at startup so alerts
// rendered before the client attached do not linger.
func (c *Center) AutoDismissExisting(after time.Duration) {
	c.mu.Lock()
	container := c.ensureContainer()
	c.mu.Unlock()

	if container == nil {
		return
	}
	for _, n := range container.Notifications() {
		c.schedule(after, func() {
			c.Dismiss(n)
		})
	}
}

// Notifications returns a snapshot of the notifications currently shown.
func (c *Center) Notifications() []*Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.container == nil {
		return nil
	}
	return c.container.Notifications()
}
