package notify

import "sync"

// Container is the view adapter holding rendered notifications. Center
// serialises its calls, so implementations need no locking of their own
// unless they are read from elsewhere.
type Container interface {
	// Append adds n after every notification already present.
	Append(n *Notification)
	// Reveal re-renders n after its entrance transition; n.Visible() is
	// already true when it is called.
	Reveal(n *Notification)
	// Remove deletes n and reports whether it was still present.
	Remove(n *Notification) bool
	// Notifications returns the notifications currently present, oldest first.
	Notifications() []*Notification
}

// ContainerFactory finds or creates the notification container. Returning
// nil means no container can exist (no host view), which turns Show into a
// no-op.
type ContainerFactory func() Container

// MemoryContainer is an ordered, in-memory Container. It backs headless
// clients and tests.
type MemoryContainer struct {
	mu    sync.Mutex
	items []*Notification
}

// NewMemoryContainer returns an empty MemoryContainer.
func NewMemoryContainer() *MemoryContainer {
	return &MemoryContainer{}
}

func (m *MemoryContainer) Append(n *Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, n)
}

// Reveal is a no-op: there is nothing to re-render.
func (m *MemoryContainer) Reveal(*Notification) {}

func (m *MemoryContainer) Remove(n *Notification) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.items {
		if it == n {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true
		}
	}
	return false
}

func (m *MemoryContainer) Notifications() []*Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Notification, len(m.items))
	copy(out, m.items)
	return out
}

// Len returns the number of notifications present.
func (m *MemoryContainer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
