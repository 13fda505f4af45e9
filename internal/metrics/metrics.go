// Package metrics holds the Prometheus collectors of the planner server.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "planner"

// UnknownEvent labels inbound frames whose event name is not part of the
// protocol. Client-chosen names never become label values.
const UnknownEvent = "unknown"

// inboundEvents are the event names a client may send.
var inboundEvents = map[string]bool{"join": true, "leave": true, "message": true} //nolint:gochecknoglobals // static

// Metrics groups the server collectors. A nil *Metrics is valid and records
// nothing, so handlers can be built without a registry in tests.
type Metrics struct {
	connections     prometheus.Gauge
	roomSubscribers *prometheus.GaugeVec
	eventsTotal     *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	mu    sync.Mutex
	rooms map[string]int
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		rooms: make(map[string]int),
		connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "connections",
			Help:      "Open realtime connections",
		}),
		roomSubscribers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "room_subscribers",
			Help:      "Connections currently joined to each room",
		}, []string{"room"}),
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "events_total",
			Help:      "Realtime events handled, by event and direction",
		}, []string{"event", "direction"}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) ConnOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) ConnClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}

// RoomJoined counts a subscription to room. A room's series exists only
// while someone is joined, so the gauge holds at most one series per
// occupied room.
func (m *Metrics) RoomJoined(room string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room]++
	m.roomSubscribers.WithLabelValues(room).Set(float64(m.rooms[room]))
}

// RoomLeft drops a subscription to room and deletes the series once the
// room is empty.
func (m *Metrics) RoomLeft(room string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.rooms[room]
	if !ok {
		return
	}
	if n <= 1 {
		delete(m.rooms, room)
		m.roomSubscribers.DeleteLabelValues(room)
		return
	}
	m.rooms[room] = n - 1
	m.roomSubscribers.WithLabelValues(room).Set(float64(n - 1))
}

// EventIn counts a frame received from a client. Names outside the
// protocol are counted as UnknownEvent.
func (m *Metrics) EventIn(event string) {
	if m == nil {
		return
	}
	if !inboundEvents[event] {
		event = UnknownEvent
	}
	m.eventsTotal.WithLabelValues(event, "in").Inc()
}

// EventOut counts a frame written to a client.
func (m *Metrics) EventOut(event string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(event, "out").Inc()
}

// Middleware records request counts and latency labelled by chi route
// pattern, which keeps label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
