package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/planner/internal/domain"
	"github.com/gosuda/planner/internal/metrics"
	redisstore "github.com/gosuda/planner/internal/store/redis"
	"github.com/gosuda/planner/internal/wire"
)

const (
	defaultWriteTimeout = 10 * time.Second
	readLimit           = 64 << 10
)

// Broker fans frames out to every subscriber of a channel.
// *redis.PubSub satisfies this interface.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// Presence tracks users holding an open connection.
// *redis.PubSub satisfies this interface.
type Presence interface {
	MarkOnline(ctx context.Context, userID uuid.UUID) error
	MarkOffline(ctx context.Context, userID uuid.UUID) error
}

// Option configures a Hub.
type Option func(*Hub)

// WithUsers resolves the user_id query parameter to a username.
// Without it the id is trusted as given.
func WithUsers(users domain.UserRepository) Option {
	return func(h *Hub) { h.users = users }
}

// WithPresence records connected users.
func WithPresence(p Presence) Option {
	return func(h *Hub) { h.presence = p }
}

// WithMetrics records connection and event counts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Hub) { h.metrics = m }
}

// WithOriginPatterns sets the host patterns allowed to open a connection
// from a browser. See websocket.AcceptOptions.OriginPatterns.
func WithOriginPatterns(patterns []string) Option {
	return func(h *Hub) { h.originPatterns = patterns }
}

// WithWriteTimeout bounds each frame write.
func WithWriteTimeout(d time.Duration) Option {
	return func(h *Hub) { h.writeTimeout = d }
}

// Hub manages chat room WebSocket connections backed by Redis pub/sub.
// Each joined room holds one broker subscription per connection.
type Hub struct {
	broker         Broker
	messages       domain.MessageRepository
	users          domain.UserRepository
	presence       Presence
	metrics        *metrics.Metrics
	originPatterns []string
	writeTimeout   time.Duration
}

// NewHub creates a new WebSocket hub.
func NewHub(broker Broker, messages domain.MessageRepository, opts ...Option) *Hub {
	h := &Hub{
		broker:       broker,
		messages:     messages,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeWS handles GET /ws?user_id=. The connection speaks the wire
// envelope protocol: join, leave and message in; joined, left, message and
// error out.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	var userID *uuid.UUID
	var username string

	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}
		userID = &id

		if h.users != nil {
			u, err := h.users.GetByID(r.Context(), id)
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			if err != nil {
				log.Error().Err(err).Msg("websocket user lookup")
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			username = u.Username
		}
	}

	// Server read/write timeouts would otherwise cut long-lived connections.
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	conn.SetReadLimit(readLimit)

	s := &session{
		hub:      h,
		conn:     conn,
		userID:   userID,
		username: username,
		rooms:    make(map[string]context.CancelFunc),
		logger:   log.With().Str("conn", uuid.NewString()).Logger(),
	}

	h.metrics.ConnOpened()
	defer h.metrics.ConnClosed()

	if userID != nil && h.presence != nil {
		if err := h.presence.MarkOnline(r.Context(), *userID); err != nil {
			s.logger.Warn().Err(err).Msg("mark online")
		}
		defer func() {
			// The request context is gone by now.
			ctx, cancel := context.WithTimeout(context.Background(), h.writeTimeout)
			defer cancel()
			if err := h.presence.MarkOffline(ctx, *userID); err != nil {
				s.logger.Warn().Err(err).Msg("mark offline")
			}
		}()
	}

	s.run(r.Context())
}

// session is one websocket connection. rooms is owned by the read loop.
type session struct {
	hub      *Hub
	conn     *websocket.Conn
	userID   *uuid.UUID
	username string
	rooms    map[string]context.CancelFunc
	wg       sync.WaitGroup
	logger   zerolog.Logger
}

func (s *session) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		for room, stop := range s.rooms {
			stop()
			s.hub.metrics.RoomLeft(room)
		}
		s.wg.Wait()
	}()

	for {
		_, frame, err := s.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				s.logger.Debug().Msg("websocket closed")
			default:
				if !errors.Is(err, context.Canceled) {
					s.logger.Debug().Err(err).Msg("websocket read")
				}
			}
			return
		}

		env, err := wire.Decode(frame)
		if err != nil {
			s.sendError(ctx, "malformed frame")
			continue
		}
		s.hub.metrics.EventIn(env.Event)

		switch env.Event {
		case wire.EventJoin:
			s.handleJoin(ctx, env)
		case wire.EventLeave:
			s.handleLeave(ctx, env)
		case wire.EventMessage:
			s.handleMessage(ctx, env)
		default:
			s.sendError(ctx, "unknown event: "+env.Event)
		}
	}
}

func (s *session) handleJoin(ctx context.Context, env wire.Envelope) {
	room, ok := s.roomOf(ctx, env)
	if !ok {
		return
	}

	if _, joined := s.rooms[room]; !joined {
		roomCtx, stop := context.WithCancel(ctx)
		frames, cleanup, err := s.hub.broker.Subscribe(roomCtx, redisstore.RoomChannel(room))
		if err != nil {
			stop()
			s.logger.Error().Err(err).Str("room", room).Msg("subscribe")
			s.sendError(ctx, "failed to join room")
			return
		}

		s.rooms[room] = func() {
			stop()
			cleanup()
		}
		s.hub.metrics.RoomJoined(room)

		s.wg.Add(1)
		go s.forward(roomCtx, frames)
	}

	s.send(ctx, wire.EventJoined, wire.RoomPayload{Room: room})
}

func (s *session) handleLeave(ctx context.Context, env wire.Envelope) {
	room, ok := s.roomOf(ctx, env)
	if !ok {
		return
	}

	if stop, joined := s.rooms[room]; joined {
		stop()
		delete(s.rooms, room)
		s.hub.metrics.RoomLeft(room)
	}

	s.send(ctx, wire.EventLeft, wire.RoomPayload{Room: room})
}

func (s *session) handleMessage(ctx context.Context, env wire.Envelope) {
	var p wire.MessagePayload
	if err := env.Payload(&p); err != nil {
		s.sendError(ctx, "invalid message payload")
		return
	}
	room, ok := wire.NormalizeRoom(p.Room)
	if !ok {
		s.sendError(ctx, "invalid room")
		return
	}
	p.Room = room
	if !wire.ValidMessage(p.Message) {
		s.sendError(ctx, "invalid message")
		return
	}

	m := &domain.Message{
		ID:         uuid.New(),
		Room:       p.Room,
		SenderID:   s.userID,
		SenderName: s.username,
		Content:    p.Message,
		Timestamp:  time.Now(),
	}

	if err := s.hub.messages.Create(ctx, m); err != nil {
		s.logger.Error().Err(err).Str("room", m.Room).Msg("store message")
		s.sendError(ctx, "failed to store message")
		return
	}

	frame, err := wire.Encode(wire.EventMessage, wire.MessageEvent{
		ID:         m.ID,
		Room:       m.Room,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Content:    m.Content,
		Timestamp:  m.Timestamp,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("encode message")
		return
	}

	if err := s.hub.broker.Publish(ctx, redisstore.RoomChannel(m.Room), frame); err != nil {
		s.logger.Error().Err(err).Str("room", m.Room).Msg("publish message")
		s.sendError(ctx, "failed to deliver message")
	}
}

// roomOf extracts a room name, reporting protocol errors to the client.
func (s *session) roomOf(ctx context.Context, env wire.Envelope) (string, bool) {
	var p wire.RoomPayload
	if err := env.Payload(&p); err != nil {
		s.sendError(ctx, "invalid room payload")
		return "", false
	}
	room, ok := wire.NormalizeRoom(p.Room)
	if !ok {
		s.sendError(ctx, "invalid room")
		return "", false
	}
	return room, true
}

// forward copies broker frames for one room to the connection until the
// room is left or the connection ends.
func (s *session) forward(ctx context.Context, frames <-chan []byte) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := s.write(ctx, frame); err != nil {
				s.logger.Debug().Err(err).Msg("websocket write")
				return
			}
			s.hub.metrics.EventOut(wire.EventMessage)
		}
	}
}

func (s *session) send(ctx context.Context, event string, payload any) {
	frame, err := wire.Encode(event, payload)
	if err != nil {
		s.logger.Error().Err(err).Msg("encode frame")
		return
	}
	if err := s.write(ctx, frame); err != nil {
		s.logger.Debug().Err(err).Str("event", event).Msg("websocket write")
		return
	}
	s.hub.metrics.EventOut(event)
}

func (s *session) sendError(ctx context.Context, msg string) {
	s.send(ctx, wire.EventError, wire.ErrorPayload{Message: msg})
}

func (s *session) write(ctx context.Context, frame []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.hub.writeTimeout)
	defer cancel()
	if err := s.conn.Write(ctx, websocket.MessageText, frame); err != nil {
		return fmt.Errorf("ws.session.write: %w", err)
	}
	return nil
}
