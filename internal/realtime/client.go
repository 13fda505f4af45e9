// Package realtime owns the single websocket connection between a client
// process and the server, and fans its lifecycle out to registered callbacks.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/planner/internal/wire"
)

// State is the connection state.
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Option configures a Client.
type Option func(*Client)

// WithDialOptions sets the websocket dial options (headers, HTTP client).
func WithDialOptions(opts *websocket.DialOptions) Option {
	return func(c *Client) { c.dialOpts = opts }
}

// WithWriteTimeout bounds each outbound emit.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Client) { c.writeTimeout = d }
}

// Client is a realtime connection. The zero of *Client (nil) is usable:
// every outbound operation on it is a no-op.
//
// Callbacks run on the read goroutine; they must not call Close. OnConnect
// callbacks run inside Connect and must not call Connect.
type Client struct {
	url          string
	dialOpts     *websocket.DialOptions
	writeTimeout time.Duration

	dialMu sync.Mutex // serializes Connect

	mu     sync.Mutex
	conn   *websocket.Conn
	state  State
	cancel context.CancelFunc
	done   chan struct{}

	hmu          sync.RWMutex
	onConnect    []func()
	onDisconnect []func(error)
	onError      []func(error)
	handlers     map[string][]func(wire.Envelope)
}

// New returns a Client for the websocket endpoint at url. It does not dial.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:          url,
		writeTimeout: 10 * time.Second,
		handlers:     make(map[string][]func(wire.Envelope)),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// OnConnect registers fn to run after each successful Connect.
func (c *Client) OnConnect(fn func()) {
	c.hmu.Lock()
	defer c.hmu.Unlock()
	c.onConnect = append(c.onConnect, fn)
}

// OnDisconnect registers fn to run when the connection ends. err is nil for
// a normal closure.
func (c *Client) OnDisconnect(fn func(err error)) {
	c.hmu.Lock()
	defer c.hmu.Unlock()
	c.onDisconnect = append(c.onDisconnect, fn)
}

// OnError registers fn for transport failures: a failed dial, a failed
// write or an undecodable frame. The connection state is left unchanged.
// Error events sent by the server are protocol replies and go to the
// handlers registered with On(wire.EventError).
func (c *Client) OnError(fn func(err error)) {
	c.hmu.Lock()
	defer c.hmu.Unlock()
	c.onError = append(c.onError, fn)
}

// On registers fn for inbound frames of the given event.
func (c *Client) On(event string, fn func(wire.Envelope)) {
	c.hmu.Lock()
	defer c.hmu.Unlock()
	c.handlers[event] = append(c.handlers[event], fn)
}

// State returns the current connection state.
func (c *Client) State() State {
	if c == nil {
		return Disconnected
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connected reports whether the client is connected.
func (c *Client) Connected() bool {
	return c.State() == Connected
}

// Connect dials the server and starts reading. ctx bounds the dial only.
// Connecting an already connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.dialMu.Lock()
	defer c.dialMu.Unlock()

	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	conn, _, err := websocket.Dial(ctx, c.url, c.dialOpts) //nolint:bodyclose // closed by the websocket library
	if err != nil {
		err = fmt.Errorf("realtime.Client.Connect: %w", err)
		c.emitError(err)
		return err
	}

	readCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.conn = conn
	c.state = Connected
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	log.Info().Str("url", c.url).Msg("realtime: connected")

	c.hmu.RLock()
	connectFns := append([]func(){}, c.onConnect...)
	c.hmu.RUnlock()
	for _, fn := range connectFns {
		fn()
	}

	go c.readLoop(readCtx, conn, done)

	return nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	for {
		_, frame, err := conn.Read(ctx)
		if err != nil {
			c.handleDisconnect(conn, err)
			return
		}

		env, err := wire.Decode(frame)
		if err != nil {
			c.emitError(fmt.Errorf("realtime.Client.read: %w", err))
			continue
		}

		c.hmu.RLock()
		fns := append([]func(wire.Envelope){}, c.handlers[env.Event]...)
		c.hmu.RUnlock()
		for _, fn := range fns {
			fn(env)
		}
	}
}

func (c *Client) handleDisconnect(conn *websocket.Conn, err error) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.state = Disconnected
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
	}
	c.mu.Unlock()

	if isNormalClosure(err) {
		err = nil
		log.Info().Msg("realtime: disconnected")
	} else {
		log.Warn().Err(err).Msg("realtime: disconnected")
	}

	c.hmu.RLock()
	fns := append([]func(error){}, c.onDisconnect...)
	c.hmu.RUnlock()
	for _, fn := range fns {
		fn(err)
	}
}

func isNormalClosure(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return errors.Is(err, context.Canceled)
}

func (c *Client) emitError(err error) {
	log.Error().Err(err).Msg("realtime: error")

	c.hmu.RLock()
	fns := append([]func(error){}, c.onError...)
	c.hmu.RUnlock()
	for _, fn := range fns {
		fn(err)
	}
}

// Emit sends one event. It does not wait for any acknowledgement. On a nil
// or unconnected client it does nothing and returns nil.
func (c *Client) Emit(ctx context.Context, event string, payload any) error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil
	}

	frame, err := wire.Encode(event, payload)
	if err != nil {
		return fmt.Errorf("realtime.Client.Emit: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	if err := conn.Write(writeCtx, websocket.MessageText, frame); err != nil {
		err = fmt.Errorf("realtime.Client.Emit: %s: %w", event, err)
		c.emitError(err)
		return err
	}
	return nil
}

// SendMessage posts message to room.
func (c *Client) SendMessage(ctx context.Context, room, message string) error {
	return c.Emit(ctx, wire.EventMessage, wire.MessagePayload{Room: room, Message: message})
}

// JoinRoom subscribes the connection to room.
func (c *Client) JoinRoom(ctx context.Context, room string) error {
	return c.Emit(ctx, wire.EventJoin, wire.RoomPayload{Room: room})
}

// LeaveRoom unsubscribes the connection from room.
func (c *Client) LeaveRoom(ctx context.Context, room string) error {
	return c.Emit(ctx, wire.EventLeave, wire.RoomPayload{Room: room})
}

// Close performs the closing handshake and waits for the read loop to
// finish, so OnDisconnect callbacks have run when it returns. Closing a nil
// or unconnected client is a no-op.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	conn, done := c.conn, c.done
	c.mu.Unlock()
	if conn == nil {
		return nil
	}

	err := conn.Close(websocket.StatusNormalClosure, "client closing")
	<-done
	if err != nil && !isNormalClosure(err) {
		return fmt.Errorf("realtime.Client.Close: %w", err)
	}
	return nil
}
