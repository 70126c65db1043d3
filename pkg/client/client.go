package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/windlab-project/windlab-go/pkg/config"
	"github.com/windlab-project/windlab-go/pkg/connection"
	"github.com/windlab-project/windlab-go/pkg/log"
	"github.com/windlab-project/windlab-go/pkg/state"
	"github.com/windlab-project/windlab-go/pkg/transport"
	"github.com/windlab-project/windlab-go/pkg/wire"
)

// Options configures optional client collaborators.
type Options struct {
	// Capture receives protocol events (.wlog capture). Nil disables
	// capture.
	Capture log.Logger

	// Logger is the console logger. Nil means slog.Default().
	Logger *slog.Logger

	// Clock drives retry and keep-alive timing. Nil means the real
	// clock.
	Clock clockwork.Clock
}

// Client is a telemetry client for a windlab backend.
// It is safe for concurrent use.
type Client struct {
	cfg        config.Config
	store      *state.Store
	manager    *connection.Manager
	dispatcher *Dispatcher
	capture    log.Logger
	logger     *slog.Logger
	clock      clockwork.Clock

	mu     sync.Mutex
	conn   *transport.Conn
	active *connHandler
}

// New creates a client from the given configuration. The client is
// idle until Connect is called.
func New(cfg config.Config, opts Options) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	capture := opts.Capture
	if capture == nil {
		capture = log.NoopLogger{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	c := &Client{
		cfg:     cfg,
		store:   state.NewStore(cfg.BufferCapacity),
		capture: capture,
		logger:  logger,
		clock:   clock,
	}
	c.dispatcher = NewDispatcher(c.store, capture, logger)

	c.manager = connection.NewManager(c.dial, connection.Config{
		RetryInterval: cfg.ReconnectInterval.Std(),
		Clock:         clock,
	})
	c.manager.OnStateChange(c.onStateChange)
	c.manager.OnRetryScheduled(func(attempt int, delay time.Duration) {
		logger.Info("reconnect scheduled", "attempt", attempt, "delay", delay)
	})

	return c, nil
}

// Connect initiates the connection. The first attempt runs
// synchronously; on failure the client keeps retrying in the
// background at the configured interval. Connect is a no-op when a
// connection or retry is already in progress.
func (c *Client) Connect(ctx context.Context) error {
	return c.manager.Connect(ctx)
}

// Disconnect closes the connection and cancels any pending
// reconnection. The client stays usable; call Connect to start again.
func (c *Client) Disconnect() {
	c.manager.Disconnect()

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.active = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// Close disconnects and releases the client. The client cannot be
// reused after Close.
func (c *Client) Close() {
	c.Disconnect()
	c.manager.Close()
}

// State returns the connection manager's current state.
func (c *Client) State() connection.State {
	return c.manager.State()
}

// IsConnected returns true while a connection is established.
func (c *Client) IsConnected() bool {
	return c.manager.IsConnected()
}

// Snapshot returns an immutable copy of the current telemetry state.
func (c *Client) Snapshot() state.Snapshot {
	return c.store.Snapshot()
}

// Subscribe registers a callback invoked after each state mutation.
func (c *Client) Subscribe(fn state.SubscriberFunc) uint32 {
	return c.store.Subscribe(fn)
}

// Unsubscribe removes a subscriber.
func (c *Client) Unsubscribe(id uint32) {
	c.store.Unsubscribe(id)
}

// Store exposes the underlying state store.
func (c *Client) Store() *state.Store {
	return c.store
}

// StartRecording asks the backend to start persisting readings.
func (c *Client) StartRecording() {
	c.sendCommand(wire.ActionStartRecording)
}

// StopRecording asks the backend to stop persisting readings.
func (c *Client) StopRecording() {
	c.sendCommand(wire.ActionStopRecording)
}

// ClearReadings asks the backend to clear its reading history.
// The local buffer clears when the readings_cleared broadcast comes
// back, keeping all clients consistent.
func (c *Client) ClearReadings() {
	c.sendCommand(wire.ActionClear)
}

// RequestStatus asks the backend to send a status message.
func (c *Client) RequestStatus() {
	c.sendCommand(wire.ActionGetStatus)
}

// sendCommand encodes and sends one fire-and-forget command. Commands
// are dropped with a warning when not connected; no queueing.
func (c *Client) sendCommand(action wire.Action) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil || !c.manager.IsConnected() {
		c.logger.Warn("command dropped: not connected", "action", action)
		return
	}

	data, err := wire.EncodeCommand(action)
	if err != nil {
		c.logger.Warn("command encode failed", "action", action, "error", err)
		return
	}

	if err := conn.Send(data); err != nil {
		c.logger.Warn("command send failed", "action", action, "error", err)
		return
	}

	c.capture.Log(log.NewMessageEvent(conn.ID(), log.DirectionOut, log.MessageEvent{
		Kind:   "COMMAND",
		Action: string(action),
	}))
}

// dial is the connection manager's ConnectFunc.
func (c *Client) dial(ctx context.Context) error {
	h := &connHandler{client: c, ready: make(chan struct{})}

	conn, err := transport.Dial(ctx, c.cfg.Endpoint, h, transport.Config{
		KeepAlive: transport.KeepAliveConfig{
			Disabled:       c.cfg.KeepAlive.Disabled,
			PingInterval:   c.cfg.KeepAlive.PingInterval.Std(),
			PongTimeout:    c.cfg.KeepAlive.PongTimeout.Std(),
			MaxMissedPongs: c.cfg.KeepAlive.MaxMissedPongs,
		},
		Clock:  c.clock,
		Logger: c.capture,
	})
	if err != nil {
		c.logger.Warn("connect failed", "endpoint", c.cfg.Endpoint, "error", err)
		return err
	}

	h.conn = conn
	c.mu.Lock()
	c.conn = conn
	c.active = h
	c.mu.Unlock()
	close(h.ready)

	// Disconnect may have raced the dial; if it cancelled the attempt
	// after the socket came up, tear the socket down again.
	if ctx.Err() != nil {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
			c.active = nil
		}
		c.mu.Unlock()
		conn.Close()
		return ctx.Err()
	}

	c.logger.Info("connected", "endpoint", c.cfg.Endpoint, "conn_id", conn.ID())
	return nil
}

// handleClosed reacts to the transport closing. Stale handlers from a
// superseded connection are ignored.
func (c *Client) handleClosed(h *connHandler, err error) {
	c.mu.Lock()
	if c.active != h {
		c.mu.Unlock()
		return
	}
	c.active = nil
	c.conn = nil
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("connection lost", "error", err)
		c.manager.ConnectionLost()
	}
}

// onStateChange mirrors manager state into the store and the capture
// log.
func (c *Client) onStateChange(oldState, newState connection.State) {
	c.store.SetConnectionStatus(statusFromState(newState))

	c.mu.Lock()
	connID := ""
	if c.conn != nil {
		connID = c.conn.ID()
	}
	c.mu.Unlock()

	c.capture.Log(log.NewStateChangeEvent(connID, oldState.String(), newState.String(), ""))
	c.logger.Debug("connection state changed", "from", oldState, "to", newState)
}

// statusFromState maps manager states onto store statuses.
func statusFromState(s connection.State) state.ConnectionStatus {
	switch s {
	case connection.StateConnecting:
		return state.StatusConnecting
	case connection.StateConnected:
		return state.StatusConnected
	case connection.StateError:
		return state.StatusError
	default:
		return state.StatusDisconnected
	}
}

// connHandler adapts one transport connection's events back to the
// client. Callbacks wait for the dial registration to finish so the
// client always sees a fully wired handler.
type connHandler struct {
	client *Client
	conn   *transport.Conn
	ready  chan struct{}
}

func (h *connHandler) OnData(data []byte) {
	<-h.ready
	h.client.dispatcher.Dispatch(h.conn.ID(), data)
}

func (h *connHandler) OnError(err error) {
	<-h.ready
	h.client.logger.Warn("connection error", "error", err)
}

func (h *connHandler) OnClosed(err error) {
	<-h.ready
	h.client.handleClosed(h, err)
}

// Compile-time interface satisfaction check.
var _ transport.Handler = (*connHandler)(nil)
