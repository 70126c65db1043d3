package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/windlab-project/windlab-go/pkg/log"
	"github.com/windlab-project/windlab-go/pkg/wire"
)

// Transport constants.
const (
	// DefaultHandshakeTimeout is the default websocket handshake timeout.
	DefaultHandshakeTimeout = 10 * time.Second

	// DefaultWriteTimeout is the default timeout for a single frame write.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultMaxMessageSize is the maximum inbound frame size (1MB).
	DefaultMaxMessageSize = 1 << 20
)

// Transport errors.
var (
	ErrConnectionClosed = errors.New("connection closed")
)

// Config configures a websocket connection.
type Config struct {
	// HandshakeTimeout bounds the websocket handshake (default: 10s).
	HandshakeTimeout time.Duration

	// WriteTimeout bounds a single frame write (default: 10s).
	WriteTimeout time.Duration

	// MaxMessageSize is the maximum inbound frame size (default: 1MB).
	MaxMessageSize int64

	// KeepAlive configuration.
	KeepAlive KeepAliveConfig

	// Clock drives keep-alive timing. Nil means the real clock.
	Clock clockwork.Clock

	// Logger receives capture events. Nil disables capture.
	Logger log.Logger
}

// DefaultConfig returns the default transport configuration.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: DefaultHandshakeTimeout,
		WriteTimeout:     DefaultWriteTimeout,
		MaxMessageSize:   DefaultMaxMessageSize,
		KeepAlive:        DefaultKeepAliveConfig(),
	}
}

func (c Config) withDefaults() Config {
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Logger == nil {
		c.Logger = log.NoopLogger{}
	}
	return c
}

// Handler receives connection events. Callbacks for a given Conn are
// invoked serially from a single goroutine, in arrival order.
type Handler interface {
	// OnData is called for each inbound telemetry frame.
	// Control frames (pong) are intercepted and never reach OnData.
	OnData(data []byte)

	// OnError is called for recoverable errors (keep-alive timeout,
	// oversized frame). The connection closes after OnError.
	OnError(err error)

	// OnClosed is called exactly once when the connection ends.
	// err is nil for a locally initiated close.
	OnClosed(err error)
}

// Conn is a single websocket connection to the backend.
// One Conn covers one websocket lifetime; it cannot be reused after
// Close.
type Conn struct {
	id       string
	endpoint string
	config   Config
	handler  Handler

	ws        *websocket.Conn
	keepAlive *KeepAlive
	logger    log.Logger

	writeMu    sync.Mutex
	closeOnce  sync.Once
	notifyOnce sync.Once
	closed     chan struct{}
}

// Dial establishes a websocket connection to the given endpoint and
// starts the read loop. The returned Conn is live: handler callbacks
// may fire before Dial's caller regains control of the Conn.
func Dial(ctx context.Context, endpoint string, handler Handler, config Config) (*Conn, error) {
	config = config.withDefaults()

	dialer := &websocket.Dialer{
		HandshakeTimeout: config.HandshakeTimeout,
	}
	ws, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("dial %s failed: %w (HTTP %d)", endpoint, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s failed: %w", endpoint, err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	ws.SetReadLimit(config.MaxMessageSize)

	c := &Conn{
		id:       uuid.NewString(),
		endpoint: endpoint,
		config:   config,
		handler:  handler,
		ws:       ws,
		logger:   config.Logger,
		closed:   make(chan struct{}),
	}

	c.startKeepAlive()
	go c.readLoop()

	return c, nil
}

// ID returns the connection's unique identifier.
func (c *Conn) ID() string {
	return c.id
}

// Endpoint returns the websocket URL this connection was dialed to.
func (c *Conn) Endpoint() string {
	return c.endpoint
}

// Send writes one frame to the backend.
func (c *Conn) Send(data []byte) error {
	select {
	case <-c.closed:
		return ErrConnectionClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	c.logFrame(log.DirectionOut, data)
	return nil
}

// Close closes the connection. A close frame is sent best-effort; the
// read loop is torn down and the handler's OnClosed fires with a nil
// error. Close is safe to call multiple times.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)

		if c.keepAlive != nil {
			c.keepAlive.Stop()
		}

		// Best-effort close handshake before tearing down the socket.
		c.writeMu.Lock()
		c.ws.SetWriteDeadline(time.Now().Add(time.Second))
		c.ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()

		err = c.ws.Close()
		c.notifyClosed(nil)
	})
	return err
}

// forceClose tears the connection down without the close handshake.
// Used when the connection is already considered dead.
func (c *Conn) forceClose(cause error) {
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.keepAlive != nil {
			c.keepAlive.Stop()
		}
		c.ws.Close()
		c.notifyClosed(cause)
	})
}

// notifyClosed delivers OnClosed exactly once, whether the close was
// local, remote, or error-driven.
func (c *Conn) notifyClosed(err error) {
	c.notifyOnce.Do(func() {
		c.handler.OnClosed(err)
	})
}

// startKeepAlive initializes and starts keep-alive monitoring.
func (c *Conn) startKeepAlive() {
	if c.config.KeepAlive.Disabled {
		return
	}

	c.keepAlive = NewKeepAlive(
		c.config.KeepAlive,
		c.config.Clock,
		func() error {
			data, err := wire.EncodePing()
			if err != nil {
				return err
			}
			if err := c.Send(data); err != nil {
				return err
			}
			c.logControl(log.DirectionOut, wire.TypePing)
			return nil
		},
		func() {
			c.handler.OnError(fmt.Errorf("keep-alive timeout: %w", ErrConnectionClosed))
			c.forceClose(ErrConnectionClosed)
		},
	)
	c.keepAlive.Start()
}

// readLoop reads frames until the connection ends. Pong frames feed
// the keep-alive monitor; everything else goes to the handler.
func (c *Conn) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
				// Local close already in progress.
			default:
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.logError(err, "read")
				}
				c.forceClose(fmt.Errorf("read failed: %w", err))
			}
			return
		}

		c.logFrame(log.DirectionIn, data)

		if msgType, err := wire.PeekType(data); err == nil && msgType == wire.TypePong {
			c.logControl(log.DirectionIn, wire.TypePong)
			if c.keepAlive != nil {
				c.keepAlive.PongReceived()
			}
			continue
		}

		c.handler.OnData(data)
	}
}

func (c *Conn) logFrame(dir log.Direction, data []byte) {
	event := log.NewFrameEvent(c.id, dir, data)
	event.Endpoint = c.endpoint
	c.logger.Log(event)
}

func (c *Conn) logControl(dir log.Direction, ctrlType string) {
	event := log.NewControlEvent(c.id, dir, ctrlType)
	event.Endpoint = c.endpoint
	c.logger.Log(event)
}

func (c *Conn) logError(err error, context string) {
	event := log.NewErrorEvent(c.id, log.LayerTransport, err, context)
	event.Endpoint = c.endpoint
	c.logger.Log(event)
}
