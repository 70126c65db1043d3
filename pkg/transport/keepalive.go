package transport

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Keep-alive constants.
const (
	// DefaultPingInterval is the default interval between pings.
	DefaultPingInterval = 15 * time.Second

	// DefaultPongTimeout is the default timeout waiting for a pong response.
	DefaultPongTimeout = 5 * time.Second

	// DefaultMaxMissedPongs is the default number of missed pongs before disconnect.
	DefaultMaxMissedPongs = 3
)

// KeepAliveConfig configures keep-alive behavior.
type KeepAliveConfig struct {
	// Disabled turns keep-alive monitoring off entirely.
	Disabled bool

	// PingInterval is the interval between pings.
	PingInterval time.Duration

	// PongTimeout is the timeout waiting for a pong response.
	PongTimeout time.Duration

	// MaxMissedPongs is the number of missed pongs before disconnect.
	MaxMissedPongs int
}

// DefaultKeepAliveConfig returns the default keep-alive configuration.
func DefaultKeepAliveConfig() KeepAliveConfig {
	return KeepAliveConfig{
		PingInterval:   DefaultPingInterval,
		PongTimeout:    DefaultPongTimeout,
		MaxMissedPongs: DefaultMaxMissedPongs,
	}
}

// DetectionDelay calculates the maximum time to detect a dead
// connection with this configuration.
func (c KeepAliveConfig) DetectionDelay() time.Duration {
	return c.PingInterval*time.Duration(c.MaxMissedPongs) + c.PongTimeout
}

// KeepAlive manages connection liveness monitoring. The protocol has
// no ping sequence numbers, so at most one ping is outstanding at a
// time and any pong settles it.
type KeepAlive struct {
	config KeepAliveConfig
	clock  clockwork.Clock

	// Callbacks
	sendPing  func() error
	onTimeout func()

	// State
	missedPongs  int
	lastPingTime time.Time
	lastPongTime time.Time
	hasPending   bool

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	pongCh  chan struct{}
}

// NewKeepAlive creates a new keep-alive manager.
func NewKeepAlive(config KeepAliveConfig, clock clockwork.Clock, sendPing func() error, onTimeout func()) *KeepAlive {
	if config.PingInterval == 0 {
		config.PingInterval = DefaultPingInterval
	}
	if config.PongTimeout == 0 {
		config.PongTimeout = DefaultPongTimeout
	}
	if config.MaxMissedPongs == 0 {
		config.MaxMissedPongs = DefaultMaxMissedPongs
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &KeepAlive{
		config:    config,
		clock:     clock,
		sendPing:  sendPing,
		onTimeout: onTimeout,
		stopCh:    make(chan struct{}),
		pongCh:    make(chan struct{}, 1),
	}
}

// Start begins the keep-alive monitoring loop.
func (ka *KeepAlive) Start() {
	ka.mu.Lock()
	if ka.running {
		ka.mu.Unlock()
		return
	}
	ka.running = true
	ka.stopCh = make(chan struct{})
	ka.mu.Unlock()

	go ka.loop()
}

// Stop stops the keep-alive monitoring.
func (ka *KeepAlive) Stop() {
	ka.mu.Lock()
	defer ka.mu.Unlock()

	if !ka.running {
		return
	}

	ka.running = false
	close(ka.stopCh)
}

// PongReceived should be called when a pong frame arrives.
func (ka *KeepAlive) PongReceived() {
	select {
	case ka.pongCh <- struct{}{}:
	default:
		// Already one queued, drop
	}
}

// IsRunning returns true if keep-alive monitoring is active.
func (ka *KeepAlive) IsRunning() bool {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	return ka.running
}

// Stats returns current keep-alive statistics.
func (ka *KeepAlive) Stats() KeepAliveStats {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	return KeepAliveStats{
		LastPingTime: ka.lastPingTime,
		LastPongTime: ka.lastPongTime,
		MissedPongs:  ka.missedPongs,
	}
}

// KeepAliveStats contains keep-alive statistics.
type KeepAliveStats struct {
	LastPingTime time.Time
	LastPongTime time.Time
	MissedPongs  int
}

// loop is the main keep-alive monitoring loop.
func (ka *KeepAlive) loop() {
	ticker := ka.clock.NewTicker(ka.config.PingInterval)
	defer ticker.Stop()

	// Send initial ping
	ka.sendPingMessage()

	for {
		select {
		case <-ka.stopCh:
			return
		case <-ticker.Chan():
			if !ka.handleTick() {
				return
			}
		case <-ka.pongCh:
			ka.handlePong()
		}
	}
}

// sendPingMessage sends a ping and records the time.
func (ka *KeepAlive) sendPingMessage() {
	ka.mu.Lock()
	ka.lastPingTime = ka.clock.Now()
	ka.hasPending = true
	ka.mu.Unlock()

	if err := ka.sendPing(); err != nil {
		// Send failed - connection is likely dead.
		// Let the missed-pong counter catch it.
		ka.mu.Lock()
		ka.hasPending = false
		ka.missedPongs++
		ka.mu.Unlock()
	}
}

// handleTick handles the ping interval tick. Returns false when the
// connection is considered dead and the loop should exit.
func (ka *KeepAlive) handleTick() bool {
	ka.mu.Lock()

	// Check if the previous ping went unanswered
	if ka.hasPending {
		elapsed := ka.clock.Since(ka.lastPingTime)
		if elapsed >= ka.config.PongTimeout {
			ka.missedPongs++
			ka.hasPending = false
		}
	}

	if ka.missedPongs >= ka.config.MaxMissedPongs {
		ka.mu.Unlock()
		if ka.onTimeout != nil {
			ka.onTimeout()
		}
		return false
	}

	ka.mu.Unlock()

	// Send next ping
	ka.sendPingMessage()
	return true
}

// handlePong handles a received pong.
func (ka *KeepAlive) handlePong() {
	ka.mu.Lock()
	defer ka.mu.Unlock()

	ka.lastPongTime = ka.clock.Now()
	if ka.hasPending {
		ka.hasPending = false
		ka.missedPongs = 0
	}
}
