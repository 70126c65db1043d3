package connection

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Connection errors.
var (
	ErrClosed = errors.New("connection manager closed")
)

// State represents the connection state.
type State uint8

const (
	// StateDisconnected indicates no active connection and no pending
	// retry.
	StateDisconnected State = iota

	// StateConnecting indicates a connection attempt is in progress.
	StateConnecting

	// StateConnected indicates an active connection.
	StateConnected

	// StateError indicates the last attempt failed or the connection
	// dropped; a retry is pending.
	StateError
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ConnectFunc is called to establish a connection.
// It should return nil on success or an error on failure, and respect
// ctx cancellation.
type ConnectFunc func(ctx context.Context) error

// Config configures a connection manager.
type Config struct {
	// RetryInterval is the fixed delay between reconnection attempts
	// (default: 3s).
	RetryInterval time.Duration

	// Clock drives retry timing. Nil means the real clock.
	Clock clockwork.Clock
}

// Manager manages connection lifecycle with automatic reconnection.
type Manager struct {
	mu sync.RWMutex

	// Current state
	state  State
	closed bool

	// Retry tracker
	retry *Retry
	clock clockwork.Clock

	// Connection function
	connectFn ConnectFunc

	// Auto-reconnect enabled
	autoReconnect bool

	// Set when the transport reports a loss while an attempt is still
	// in flight; consumed by the attempt's success path so the loss is
	// never swallowed.
	lostDuringConnect bool

	// Pending retry cancellation. Non-nil while a retry session is
	// live; closed by Disconnect.
	cancelRetry chan struct{}

	// Cancels an in-flight connection attempt.
	attemptCancel context.CancelFunc

	// Lifetime context for the retry goroutine
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Channel to signal a retry session should start
	retryCh chan struct{}

	// Callbacks
	onStateChange    func(oldState, newState State)
	onConnected      func()
	onDisconnected   func()
	onRetryScheduled func(attempt int, delay time.Duration)
}

// NewManager creates a connection manager and starts its retry
// goroutine. Call Close to release it.
func NewManager(connectFn ConnectFunc, config Config) *Manager {
	clock := config.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		state:         StateDisconnected,
		retry:         NewRetry(config.RetryInterval),
		clock:         clock,
		connectFn:     connectFn,
		autoReconnect: true,
		ctx:           ctx,
		cancel:        cancel,
		retryCh:       make(chan struct{}, 1),
	}

	m.wg.Add(1)
	go m.retryLoop()

	return m
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsConnected returns true if currently connected.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateConnected
}

// RetryAttempts returns the number of attempts since the last
// successful connection.
func (m *Manager) RetryAttempts() int {
	return m.retry.Attempts()
}

// SetAutoReconnect enables or disables automatic reconnection.
func (m *Manager) SetAutoReconnect(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoReconnect = enabled
}

// Connect initiates a connection. It is a no-op when a connection or
// retry is already in progress: calling Connect twice never produces
// two connections.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.state != StateDisconnected {
		m.mu.Unlock()
		return nil
	}

	m.state = StateConnecting
	m.lostDuringConnect = false
	attemptCtx, attemptCancel := context.WithCancel(ctx)
	m.attemptCancel = attemptCancel
	m.mu.Unlock()

	m.notifyStateChange(StateDisconnected, StateConnecting)

	err := m.connectFn(attemptCtx)
	attemptCancel()

	m.mu.Lock()
	m.attemptCancel = nil
	if m.closed || m.state != StateConnecting {
		// Disconnected mid-attempt
		m.mu.Unlock()
		return err
	}

	if err != nil {
		m.state = StateError
		m.mu.Unlock()
		m.notifyStateChange(StateConnecting, StateError)
		m.scheduleRetry()
		return err
	}

	if m.lostDuringConnect {
		// The connection came up and dropped again before the attempt
		// finished. Treat it like a post-connect loss.
		m.lostDuringConnect = false
		autoReconnect := m.autoReconnect
		if autoReconnect {
			m.state = StateError
		} else {
			m.state = StateDisconnected
		}
		newState := m.state
		m.mu.Unlock()

		m.notifyStateChange(StateConnecting, newState)
		if autoReconnect {
			m.scheduleRetry()
		}
		return nil
	}

	m.state = StateConnected
	m.retry.Reset()
	m.mu.Unlock()

	m.notifyStateChange(StateConnecting, StateConnected)
	if m.onConnected != nil {
		m.onConnected()
	}

	return nil
}

// Disconnect moves to Disconnected and cancels any pending retry and
// any in-flight attempt. No further attempts fire until Connect is
// called again.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	if m.closed || m.state == StateDisconnected {
		m.mu.Unlock()
		return
	}

	oldState := m.state
	m.state = StateDisconnected
	cancelRetry := m.cancelRetry
	m.cancelRetry = nil
	attemptCancel := m.attemptCancel
	m.attemptCancel = nil
	m.retry.Reset()
	m.mu.Unlock()

	if cancelRetry != nil {
		close(cancelRetry)
	}
	if attemptCancel != nil {
		attemptCancel()
	}

	m.notifyStateChange(oldState, StateDisconnected)
	if oldState == StateConnected && m.onDisconnected != nil {
		m.onDisconnected()
	}
}

// ConnectionLost should be called when an established connection
// drops. This triggers automatic reconnection if enabled.
func (m *Manager) ConnectionLost() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if m.state == StateConnecting {
		// The loss beat the connect attempt's completion; flag it so
		// the success path reports Error and schedules a retry instead
		// of Connected.
		m.lostDuringConnect = true
		m.mu.Unlock()
		return
	}
	if m.state != StateConnected {
		m.mu.Unlock()
		return
	}

	autoReconnect := m.autoReconnect
	if autoReconnect {
		m.state = StateError
	} else {
		m.state = StateDisconnected
	}
	newState := m.state
	m.mu.Unlock()

	m.notifyStateChange(StateConnected, newState)
	if m.onDisconnected != nil {
		m.onDisconnected()
	}

	if autoReconnect {
		m.scheduleRetry()
	}
}

// Close shuts down the connection manager.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	m.closed = true
	oldState := m.state
	m.state = StateDisconnected
	cancelRetry := m.cancelRetry
	m.cancelRetry = nil
	attemptCancel := m.attemptCancel
	m.attemptCancel = nil
	m.mu.Unlock()

	if cancelRetry != nil {
		close(cancelRetry)
	}
	if attemptCancel != nil {
		attemptCancel()
	}

	m.cancel()
	m.wg.Wait()

	if oldState != StateDisconnected {
		m.notifyStateChange(oldState, StateDisconnected)
	}
}

// scheduleRetry arms the retry session for the current Error state.
func (m *Manager) scheduleRetry() {
	m.mu.Lock()
	if m.closed || m.state != StateError {
		m.mu.Unlock()
		return
	}
	if m.cancelRetry == nil {
		m.cancelRetry = make(chan struct{})
	}
	m.mu.Unlock()

	select {
	case m.retryCh <- struct{}{}:
	default:
		// Already pending
	}
}

// retryLoop runs in a goroutine and handles retry sessions.
func (m *Manager) retryLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.retryCh:
			m.retrySession()
		}
	}
}

// retrySession attempts reconnection at the fixed interval until it
// succeeds or is cancelled.
func (m *Manager) retrySession() {
	for {
		m.mu.RLock()
		if m.closed || m.state != StateError {
			m.mu.RUnlock()
			return
		}
		cancelRetry := m.cancelRetry
		m.mu.RUnlock()

		delay := m.retry.Next()
		if m.onRetryScheduled != nil {
			m.onRetryScheduled(m.retry.Attempts(), delay)
		}

		timer := m.clock.NewTimer(delay)
		select {
		case <-m.ctx.Done():
			timer.Stop()
			return
		case <-cancelRetry:
			timer.Stop()
			return
		case <-timer.Chan():
		}

		if m.attemptReconnect() {
			return
		}
		// Failed - stay in Error and wait another interval
	}
}

// attemptReconnect performs one reconnection attempt. Returns true
// when the session is over (connected, cancelled, or closed).
func (m *Manager) attemptReconnect() bool {
	m.mu.Lock()
	if m.closed || m.state != StateError {
		m.mu.Unlock()
		return true
	}

	m.state = StateConnecting
	m.lostDuringConnect = false
	attemptCtx, attemptCancel := context.WithCancel(m.ctx)
	m.attemptCancel = attemptCancel
	m.mu.Unlock()

	m.notifyStateChange(StateError, StateConnecting)

	err := m.connectFn(attemptCtx)
	attemptCancel()

	m.mu.Lock()
	m.attemptCancel = nil
	if m.closed || m.state != StateConnecting {
		// Disconnected mid-attempt
		m.mu.Unlock()
		return true
	}

	if err != nil || m.lostDuringConnect {
		m.lostDuringConnect = false
		m.state = StateError
		m.mu.Unlock()
		m.notifyStateChange(StateConnecting, StateError)
		return false
	}

	m.state = StateConnected
	m.retry.Reset()
	m.mu.Unlock()

	m.notifyStateChange(StateConnecting, StateConnected)
	if m.onConnected != nil {
		m.onConnected()
	}
	return true
}

// notifyStateChange notifies the state change callback.
func (m *Manager) notifyStateChange(oldState, newState State) {
	if m.onStateChange != nil {
		m.onStateChange(oldState, newState)
	}
}

// OnStateChange sets a callback for state changes.
// Set callbacks before the first Connect; they are not synchronized.
func (m *Manager) OnStateChange(fn func(oldState, newState State)) {
	m.onStateChange = fn
}

// OnConnected sets a callback for successful connection.
func (m *Manager) OnConnected(fn func()) {
	m.onConnected = fn
}

// OnDisconnected sets a callback for disconnection.
func (m *Manager) OnDisconnected(fn func()) {
	m.onDisconnected = fn
}

// OnRetryScheduled sets a callback invoked before each retry wait.
func (m *Manager) OnRetryScheduled(fn func(attempt int, delay time.Duration)) {
	m.onRetryScheduled = fn
}
