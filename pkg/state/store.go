package state

import (
	"sync"
	"sync/atomic"

	"github.com/windlab-project/windlab-go/pkg/wire"
)

// ConnectionStatus is the store's view of the connection lifecycle.
// Only the connection manager writes it.
type ConnectionStatus uint8

const (
	// StatusDisconnected indicates no active connection.
	StatusDisconnected ConnectionStatus = iota

	// StatusConnecting indicates a connection attempt is in progress.
	StatusConnecting

	// StatusConnected indicates an active connection.
	StatusConnected

	// StatusError indicates the connection failed.
	StatusError
)

// String returns the status name.
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "DISCONNECTED"
	case StatusConnecting:
		return "CONNECTING"
	case StatusConnected:
		return "CONNECTED"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Snapshot is an immutable copy of the store's contents.
// Consumers must not mutate it; the Readings slice is a fresh copy.
type Snapshot struct {
	Connection  ConnectionStatus
	Status      wire.SystemStatus
	IsRecording bool
	Readings    []wire.Reading
}

// SubscriberFunc receives a snapshot after each store mutation.
type SubscriberFunc func(Snapshot)

// subscriberID is the global subscriber ID counter.
var subscriberID atomic.Uint32

// Store holds the client's view of the backend.
type Store struct {
	mu sync.RWMutex

	connection ConnectionStatus
	status     wire.SystemStatus
	recording  bool
	readings   *ReadingBuffer

	// Subscribers in registration order.
	order       []uint32
	subscribers map[uint32]SubscriberFunc
}

// NewStore creates an empty store whose reading buffer holds at most
// capacity entries (DefaultCapacity when capacity <= 0).
func NewStore(capacity int) *Store {
	return &Store{
		connection:  StatusDisconnected,
		readings:    NewReadingBuffer(capacity),
		subscribers: make(map[uint32]SubscriberFunc),
	}
}

// SetConnectionStatus overwrites the connection status.
// Called only by the connection manager.
func (s *Store) SetConnectionStatus(status ConnectionStatus) {
	s.mu.Lock()
	s.connection = status
	s.notifyLocked()
}

// SetSystemStatus replaces the system status wholesale and derives the
// recording flag from it.
func (s *Store) SetSystemStatus(status wire.SystemStatus) {
	s.mu.Lock()
	s.status = status
	s.recording = status.IsRecording
	s.notifyLocked()
}

// AddReading appends a reading, evicting the oldest when the buffer
// is full.
func (s *Store) AddReading(r wire.Reading) {
	s.mu.Lock()
	s.readings.Append(r)
	s.notifyLocked()
}

// SetRecording overwrites the recording flag. The system status is
// untouched; between status messages the flag and status.IsRecording
// may disagree (last writer wins).
func (s *Store) SetRecording(recording bool) {
	s.mu.Lock()
	s.recording = recording
	s.notifyLocked()
}

// ClearReadings empties the reading buffer. System status and the
// recording flag are unaffected.
func (s *Store) ClearReadings() {
	s.mu.Lock()
	s.readings.Clear()
	s.notifyLocked()
}

// Snapshot returns an immutable copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers a callback invoked synchronously after each
// mutation. It returns an ID for Unsubscribe.
func (s *Store) Subscribe(fn SubscriberFunc) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := subscriberID.Add(1)
	s.subscribers[id] = fn
	s.order = append(s.order, id)
	return id
}

// Unsubscribe removes a subscriber. Unknown IDs are ignored.
func (s *Store) Unsubscribe(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscribers[id]; !exists {
		return
	}
	delete(s.subscribers, id)
	for i, sid := range s.order {
		if sid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// SubscriberCount returns the number of registered subscribers.
func (s *Store) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// snapshotLocked builds a snapshot. Caller holds at least a read lock.
func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Connection:  s.connection,
		Status:      s.status,
		IsRecording: s.recording,
		Readings:    s.readings.Snapshot(),
	}
}

// notifyLocked snapshots the state, releases the write lock and invokes
// subscribers in registration order. Callbacks run outside the lock so
// they may call Snapshot or Unsubscribe.
func (s *Store) notifyLocked() {
	snap := s.snapshotLocked()
	fns := make([]SubscriberFunc, 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.subscribers[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
