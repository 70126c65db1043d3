package log

import (
	"time"
)

// MaxFrameCapture is the maximum number of frame bytes stored per
// event; longer frames are truncated.
const MaxFrameCapture = 4096

// Event represents a client event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID). One ID
	// covers one transport lifetime; reconnects get a fresh ID.
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// Endpoint is the backend websocket URL.
	Endpoint string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Transport layer
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"` // Wire layer (classified)
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Connection state
	Control     *ControlEvent     `cbor:"13,keyasint,omitempty"` // Ping/pong
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the websocket layer (raw frames).
	LayerTransport Layer = 0
	// LayerWire is the message classification layer.
	LayerWire Layer = 1
	// LayerClient is the client/store layer.
	LayerClient Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerClient:
		return "CLIENT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a telemetry or command message.
	CategoryMessage Category = 0
	// CategoryControl indicates a control message (ping/pong).
	CategoryControl Category = 1
	// CategoryState indicates a connection state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryControl:
		return "CONTROL"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the transport layer.
type FrameEvent struct {
	// Size is the full frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MessageEvent captures a classified message at the wire layer.
type MessageEvent struct {
	// Kind is the classified kind name (STATUS, READING, ...) for
	// inbound frames, or COMMAND for outbound commands.
	Kind string `cbor:"1,keyasint"`

	// Action is the command action (outbound only).
	Action string `cbor:"2,keyasint,omitempty"`

	// ReadingTimestamp is the sample timestamp (readings only).
	ReadingTimestamp string `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures a connection state change.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ControlEvent captures a keep-alive control message.
type ControlEvent struct {
	// Type is "ping" or "pong".
	Type string `cbor:"1,keyasint"`
}

// ErrorEventData captures an error at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error text.
	Message string `cbor:"2,keyasint"`

	// Context describes what the client was doing.
	Context string `cbor:"3,keyasint,omitempty"`
}

// NewFrameEvent builds a transport frame event, truncating oversized
// payloads.
func NewFrameEvent(connID string, dir Direction, payload []byte) Event {
	frame := &FrameEvent{Size: len(payload)}
	if len(payload) > MaxFrameCapture {
		frame.Data = append([]byte(nil), payload[:MaxFrameCapture]...)
		frame.Truncated = true
	} else {
		frame.Data = append([]byte(nil), payload...)
	}
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    dir,
		Layer:        LayerTransport,
		Category:     CategoryMessage,
		Frame:        frame,
	}
}

// NewMessageEvent builds a classified message event at the wire layer.
func NewMessageEvent(connID string, dir Direction, msg MessageEvent) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    dir,
		Layer:        LayerWire,
		Category:     CategoryMessage,
		Message:      &msg,
	}
}

// NewStateChangeEvent builds a connection state change event.
func NewStateChangeEvent(connID, oldState, newState, reason string) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    DirectionIn,
		Layer:        LayerClient,
		Category:     CategoryState,
		StateChange: &StateChangeEvent{
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	}
}

// NewControlEvent builds a keep-alive control event.
func NewControlEvent(connID string, dir Direction, ctrlType string) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    dir,
		Layer:        LayerTransport,
		Category:     CategoryControl,
		Control:      &ControlEvent{Type: ctrlType},
	}
}

// NewErrorEvent builds an error event.
func NewErrorEvent(connID string, layer Layer, err error, context string) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    DirectionIn,
		Layer:        layer,
		Category:     CategoryError,
		Error: &ErrorEventData{
			Layer:   layer,
			Message: err.Error(),
			Context: context,
		},
	}
}
