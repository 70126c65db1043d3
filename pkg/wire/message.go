package wire

// Discriminator values used in the "type" field.
const (
	TypeStatus           = "status"
	TypeRecordingStarted = "recording_started"
	TypeRecordingStopped = "recording_stopped"
	TypeReadingsCleared  = "readings_cleared"
	TypeCommand          = "command"
	TypePing             = "ping"
	TypePong             = "pong"
)

// Kind classifies a decoded inbound frame.
type Kind uint8

const (
	// KindUnknown indicates a frame that matched no known shape.
	// The dispatcher ignores these.
	KindUnknown Kind = iota

	// KindStatus indicates a full system status replacement.
	KindStatus

	// KindRecordingStarted indicates recording was started.
	KindRecordingStarted

	// KindRecordingStopped indicates recording was stopped.
	KindRecordingStopped

	// KindReadingsCleared indicates the reading history was cleared.
	KindReadingsCleared

	// KindReading indicates a telemetry reading.
	KindReading

	// KindPong indicates a keep-alive response.
	// Handled at the transport layer, never dispatched.
	KindPong
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "STATUS"
	case KindRecordingStarted:
		return "RECORDING_STARTED"
	case KindRecordingStopped:
		return "RECORDING_STOPPED"
	case KindReadingsCleared:
		return "READINGS_CLEARED"
	case KindReading:
		return "READING"
	case KindPong:
		return "PONG"
	default:
		return "UNKNOWN"
	}
}

// SystemStatus is the backend's status payload. It is replaced
// wholesale on every status message; there is no partial merge.
type SystemStatus struct {
	// DeviceConnected reports whether the Arduino sensor bridge is up.
	DeviceConnected bool `json:"arduino_connected"`

	// ClientCount is the number of websocket clients on the backend.
	ClientCount int `json:"websocket_clients"`

	// IsRecording reports whether the backend is persisting readings.
	IsRecording bool `json:"is_recording"`

	// ReadingsCount is the number of readings recorded so far.
	ReadingsCount int `json:"readings_count"`
}

// Reading is one telemetry sample. Readings are immutable once decoded;
// ordering is arrival order, assumed chronological.
type Reading struct {
	// Timestamp is the sample time as an ISO-8601 string.
	Timestamp string `json:"timestamp"`

	// RPM is the propeller rotation speed.
	RPM float64 `json:"rpm"`

	// LiftForce is the measured lift in newtons.
	LiftForce float64 `json:"lift_force"`

	// Extra holds additional numeric fields the backend may attach.
	// Nil when the frame carried none.
	Extra map[string]float64 `json:"-"`
}

// Message is the result of classifying one inbound frame.
// Exactly one payload pointer is set, matching Kind.
type Message struct {
	Kind    Kind
	Status  *SystemStatus
	Reading *Reading
}

// Action identifies an outbound control command.
type Action string

const (
	// ActionStartRecording asks the backend to start persisting readings.
	ActionStartRecording Action = "start_recording"

	// ActionStopRecording asks the backend to stop persisting readings.
	ActionStopRecording Action = "stop_recording"

	// ActionClear asks the backend to clear its reading history.
	ActionClear Action = "clear"

	// ActionGetStatus asks the backend to send a status message.
	ActionGetStatus Action = "get_status"
)

// IsValid reports whether the action is one the backend understands.
func (a Action) IsValid() bool {
	switch a {
	case ActionStartRecording, ActionStopRecording, ActionClear, ActionGetStatus:
		return true
	default:
		return false
	}
}

// Command is the outbound control message envelope.
type Command struct {
	Type   string `json:"type"`
	Action Action `json:"action"`
}
