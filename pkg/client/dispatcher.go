package client

import (
	"log/slog"

	"github.com/windlab-project/windlab-go/pkg/log"
	"github.com/windlab-project/windlab-go/pkg/state"
	"github.com/windlab-project/windlab-go/pkg/wire"
)

// Dispatcher routes classified inbound frames to the state store.
// Each frame produces at most one store mutation; frames that fail to
// decode are logged and dropped without touching the store.
type Dispatcher struct {
	store   *state.Store
	capture log.Logger
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher writing to the given store.
func NewDispatcher(store *state.Store, capture log.Logger, logger *slog.Logger) *Dispatcher {
	if capture == nil {
		capture = log.NoopLogger{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:   store,
		capture: capture,
		logger:  logger,
	}
}

// Dispatch classifies one inbound frame and applies it to the store.
func (d *Dispatcher) Dispatch(connID string, data []byte) {
	msg, err := wire.Classify(data)
	if err != nil {
		d.capture.Log(log.NewErrorEvent(connID, log.LayerWire, err, "classify"))
		d.logger.Warn("dropping malformed frame", "error", err)
		return
	}

	switch msg.Kind {
	case wire.KindStatus:
		d.store.SetSystemStatus(*msg.Status)

	case wire.KindRecordingStarted:
		d.store.SetRecording(true)

	case wire.KindRecordingStopped:
		d.store.SetRecording(false)

	case wire.KindReadingsCleared:
		d.store.ClearReadings()

	case wire.KindReading:
		d.store.AddReading(*msg.Reading)

	case wire.KindPong:
		// Intercepted at the transport layer; nothing to do if one
		// slips through.
		return

	default:
		d.logger.Debug("ignoring unknown frame")
		return
	}

	event := log.MessageEvent{Kind: msg.Kind.String()}
	if msg.Reading != nil {
		event.ReadingTimestamp = msg.Reading.Timestamp
	}
	d.capture.Log(log.NewMessageEvent(connID, log.DirectionIn, event))
}
