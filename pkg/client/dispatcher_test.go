package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/windlab-project/windlab-go/pkg/state"
)

func dispatch(t *testing.T, store *state.Store, frames ...string) {
	t.Helper()
	d := NewDispatcher(store, nil, nil)
	for _, frame := range frames {
		d.Dispatch("conn-1", []byte(frame))
	}
}

func TestDispatchStatus(t *testing.T) {
	store := state.NewStore(10)
	dispatch(t, store,
		`{"type":"status","data":{"arduino_connected":true,"websocket_clients":2,"is_recording":true,"readings_count":7}}`)

	snap := store.Snapshot()
	assert.True(t, snap.Status.DeviceConnected)
	assert.Equal(t, 2, snap.Status.ClientCount)
	assert.Equal(t, 7, snap.Status.ReadingsCount)
	assert.True(t, snap.IsRecording, "recording flag derives from status")
}

func TestDispatchRecordingFlag(t *testing.T) {
	store := state.NewStore(10)

	dispatch(t, store, `{"type":"recording_started"}`)
	assert.True(t, store.Snapshot().IsRecording)

	dispatch(t, store, `{"type":"recording_stopped"}`)
	assert.False(t, store.Snapshot().IsRecording)
}

func TestDispatchReading(t *testing.T) {
	store := state.NewStore(10)
	dispatch(t, store,
		`{"timestamp":"2024-03-01T10:15:00","rpm":1200,"lift_force":3.4,"temperature":21.5}`)

	snap := store.Snapshot()
	assert.Len(t, snap.Readings, 1)
	assert.Equal(t, "2024-03-01T10:15:00", snap.Readings[0].Timestamp)
	assert.Equal(t, 1200.0, snap.Readings[0].RPM)
	assert.Equal(t, 3.4, snap.Readings[0].LiftForce)
	assert.Equal(t, 21.5, snap.Readings[0].Extra["temperature"])
}

func TestDispatchReadingsCleared(t *testing.T) {
	store := state.NewStore(10)
	dispatch(t, store,
		`{"timestamp":"2024-03-01T10:15:00","rpm":100,"lift_force":1}`,
		`{"type":"recording_started"}`,
		`{"type":"readings_cleared"}`)

	snap := store.Snapshot()
	assert.Empty(t, snap.Readings)
	assert.True(t, snap.IsRecording, "clearing readings leaves the recording flag alone")
}

func TestDispatchDropsMalformedFrames(t *testing.T) {
	store := state.NewStore(10)
	before := store.Snapshot()

	dispatch(t, store,
		`{"timestamp":`,           // truncated
		`[1,2,3]`,                 // not an object
		`{"timestamp":12345}`,     // numeric timestamp fails reading decode
		`{"type":"unrecognized"}`, // unknown tag, ignored
	)

	assert.Equal(t, before, store.Snapshot(), "bad frames must not mutate the store")
}

func TestDispatchOneMutationPerFrame(t *testing.T) {
	store := state.NewStore(10)

	var notifications int
	store.Subscribe(func(state.Snapshot) { notifications++ })

	dispatch(t, store,
		`{"type":"recording_started"}`,
		`{"timestamp":"2024-03-01T10:15:00","rpm":100,"lift_force":1}`)

	assert.Equal(t, 2, notifications)
}
