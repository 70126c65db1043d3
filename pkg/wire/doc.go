// Package wire defines the JSON wire format for the WindLab backend.
//
// The backend streams telemetry and status over a websocket as small
// JSON objects discriminated by an optional "type" field.
//
// # Message Types
//
// Inbound (backend to client):
//   - status: full system status replacement
//   - recording_started / recording_stopped: recording flag events
//   - readings_cleared: reading history was cleared
//   - pong: keep-alive response (transport-level control)
//   - reading: any object carrying a "timestamp" field and no
//     recognized "type" tag
//
// Outbound (client to backend):
//   - command: one of start_recording, stop_recording, clear, get_status
//   - ping: keep-alive probe
//
// # Forward Compatibility
//
// Decoding is lenient: unknown tags and unknown fields are not errors.
// A frame that matches no known shape classifies as KindUnknown and is
// ignored by the dispatcher. Reading detection is deliberately a
// catch-all, not a true tag: a frame with an unrecognized "type" value
// but a "timestamp" field still classifies as a reading.
package wire
