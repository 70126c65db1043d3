package wire

import (
	"encoding/json"
	"fmt"
)

// knownReadingFields are top-level keys that never land in Reading.Extra.
var knownReadingFields = map[string]struct{}{
	"timestamp":  {},
	"rpm":        {},
	"lift_force": {},
	"type":       {},
}

// Classify decodes one inbound frame and determines its kind.
//
// Classification happens in priority order: the "type" discriminator is
// checked first; a frame whose tag matches nothing falls through to
// reading detection (presence of "timestamp"), and finally to
// KindUnknown. Unknown frames are not an error.
func Classify(data []byte) (*Message, error) {
	var probe struct {
		Type      string          `json:"type"`
		Timestamp json.RawMessage `json:"timestamp"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch probe.Type {
	case TypeStatus:
		status := &SystemStatus{}
		if len(probe.Data) > 0 {
			if err := json.Unmarshal(probe.Data, status); err != nil {
				return nil, fmt.Errorf("malformed status payload: %w", err)
			}
		}
		return &Message{Kind: KindStatus, Status: status}, nil

	case TypeRecordingStarted:
		return &Message{Kind: KindRecordingStarted}, nil

	case TypeRecordingStopped:
		return &Message{Kind: KindRecordingStopped}, nil

	case TypeReadingsCleared:
		return &Message{Kind: KindReadingsCleared}, nil

	case TypePong:
		return &Message{Kind: KindPong}, nil
	}

	// Not a recognized tag. A frame carrying a timestamp is a reading,
	// even when it also carries an unrelated "type" value.
	if len(probe.Timestamp) > 0 {
		reading, err := decodeReading(data)
		if err != nil {
			return nil, err
		}
		return &Message{Kind: KindReading, Reading: reading}, nil
	}

	return &Message{Kind: KindUnknown}, nil
}

// decodeReading decodes a reading frame, collecting any additional
// numeric fields into Extra.
func decodeReading(data []byte) (*Reading, error) {
	var reading Reading
	if err := json.Unmarshal(data, &reading); err != nil {
		return nil, fmt.Errorf("malformed reading: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("malformed reading: %w", err)
	}
	for key, value := range fields {
		if _, known := knownReadingFields[key]; known {
			continue
		}
		num, ok := value.(float64)
		if !ok {
			continue
		}
		if reading.Extra == nil {
			reading.Extra = make(map[string]float64)
		}
		reading.Extra[key] = num
	}

	return &reading, nil
}

// PeekType extracts just the "type" discriminator from a frame without
// decoding the payload. The transport layer uses this to intercept
// control frames (pong) before dispatch.
func PeekType(data []byte) (string, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", fmt.Errorf("malformed frame: %w", err)
	}
	return probe.Type, nil
}

// EncodeCommand encodes an outbound control command.
func EncodeCommand(action Action) ([]byte, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("invalid command action: %q", action)
	}
	return json.Marshal(Command{Type: TypeCommand, Action: action})
}

// EncodePing encodes a keep-alive probe.
func EncodePing() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
	}{Type: TypePing})
}
