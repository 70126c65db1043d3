package wire

import (
	"encoding/json"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		data string
		kind Kind
	}{
		{
			name: "status",
			data: `{"type":"status","data":{"arduino_connected":true,"websocket_clients":2,"is_recording":true,"readings_count":42}}`,
			kind: KindStatus,
		},
		{
			name: "status without data payload",
			data: `{"type":"status"}`,
			kind: KindStatus,
		},
		{
			name: "recording started",
			data: `{"type":"recording_started"}`,
			kind: KindRecordingStarted,
		},
		{
			name: "recording stopped",
			data: `{"type":"recording_stopped"}`,
			kind: KindRecordingStopped,
		},
		{
			name: "readings cleared",
			data: `{"type":"readings_cleared"}`,
			kind: KindReadingsCleared,
		},
		{
			name: "pong",
			data: `{"type":"pong"}`,
			kind: KindPong,
		},
		{
			name: "reading",
			data: `{"timestamp":"2024-03-01T10:15:00","rpm":1500,"lift_force":2.5}`,
			kind: KindReading,
		},
		{
			name: "reading with unrecognized type tag",
			data: `{"type":"sample_v2","timestamp":"2024-03-01T10:15:00","rpm":900,"lift_force":1.1}`,
			kind: KindReading,
		},
		{
			name: "unknown type without timestamp",
			data: `{"type":"firmware_update","version":3}`,
			kind: KindUnknown,
		},
		{
			name: "empty object",
			data: `{}`,
			kind: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Classify([]byte(tt.data))
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if msg.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", msg.Kind, tt.kind)
			}
		})
	}
}

func TestClassifyStatusPayload(t *testing.T) {
	data := `{"type":"status","data":{"arduino_connected":true,"websocket_clients":3,"is_recording":false,"readings_count":17}}`

	msg, err := Classify([]byte(data))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if msg.Status == nil {
		t.Fatal("Status payload is nil")
	}
	if !msg.Status.DeviceConnected {
		t.Error("DeviceConnected = false, want true")
	}
	if msg.Status.ClientCount != 3 {
		t.Errorf("ClientCount = %d, want 3", msg.Status.ClientCount)
	}
	if msg.Status.IsRecording {
		t.Error("IsRecording = true, want false")
	}
	if msg.Status.ReadingsCount != 17 {
		t.Errorf("ReadingsCount = %d, want 17", msg.Status.ReadingsCount)
	}
}

func TestClassifyReadingFields(t *testing.T) {
	t.Run("KnownFields", func(t *testing.T) {
		data := `{"timestamp":"2024-03-01T10:15:00","rpm":1500.5,"lift_force":-0.25}`

		msg, err := Classify([]byte(data))
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		r := msg.Reading
		if r == nil {
			t.Fatal("Reading payload is nil")
		}
		if r.Timestamp != "2024-03-01T10:15:00" {
			t.Errorf("Timestamp = %q", r.Timestamp)
		}
		if r.RPM != 1500.5 {
			t.Errorf("RPM = %v, want 1500.5", r.RPM)
		}
		if r.LiftForce != -0.25 {
			t.Errorf("LiftForce = %v, want -0.25", r.LiftForce)
		}
		if r.Extra != nil {
			t.Errorf("Extra = %v, want nil", r.Extra)
		}
	})

	t.Run("ExtraNumericFields", func(t *testing.T) {
		data := `{"timestamp":"2024-03-01T10:15:00","rpm":1500,"lift_force":2.5,"wind_speed":12.3,"drag_force":0.8,"operator":"test"}`

		msg, err := Classify([]byte(data))
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		r := msg.Reading
		if len(r.Extra) != 2 {
			t.Fatalf("len(Extra) = %d, want 2 (%v)", len(r.Extra), r.Extra)
		}
		if r.Extra["wind_speed"] != 12.3 {
			t.Errorf("Extra[wind_speed] = %v, want 12.3", r.Extra["wind_speed"])
		}
		if r.Extra["drag_force"] != 0.8 {
			t.Errorf("Extra[drag_force] = %v, want 0.8", r.Extra["drag_force"])
		}
	})
}

func TestClassifyMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "truncated", data: `{"type":"status"`},
		{name: "not an object", data: `[1,2,3]`},
		{name: "plain text", data: `hello`},
		{name: "numeric timestamp", data: `{"timestamp":12345,"rpm":100}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Classify([]byte(tt.data)); err == nil {
				t.Error("Classify() error = nil, want error")
			}
		})
	}
}

func TestPeekType(t *testing.T) {
	typ, err := PeekType([]byte(`{"type":"pong"}`))
	if err != nil {
		t.Fatalf("PeekType() error = %v", err)
	}
	if typ != TypePong {
		t.Errorf("PeekType() = %q, want %q", typ, TypePong)
	}

	typ, err = PeekType([]byte(`{"timestamp":"2024-03-01T10:15:00","rpm":1}`))
	if err != nil {
		t.Fatalf("PeekType() error = %v", err)
	}
	if typ != "" {
		t.Errorf("PeekType() = %q, want empty", typ)
	}
}

func TestEncodeCommand(t *testing.T) {
	for _, action := range []Action{
		ActionStartRecording, ActionStopRecording, ActionClear, ActionGetStatus,
	} {
		data, err := EncodeCommand(action)
		if err != nil {
			t.Fatalf("EncodeCommand(%s) error = %v", action, err)
		}

		var decoded map[string]string
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded["type"] != TypeCommand {
			t.Errorf("type = %q, want %q", decoded["type"], TypeCommand)
		}
		if decoded["action"] != string(action) {
			t.Errorf("action = %q, want %q", decoded["action"], action)
		}
	}

	if _, err := EncodeCommand(Action("reboot")); err == nil {
		t.Error("EncodeCommand(reboot) error = nil, want error")
	}
}

func TestEncodePing(t *testing.T) {
	data, err := EncodePing()
	if err != nil {
		t.Fatalf("EncodePing() error = %v", err)
	}
	if string(data) != `{"type":"ping"}` {
		t.Errorf("EncodePing() = %s", data)
	}
}
