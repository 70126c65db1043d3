package state

import (
	"testing"

	"github.com/windlab-project/windlab-go/pkg/wire"
)

func TestStoreInitialState(t *testing.T) {
	s := NewStore(10)

	snap := s.Snapshot()
	if snap.Connection != StatusDisconnected {
		t.Errorf("Connection = %v, want DISCONNECTED", snap.Connection)
	}
	if snap.IsRecording {
		t.Error("IsRecording = true, want false")
	}
	if len(snap.Readings) != 0 {
		t.Errorf("Readings = %v, want empty", snap.Readings)
	}
}

func TestStoreSetSystemStatus(t *testing.T) {
	s := NewStore(10)

	s.SetSystemStatus(wire.SystemStatus{
		DeviceConnected: true,
		ClientCount:     2,
		IsRecording:     true,
		ReadingsCount:   7,
	})

	snap := s.Snapshot()
	if !snap.Status.DeviceConnected {
		t.Error("Status.DeviceConnected = false, want true")
	}
	if !snap.IsRecording {
		t.Error("IsRecording = false, want true (derived from status)")
	}

	// Full replacement, no partial merge.
	s.SetSystemStatus(wire.SystemStatus{ClientCount: 1})
	snap = s.Snapshot()
	if snap.Status.DeviceConnected {
		t.Error("Status.DeviceConnected survived replacement")
	}
	if snap.IsRecording {
		t.Error("IsRecording = true, want false after replacement")
	}
}

func TestStoreRecordingLastWriterWins(t *testing.T) {
	s := NewStore(10)

	// Status says recording; a later stop event overrides the flag but
	// leaves the status object untouched.
	s.SetSystemStatus(wire.SystemStatus{IsRecording: true})
	s.SetRecording(false)

	snap := s.Snapshot()
	if snap.IsRecording {
		t.Error("IsRecording = true, want false (last writer wins)")
	}
	if !snap.Status.IsRecording {
		t.Error("Status.IsRecording = false, want true (status untouched)")
	}
}

func TestStoreClearReadings(t *testing.T) {
	s := NewStore(10)
	s.SetSystemStatus(wire.SystemStatus{IsRecording: true, ReadingsCount: 3})
	s.AddReading(reading(1))
	s.AddReading(reading(2))

	s.ClearReadings()

	snap := s.Snapshot()
	if len(snap.Readings) != 0 {
		t.Errorf("Readings = %v after clear, want empty", snap.Readings)
	}
	if !snap.IsRecording {
		t.Error("ClearReadings changed the recording flag")
	}
	if snap.Status.ReadingsCount != 3 {
		t.Error("ClearReadings changed the system status")
	}

	s.AddReading(reading(3))
	snap = s.Snapshot()
	if len(snap.Readings) != 1 || snap.Readings[0].RPM != 3 {
		t.Errorf("Readings = %v after post-clear append", snap.Readings)
	}
}

func TestStoreDropOldest(t *testing.T) {
	s := NewStore(3)
	for n := 1; n <= 5; n++ {
		s.AddReading(reading(n))
	}

	snap := s.Snapshot()
	if len(snap.Readings) != 3 {
		t.Fatalf("len(Readings) = %d, want 3", len(snap.Readings))
	}
	for i, want := range []float64{3, 4, 5} {
		if snap.Readings[i].RPM != want {
			t.Errorf("Readings[%d].RPM = %v, want %v", i, snap.Readings[i].RPM, want)
		}
	}
}

func TestStoreSubscribers(t *testing.T) {
	t.Run("NotifiedOnEveryMutation", func(t *testing.T) {
		s := NewStore(10)

		var snaps []Snapshot
		s.Subscribe(func(snap Snapshot) {
			snaps = append(snaps, snap)
		})

		s.SetConnectionStatus(StatusConnecting)
		s.SetConnectionStatus(StatusConnected)
		s.AddReading(reading(1))
		s.SetRecording(true)
		s.ClearReadings()

		if len(snaps) != 5 {
			t.Fatalf("got %d notifications, want 5", len(snaps))
		}
		if snaps[0].Connection != StatusConnecting {
			t.Errorf("snaps[0].Connection = %v", snaps[0].Connection)
		}
		if len(snaps[2].Readings) != 1 {
			t.Errorf("snaps[2].Readings = %v", snaps[2].Readings)
		}
		if !snaps[3].IsRecording {
			t.Error("snaps[3].IsRecording = false")
		}
		if len(snaps[4].Readings) != 0 {
			t.Errorf("snaps[4].Readings = %v", snaps[4].Readings)
		}
	})

	t.Run("RegistrationOrder", func(t *testing.T) {
		s := NewStore(10)

		var calls []string
		s.Subscribe(func(Snapshot) { calls = append(calls, "first") })
		s.Subscribe(func(Snapshot) { calls = append(calls, "second") })

		s.SetRecording(true)

		if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
			t.Errorf("calls = %v", calls)
		}
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		s := NewStore(10)

		count := 0
		id := s.Subscribe(func(Snapshot) { count++ })

		s.SetRecording(true)
		s.Unsubscribe(id)
		s.SetRecording(false)

		if count != 1 {
			t.Errorf("count = %d, want 1", count)
		}
		if s.SubscriberCount() != 0 {
			t.Errorf("SubscriberCount() = %d, want 0", s.SubscriberCount())
		}
	})

	t.Run("CallbackMaySnapshot", func(t *testing.T) {
		s := NewStore(10)

		var fromCallback Snapshot
		s.Subscribe(func(Snapshot) {
			fromCallback = s.Snapshot()
		})

		s.SetRecording(true)

		if !fromCallback.IsRecording {
			t.Error("Snapshot() inside callback saw stale state")
		}
	})
}
