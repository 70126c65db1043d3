package interactive

import (
	"strings"
	"testing"

	"github.com/windlab-project/windlab-go/pkg/state"
	"github.com/windlab-project/windlab-go/pkg/wire"
)

func TestFormatSnapshotLine(t *testing.T) {
	snap := state.Snapshot{
		Connection:  state.StatusConnected,
		IsRecording: true,
		Readings: []wire.Reading{
			{Timestamp: "2024-03-01T10:15:00", RPM: 1200, LiftForce: 3.456},
		},
	}

	line := FormatSnapshotLine(snap)

	for _, want := range []string{"CONNECTED", "rec=true", "buf=1", "rpm=1200.0", "lift=3.456"} {
		if !strings.Contains(line, want) {
			t.Errorf("FormatSnapshotLine() = %q, missing %q", line, want)
		}
	}
}

func TestFormatSnapshotLineEmpty(t *testing.T) {
	line := FormatSnapshotLine(state.Snapshot{Connection: state.StatusDisconnected})

	if !strings.Contains(line, "DISCONNECTED") || strings.Contains(line, "rpm=") {
		t.Errorf("FormatSnapshotLine() = %q", line)
	}
}
