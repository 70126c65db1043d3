package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/windlab-project/windlab-go/pkg/log"
)

// writeFixture builds a small capture file covering every event type.
func writeFixture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "session.wlog")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	logger.Log(log.NewStateChangeEvent("conn-a", "DISCONNECTED", "CONNECTING", ""))
	logger.Log(log.NewFrameEvent("conn-a", log.DirectionIn,
		[]byte(`{"type":"status","data":{"arduino_connected":true,"websocket_clients":1,"is_recording":false,"readings_count":0}}`)))
	logger.Log(log.NewFrameEvent("conn-a", log.DirectionIn,
		[]byte(`{"timestamp":"2024-03-01T10:15:00","rpm":1200,"lift_force":3.4,"temperature":21.5}`)))
	logger.Log(log.NewFrameEvent("conn-a", log.DirectionIn,
		[]byte(`{"timestamp":"2024-03-01T10:15:01","rpm":1250,"lift_force":3.6}`)))
	logger.Log(log.NewControlEvent("conn-a", log.DirectionOut, "ping"))
	logger.Log(log.NewMessageEvent("conn-b", log.DirectionOut, log.MessageEvent{
		Kind:   "COMMAND",
		Action: "start_recording",
	}))

	return path
}

func TestRunView(t *testing.T) {
	path := writeFixture(t)

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"CONNECTING", "Frame", "PING", "COMMAND", "start_recording"} {
		if !strings.Contains(out, want) {
			t.Errorf("view output missing %q:\n%s", want, out)
		}
	}
}

func TestRunViewFiltersByLayer(t *testing.T) {
	path := writeFixture(t)

	layer := log.LayerWire
	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Layer: &layer}, &buf); err != nil {
		t.Fatalf("RunView() error = %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "Frame") {
		t.Errorf("wire-layer view contains transport frames:\n%s", out)
	}
	if !strings.Contains(out, "COMMAND") {
		t.Errorf("wire-layer view missing wire events:\n%s", out)
	}
}

func TestRunViewFiltersByConnPrefix(t *testing.T) {
	path := writeFixture(t)

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{ConnID: "conn-b"}, &buf); err != nil {
		t.Fatalf("RunView() error = %v", err)
	}

	if strings.Contains(buf.String(), "conn-a") {
		t.Errorf("conn-b view contains conn-a events:\n%s", buf.String())
	}
}

func TestExportCSV(t *testing.T) {
	path := writeFixture(t)
	out := filepath.Join(t.TempDir(), "readings.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport() error = %v", err)
	}

	data := readFile(t, out)
	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv has %d lines, want header + 2 readings:\n%s", len(lines), data)
	}
	if lines[0] != "timestamp,rpm,lift_force,temperature" {
		t.Errorf("csv header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2024-03-01T10:15:00,1200,3.4,21.5") {
		t.Errorf("csv row = %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], ",") {
		t.Errorf("reading without extras should have empty extra cell: %q", lines[2])
	}
}

func TestExportJSONL(t *testing.T) {
	path := writeFixture(t)
	out := filepath.Join(t.TempDir(), "events.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(readFile(t, out)), "\n")
	if len(lines) != 6 {
		t.Errorf("jsonl has %d lines, want 6", len(lines))
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	path := writeFixture(t)
	if err := RunExport(path, "xml", ""); err == nil {
		t.Error("RunExport(xml) error = nil, want error")
	}
}

func TestRunFilter(t *testing.T) {
	path := writeFixture(t)
	out := filepath.Join(t.TempDir(), "filtered.wlog")

	category := log.CategoryMessage
	err := RunFilter(path, FilterOptions{
		Output:   out,
		ConnID:   "conn-a",
		Category: &category,
	})
	if err != nil {
		t.Fatalf("RunFilter() error = %v", err)
	}

	r, err := log.NewReader(out)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer r.Close()

	count := 0
	for {
		event, err := r.Next()
		if err != nil {
			break
		}
		if event.ConnectionID != "conn-a" || event.Category != log.CategoryMessage {
			t.Errorf("unexpected event in filtered file: %+v", event)
		}
		count++
	}
	if count != 3 {
		t.Errorf("filtered file has %d events, want 3", count)
	}
}

func TestRunStats(t *testing.T) {
	path := writeFixture(t)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Events:      6", "Connections: 2", "By layer:", "TRANSPORT", "COMMAND"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestParseFlags(t *testing.T) {
	if _, err := ParseLayerFlag("wire"); err != nil {
		t.Errorf("ParseLayerFlag(wire) error = %v", err)
	}
	if _, err := ParseLayerFlag("kernel"); err == nil {
		t.Error("ParseLayerFlag(kernel) error = nil, want error")
	}
	if _, err := ParseDirectionFlag("out"); err != nil {
		t.Errorf("ParseDirectionFlag(out) error = %v", err)
	}
	if _, err := ParseCategoryFlag("state"); err != nil {
		t.Errorf("ParseCategoryFlag(state) error = %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
