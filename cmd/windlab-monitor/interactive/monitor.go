// Package interactive provides the interactive console for
// windlab-monitor.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/windlab-project/windlab-go/pkg/client"
	"github.com/windlab-project/windlab-go/pkg/state"
)

// Monitor handles interactive mode for windlab-monitor.
type Monitor struct {
	client   *client.Client
	endpoint string
	rl       *readline.Instance
}

// New creates an interactive monitor.
func New(c *client.Client, endpoint string) (*Monitor, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "windlab> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Monitor{
		client:   c,
		endpoint: endpoint,
		rl:       rl,
	}, nil
}

// Run starts the interactive command loop. It returns when the user
// quits or the context is cancelled.
func (m *Monitor) Run(ctx context.Context, cancel context.CancelFunc) {
	defer m.rl.Close()

	m.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := m.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			cancel()
			return
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			m.printHelp()

		case "status", "s":
			m.cmdStatus()

		case "start":
			m.client.StartRecording()
			fmt.Println("Requested recording start")

		case "stop":
			m.client.StopRecording()
			fmt.Println("Requested recording stop")

		case "clear":
			m.client.ClearReadings()
			fmt.Println("Requested reading history clear")

		case "readings", "r":
			m.cmdReadings(args)

		case "watch", "w":
			m.cmdWatch()

		case "quit", "exit", "q":
			fmt.Println("Exiting...")
			cancel()
			return

		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (m *Monitor) printHelp() {
	fmt.Println(`
WindLab Monitor Commands:
  status             - Show connection and backend status
  start              - Start recording
  stop               - Stop recording
  clear              - Clear the reading history
  readings [n]       - Show the n most recent readings (default 10)
  watch              - Stream updates until Enter is pressed
  quit               - Exit`)
}

func (m *Monitor) cmdStatus() {
	snap := m.client.Snapshot()

	fmt.Printf("Endpoint:    %s\n", m.endpoint)
	fmt.Printf("Connection:  %s\n", snap.Connection)
	fmt.Printf("Recording:   %v\n", snap.IsRecording)
	fmt.Printf("Device:      connected=%v\n", snap.Status.DeviceConnected)
	fmt.Printf("Clients:     %d\n", snap.Status.ClientCount)
	fmt.Printf("Recorded:    %d readings on backend\n", snap.Status.ReadingsCount)
	fmt.Printf("Buffered:    %d readings locally\n", len(snap.Readings))

	// Nudge the backend so the next status is fresh.
	m.client.RequestStatus()
}

func (m *Monitor) cmdReadings(args []string) {
	n := 10
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed <= 0 {
			fmt.Printf("Invalid count: %s\n", args[0])
			return
		}
		n = parsed
	}

	readings := m.client.Snapshot().Readings
	if len(readings) == 0 {
		fmt.Println("No readings buffered")
		return
	}
	if n > len(readings) {
		n = len(readings)
	}

	for _, reading := range readings[len(readings)-n:] {
		fmt.Printf("  %s  rpm=%.1f  lift=%.3f", reading.Timestamp, reading.RPM, reading.LiftForce)
		for key, value := range reading.Extra {
			fmt.Printf("  %s=%.3f", key, value)
		}
		fmt.Println()
	}
}

// cmdWatch streams snapshot lines until the user presses Enter.
func (m *Monitor) cmdWatch() {
	fmt.Println("Watching (press Enter to stop)...")

	updates := make(chan state.Snapshot, 64)
	id := m.client.Subscribe(func(snap state.Snapshot) {
		select {
		case updates <- snap:
		default:
		}
	})
	defer m.client.Unsubscribe(id)

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.rl.Readline()
	}()

	w := m.rl.Stdout()
	for {
		select {
		case <-done:
			return
		case snap := <-updates:
			fmt.Fprintln(w, FormatSnapshotLine(snap))
		}
	}
}

// FormatSnapshotLine renders one snapshot as a compact status line.
func FormatSnapshotLine(snap state.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] rec=%v buf=%d", snap.Connection, snap.IsRecording, len(snap.Readings))
	if len(snap.Readings) > 0 {
		last := snap.Readings[len(snap.Readings)-1]
		fmt.Fprintf(&b, " | %s rpm=%.1f lift=%.3f", last.Timestamp, last.RPM, last.LiftForce)
	}
	return b.String()
}
