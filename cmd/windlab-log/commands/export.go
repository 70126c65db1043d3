package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/windlab-project/windlab-go/pkg/log"
	"github.com/windlab-project/windlab-go/pkg/wire"
)

// RunExport exports a capture file. Format "jsonl" writes one JSON
// event per line; "csv" extracts telemetry readings from captured
// frames into a spreadsheet-friendly table.
func RunExport(path, format, output string) error {
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(path, w)
	case "csv":
		return exportCSV(path, w)
	default:
		return fmt.Errorf("unknown format %q (jsonl, csv)", format)
	}
}

func exportJSONL(path string, w io.Writer) error {
	r, err := log.NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	enc := json.NewEncoder(w)
	for {
		event, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read capture: %w", err)
		}
		if err := enc.Encode(event); err != nil {
			return err
		}
	}
}

// exportCSV replays the inbound transport frames, classifies them and
// tabulates the readings. Extra numeric fields become additional
// columns, sorted by name.
func exportCSV(path string, w io.Writer) error {
	direction := log.DirectionIn
	layer := log.LayerTransport
	r, err := log.NewFilteredReader(path, log.Filter{
		Direction: &direction,
		Layer:     &layer,
	})
	if err != nil {
		return err
	}
	defer r.Close()

	var readings []*wire.Reading
	extraKeys := map[string]struct{}{}

	for {
		event, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read capture: %w", err)
		}
		if event.Frame == nil || event.Frame.Truncated {
			continue
		}

		msg, err := wire.Classify(event.Frame.Data)
		if err != nil || msg.Kind != wire.KindReading {
			continue
		}
		readings = append(readings, msg.Reading)
		for key := range msg.Reading.Extra {
			extraKeys[key] = struct{}{}
		}
	}

	extras := make([]string, 0, len(extraKeys))
	for key := range extraKeys {
		extras = append(extras, key)
	}
	sort.Strings(extras)

	cw := csv.NewWriter(w)
	header := append([]string{"timestamp", "rpm", "lift_force"}, extras...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, reading := range readings {
		row := []string{
			reading.Timestamp,
			formatFloat(reading.RPM),
			formatFloat(reading.LiftForce),
		}
		for _, key := range extras {
			if value, ok := reading.Extra[key]; ok {
				row = append(row, formatFloat(value))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
