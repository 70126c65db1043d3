package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/windlab-project/windlab-go/pkg/log"
)

// captureStats aggregates counts over one capture file.
type captureStats struct {
	Total       int
	ByLayer     map[string]int
	ByCategory  map[string]int
	ByKind      map[string]int
	Connections map[string]struct{}
	Errors      int
	FrameBytes  int
	First       time.Time
	Last        time.Time
}

// RunStats reads the capture file and prints summary statistics.
func RunStats(path string, w io.Writer) error {
	r, err := log.NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	stats := captureStats{
		ByLayer:     map[string]int{},
		ByCategory:  map[string]int{},
		ByKind:      map[string]int{},
		Connections: map[string]struct{}{},
	}

	for {
		event, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read capture: %w", err)
		}

		stats.Total++
		stats.ByLayer[event.Layer.String()]++
		stats.ByCategory[event.Category.String()]++
		if event.ConnectionID != "" {
			stats.Connections[event.ConnectionID] = struct{}{}
		}
		if event.Message != nil {
			stats.ByKind[event.Message.Kind]++
		}
		if event.Error != nil {
			stats.Errors++
		}
		if event.Frame != nil {
			stats.FrameBytes += event.Frame.Size
		}

		if stats.First.IsZero() || event.Timestamp.Before(stats.First) {
			stats.First = event.Timestamp
		}
		if event.Timestamp.After(stats.Last) {
			stats.Last = event.Timestamp
		}
	}

	fmt.Fprintf(w, "Events:      %d\n", stats.Total)
	fmt.Fprintf(w, "Connections: %d\n", len(stats.Connections))
	fmt.Fprintf(w, "Errors:      %d\n", stats.Errors)
	fmt.Fprintf(w, "Frame bytes: %d\n", stats.FrameBytes)
	if !stats.First.IsZero() {
		fmt.Fprintf(w, "Time range:  %s .. %s (%s)\n",
			stats.First.UTC().Format(time.RFC3339),
			stats.Last.UTC().Format(time.RFC3339),
			stats.Last.Sub(stats.First).Round(time.Millisecond))
	}

	printCounts(w, "By layer:", stats.ByLayer)
	printCounts(w, "By category:", stats.ByCategory)
	if len(stats.ByKind) > 0 {
		printCounts(w, "By message kind:", stats.ByKind)
	}

	return nil
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, title)

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(w, "  %-20s %d\n", key, counts[key])
	}
}
