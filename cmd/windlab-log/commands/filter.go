package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/windlab-project/windlab-go/pkg/log"
)

// FilterOptions configures the filter command.
type FilterOptions struct {
	// Output is the destination .wlog path.
	Output string

	// ConnID filters by connection ID prefix.
	ConnID string

	// Layer filters by capture layer.
	Layer *log.Layer

	// Category filters by event category.
	Category *log.Category
}

// RunFilter copies matching events into a new capture file.
func RunFilter(path string, opts FilterOptions) error {
	r, err := log.NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	out, err := os.Create(opts.Output)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := log.NewEncoder(out)
	kept := 0

	for {
		event, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read capture: %w", err)
		}

		if opts.ConnID != "" && !strings.HasPrefix(event.ConnectionID, opts.ConnID) {
			continue
		}
		if opts.Layer != nil && event.Layer != *opts.Layer {
			continue
		}
		if opts.Category != nil && event.Category != *opts.Category {
			continue
		}

		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
		kept++
	}

	fmt.Printf("Wrote %d events to %s\n", kept, opts.Output)
	return nil
}
