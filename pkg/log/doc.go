// Package log provides structured event capture for the WindLab client.
//
// This package defines the Logger interface and Event types for
// recording client-level events at multiple layers (transport, wire,
// client). It is separate from operational logging (slog) - event
// capture produces a complete machine-readable trace of a telemetry
// session for post-run analysis.
//
// # Basic Usage
//
// Applications configure capture by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For post-run analysis: write to a binary capture file
//	cfg.EventLogger, _ = log.NewFileLogger("run-42.wlog")
//
//	// Both: use MultiLogger
//	cfg.EventLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Capture files are a concatenated CBOR event stream with .wlog
// extension. The windlab-log CLI tool provides viewing, filtering, and
// CSV export of recorded readings.
package log
