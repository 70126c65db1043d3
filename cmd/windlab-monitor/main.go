// Command windlab-monitor is a terminal client for a windlab wind
// tunnel backend.
//
// It connects to the backend's websocket, mirrors the live telemetry
// state and offers an interactive console for controlling recording.
//
// Usage:
//
//	windlab-monitor [flags]
//
// Flags:
//
//	-config string     Configuration file path (default "windlab.yaml")
//	-endpoint string   Backend websocket URL (overrides config)
//	-discover          Find a backend via mDNS when no endpoint works
//	-capture string    Capture protocol events to this .wlog file
//	-log-level string  Log level: debug, info, warn, error
//	-watch             Print each telemetry update instead of the console
//
// Examples:
//
//	# Connect to the default local backend with the console
//	windlab-monitor
//
//	# Find a backend on the bench network
//	windlab-monitor -discover
//
//	# Record a capture file while watching readings scroll by
//	windlab-monitor -watch -capture session.wlog
//
// Interactive Commands:
//
//	status   - Show connection and backend status
//	start    - Start recording
//	stop     - Stop recording
//	clear    - Clear the reading history
//	readings - Show the most recent readings
//	watch    - Stream updates until Enter is pressed
//	quit     - Exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/windlab-project/windlab-go/cmd/windlab-monitor/interactive"
	"github.com/windlab-project/windlab-go/pkg/client"
	"github.com/windlab-project/windlab-go/pkg/config"
	"github.com/windlab-project/windlab-go/pkg/discovery"
	"github.com/windlab-project/windlab-go/pkg/log"
	"github.com/windlab-project/windlab-go/pkg/state"
)

type flags struct {
	ConfigFile string
	Endpoint   string
	Discover   bool
	Capture    string
	LogLevel   string
	Watch      bool
}

func main() {
	var f flags
	flag.StringVar(&f.ConfigFile, "config", "windlab.yaml", "Configuration file path")
	flag.StringVar(&f.Endpoint, "endpoint", "", "Backend websocket URL (overrides config)")
	flag.BoolVar(&f.Discover, "discover", false, "Find a backend via mDNS")
	flag.StringVar(&f.Capture, "capture", "", "Capture protocol events to this .wlog file")
	flag.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&f.Watch, "watch", false, "Print each telemetry update instead of the console")
	flag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	cfg, err := config.Load(f.ConfigFile)
	if err != nil {
		return err
	}
	if f.Endpoint != "" {
		cfg.Endpoint = f.Endpoint
	}
	if f.Capture != "" {
		cfg.Capture.Enabled = true
		cfg.Capture.Path = f.Capture
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}

	logger := newLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if f.Discover {
		endpoint, err := discoverBackend(ctx, logger)
		if err != nil {
			return err
		}
		cfg.Endpoint = endpoint
	}

	capture, closeCapture, err := newCapture(cfg)
	if err != nil {
		return err
	}
	defer closeCapture()

	c, err := client.New(cfg, client.Options{
		Capture: capture,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Connect(ctx); err != nil {
		// The client keeps retrying in the background.
		logger.Warn("initial connect failed, retrying",
			"endpoint", cfg.Endpoint, "interval", cfg.ReconnectInterval.Std())
	}

	if f.Watch {
		return watch(ctx, c)
	}

	console, err := interactive.New(c, cfg.Endpoint)
	if err != nil {
		return err
	}
	console.Run(ctx, cancel)
	return nil
}

// newLogger builds the console slog logger.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// newCapture opens the capture file when enabled.
func newCapture(cfg config.Config) (log.Logger, func(), error) {
	if !cfg.Capture.Enabled {
		return nil, func() {}, nil
	}
	fl, err := log.NewFileLogger(cfg.Capture.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open capture file: %w", err)
	}
	return fl, func() { fl.Close() }, nil
}

// discoverBackend browses mDNS for a backend and returns its endpoint.
func discoverBackend(ctx context.Context, logger *slog.Logger) (string, error) {
	logger.Info("browsing for windlab backends", "timeout", discovery.BrowseTimeout)

	browseCtx, cancel := context.WithTimeout(ctx, discovery.BrowseTimeout)
	defer cancel()

	browser := discovery.NewBrowser(discovery.BrowserConfig{})
	svc, err := browser.Find(browseCtx)
	if err != nil {
		return "", err
	}

	logger.Info("found backend",
		"instance", svc.InstanceName, "name", svc.Name, "endpoint", svc.Endpoint())
	return svc.Endpoint(), nil
}

// watch streams one line per telemetry update until the context ends.
func watch(ctx context.Context, c *client.Client) error {
	updates := make(chan state.Snapshot, 64)
	id := c.Subscribe(func(snap state.Snapshot) {
		select {
		case updates <- snap:
		default:
			// Viewer lagging; drop the update, the next one carries
			// the full state anyway.
		}
	})
	defer c.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-updates:
			fmt.Println(interactive.FormatSnapshotLine(snap))
		}
	}
}
