// Package client provides the high-level telemetry client.
//
// Client ties the layers together: it dials the backend over
// websocket (transport), keeps the connection alive with automatic
// reconnection (connection), classifies inbound frames (wire), and
// applies them to an observable in-memory store (state).
//
// # Usage
//
//	cfg := config.Default()
//	c, err := client.New(cfg, client.Options{})
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	c.Subscribe(func(snap state.Snapshot) {
//		fmt.Println(snap.Connection, len(snap.Readings))
//	})
//	c.Connect(context.Background())
//
// Commands are fire-and-forget: they are dropped with a warning when
// the client is not connected, and no response is awaited. Effects
// arrive as ordinary inbound messages.
package client
