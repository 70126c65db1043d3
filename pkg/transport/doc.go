// Package transport provides the websocket transport layer.
//
// The transport layer handles:
//   - Websocket connections to the backend (gorilla/websocket)
//   - Serial delivery of inbound frames to a Handler
//   - Keep-alive ping/pong for connection liveness
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      JSON Messages             │
//	├────────────────────────────────┤
//	│   Websocket Text Frames        │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// Each Conn covers exactly one websocket lifetime and carries a unique
// connection ID. Reconnecting means dialing a fresh Conn; the
// connection package owns that policy.
//
// # Keep-Alive
//
// Connection liveness is monitored using JSON ping/pong messages:
//   - Ping interval: 15 seconds
//   - Pong timeout: 5 seconds
//   - Max missed pongs: 3
//
// Pong frames are intercepted here and never reach the Handler.
package transport
