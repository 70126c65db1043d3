// Package connection provides connection lifecycle management.
//
// This package handles:
//   - Connection state tracking
//   - Automatic reconnection on connection loss
//   - Fixed-interval retry scheduling
//
// # Reconnection Strategy
//
// When a connection attempt fails or an established connection drops,
// the manager enters the Error state and retries at a fixed interval
// (default 3 seconds) indefinitely:
//
//  1. Attempt fails -> Error
//  2. Wait the retry interval
//  3. Attempt again -> Connected on success, Error on failure
//
// There is no backoff growth and no attempt cap; the backend is a
// single local instrument server, not a shared fleet endpoint.
//
// # Cancellation
//
// Disconnect cancels a pending retry and any in-flight attempt
// atomically: after Disconnect returns, no further attempts fire
// until Connect is called again.
package connection
