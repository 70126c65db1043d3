// Package state holds the client's in-memory view of the backend.
//
// The Store keeps four pieces of state: the connection status, the most
// recent system status, the recording flag, and a bounded history of
// readings. Mutation follows a single-writer discipline (the client's
// event loop); any goroutine may take a Snapshot.
//
// # Subscriptions
//
// Subscribers are notified synchronously after every mutation, in
// registration order, with an immutable snapshot. Callbacks must not
// block; they run on the mutating goroutine.
//
// # Reading History
//
// The reading buffer is a fixed-capacity ring with drop-oldest
// eviction: appending to a full buffer discards the earliest entries,
// and the relative order of retained entries is always preserved.
package state
