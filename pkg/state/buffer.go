package state

import "github.com/windlab-project/windlab-go/pkg/wire"

// DefaultCapacity is the default reading buffer capacity.
const DefaultCapacity = 500

// ReadingBuffer is a fixed-capacity ring of readings with drop-oldest
// eviction. It is not safe for concurrent use; the Store serializes
// access to it.
type ReadingBuffer struct {
	entries []wire.Reading
	head    int // index of the oldest entry
	size    int
}

// NewReadingBuffer creates a buffer holding at most capacity readings.
// A capacity of zero or less falls back to DefaultCapacity.
func NewReadingBuffer(capacity int) *ReadingBuffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ReadingBuffer{
		entries: make([]wire.Reading, capacity),
	}
}

// Append adds a reading, evicting the oldest entry when full.
func (b *ReadingBuffer) Append(r wire.Reading) {
	tail := (b.head + b.size) % len(b.entries)
	b.entries[tail] = r
	if b.size < len(b.entries) {
		b.size++
		return
	}
	// Buffer full: the slot we just wrote was the oldest entry.
	b.head = (b.head + 1) % len(b.entries)
}

// Len returns the number of buffered readings.
func (b *ReadingBuffer) Len() int {
	return b.size
}

// Cap returns the buffer capacity.
func (b *ReadingBuffer) Cap() int {
	return len(b.entries)
}

// Clear empties the buffer.
func (b *ReadingBuffer) Clear() {
	b.head = 0
	b.size = 0
}

// Snapshot returns the buffered readings oldest-first as a fresh slice.
func (b *ReadingBuffer) Snapshot() []wire.Reading {
	out := make([]wire.Reading, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.entries[(b.head+i)%len(b.entries)]
	}
	return out
}
