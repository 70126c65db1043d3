package state

import (
	"fmt"
	"testing"

	"github.com/windlab-project/windlab-go/pkg/wire"
)

func reading(n int) wire.Reading {
	return wire.Reading{
		Timestamp: fmt.Sprintf("2024-03-01T10:00:%02d", n),
		RPM:       float64(n),
	}
}

func TestReadingBufferBound(t *testing.T) {
	const capacity = 3
	b := NewReadingBuffer(capacity)

	for n := 1; n <= 10; n++ {
		b.Append(reading(n))
		if b.Len() > capacity {
			t.Fatalf("Len() = %d after %d appends, exceeds capacity %d", b.Len(), n, capacity)
		}
	}

	// Retained entries are exactly the most recent capacity insertions,
	// in original order.
	snap := b.Snapshot()
	if len(snap) != capacity {
		t.Fatalf("len(Snapshot()) = %d, want %d", len(snap), capacity)
	}
	for i, want := range []float64{8, 9, 10} {
		if snap[i].RPM != want {
			t.Errorf("Snapshot()[%d].RPM = %v, want %v", i, snap[i].RPM, want)
		}
	}
}

func TestReadingBufferPartialFill(t *testing.T) {
	b := NewReadingBuffer(5)

	b.Append(reading(1))
	b.Append(reading(2))

	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
	snap := b.Snapshot()
	if len(snap) != 2 || snap[0].RPM != 1 || snap[1].RPM != 2 {
		t.Errorf("Snapshot() = %v", snap)
	}
}

func TestReadingBufferClear(t *testing.T) {
	b := NewReadingBuffer(3)
	for n := 1; n <= 5; n++ {
		b.Append(reading(n))
	}

	b.Clear()

	if b.Len() != 0 {
		t.Errorf("Len() = %d after clear, want 0", b.Len())
	}
	if len(b.Snapshot()) != 0 {
		t.Errorf("Snapshot() = %v after clear, want empty", b.Snapshot())
	}

	// A fresh sequence starts cleanly after clear.
	b.Append(reading(6))
	snap := b.Snapshot()
	if len(snap) != 1 || snap[0].RPM != 6 {
		t.Errorf("Snapshot() = %v after post-clear append", snap)
	}
}

func TestReadingBufferDefaultCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		b := NewReadingBuffer(capacity)
		if b.Cap() != DefaultCapacity {
			t.Errorf("NewReadingBuffer(%d).Cap() = %d, want %d", capacity, b.Cap(), DefaultCapacity)
		}
	}
}

func TestReadingBufferSnapshotIsCopy(t *testing.T) {
	b := NewReadingBuffer(3)
	b.Append(reading(1))

	snap := b.Snapshot()
	snap[0].RPM = 999

	if got := b.Snapshot()[0].RPM; got != 1 {
		t.Errorf("buffer entry mutated through snapshot: RPM = %v", got)
	}
}
