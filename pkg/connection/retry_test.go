package connection

import (
	"testing"
	"time"
)

func TestRetryDefaults(t *testing.T) {
	r := NewRetry(0)

	if r.Interval() != DefaultRetryInterval {
		t.Errorf("Interval() = %v, want %v", r.Interval(), DefaultRetryInterval)
	}
	if r.Attempts() != 0 {
		t.Errorf("Attempts() = %d, want 0", r.Attempts())
	}
}

func TestRetryFixedInterval(t *testing.T) {
	r := NewRetry(500 * time.Millisecond)

	// The delay never grows, regardless of how many attempts fail.
	for i := 1; i <= 5; i++ {
		if delay := r.Next(); delay != 500*time.Millisecond {
			t.Errorf("Next() #%d = %v, want 500ms", i, delay)
		}
	}
	if r.Attempts() != 5 {
		t.Errorf("Attempts() = %d, want 5", r.Attempts())
	}
}

func TestRetryReset(t *testing.T) {
	r := NewRetry(time.Second)

	r.Next()
	r.Next()
	r.Reset()

	if r.Attempts() != 0 {
		t.Errorf("Attempts() after Reset = %d, want 0", r.Attempts())
	}
	if delay := r.Next(); delay != time.Second {
		t.Errorf("Next() after Reset = %v, want 1s", delay)
	}
}
