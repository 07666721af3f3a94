package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerSchedulerFiresUntilCancelled(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	cancel := TickerScheduler{}.Every(5*time.Millisecond, func() { calls.Add(1) })

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected at least two ticks, got %d", calls.Load())
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	cancel()
	settled := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := calls.Load(); got != settled {
		t.Fatalf("ticks continued after cancel: %d -> %d", settled, got)
	}
}

func TestSystemClockIsUTC(t *testing.T) {
	t.Parallel()
	if loc := (SystemClock{}).Now().Location(); loc != time.UTC {
		t.Fatalf("expected UTC, got %v", loc)
	}
}
