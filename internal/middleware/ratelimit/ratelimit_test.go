package ratelimit

import (
	"testing"
	"time"
)

func TestAllowExhaustsBucket(t *testing.T) {
	rl := New(Config{MaxRequestsPerMinute: 3})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d denied within budget", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("request beyond budget was allowed")
	}

	// Budgets are per client.
	if !rl.allow("10.0.0.2") {
		t.Error("fresh client denied")
	}
}

func TestStopReleasesCleanupGoroutine(t *testing.T) {
	rl := New(Config{MaxRequestsPerMinute: 3})
	rl.Stop()

	select {
	case <-rl.done:
	case <-time.After(time.Second):
		t.Fatal("done channel not closed; cleanup goroutine would block forever")
	}
}
