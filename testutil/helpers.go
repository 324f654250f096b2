package testutil

import (
	"context"
	"testing"
	"time"
)

// Context returns a context bound to the test's lifetime, timing out at 10s
// so a hung retry loop or channel read fails the test instead of the suite.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// Eventually polls cond every interval until it returns true or timeout
// elapses, failing the test otherwise.
func Eventually(t *testing.T, timeout, interval time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s", timeout)
		}
		time.Sleep(interval)
	}
}
