// Package leaktest checks that tests do not leave goroutines behind.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

const (
	settleDelay  = 10 * time.Millisecond
	pollInterval = 20 * time.Millisecond
	// DefaultWait is how long Check waits for goroutines to exit
	DefaultWait = 2 * time.Second
)

// GoroutineChecker compares the goroutine count against a baseline taken at creation
type GoroutineChecker struct {
	before int
	t      testing.TB
}

// NewGoroutineChecker records the current goroutine count
func NewGoroutineChecker(t testing.TB) *GoroutineChecker {
	t.Helper()
	runtime.Gosched()
	time.Sleep(settleDelay)
	return &GoroutineChecker{before: runtime.NumGoroutine(), t: t}
}

// Leaked returns how many goroutines exist beyond the baseline
func (g *GoroutineChecker) Leaked() int {
	return runtime.NumGoroutine() - g.before
}

// Check fails the test when more than tolerance goroutines are still running
// after DefaultWait. Stopped workers and timers usually exit within a few polls.
func (g *GoroutineChecker) Check(tolerance int) {
	g.t.Helper()
	g.CheckWithin(tolerance, DefaultWait)
}

// CheckWithin is Check with an explicit wait
func (g *GoroutineChecker) CheckWithin(tolerance int, wait time.Duration) {
	g.t.Helper()

	deadline := time.Now().Add(wait)
	leaked := g.Leaked()
	for leaked > tolerance && time.Now().Before(deadline) {
		time.Sleep(pollInterval)
		runtime.GC()
		leaked = g.Leaked()
	}

	if leaked > tolerance {
		g.t.Errorf("Potential goroutine leak: before=%d, after=%d, leaked=%d (tolerance=%d)",
			g.before, g.before+leaked, leaked, tolerance)
	}
}
