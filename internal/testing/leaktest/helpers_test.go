package leaktest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGoroutineChecker_NoLeak(t *testing.T) {
	checker := NewGoroutineChecker(t)
	checker.Check(0)
}

func TestGoroutineChecker_WaitsForExit(t *testing.T) {
	checker := NewGoroutineChecker(t)

	go func() { time.Sleep(100 * time.Millisecond) }()

	checker.CheckWithin(0, time.Second)
}

func TestGoroutineChecker_Leaked(t *testing.T) {
	checker := NewGoroutineChecker(t)

	done := make(chan struct{})
	go func() { <-done }()

	assert.Eventually(t, func() bool { return checker.Leaked() >= 1 }, time.Second, 10*time.Millisecond)
	checker.Check(2)

	close(done)
	checker.Check(0)
}
