package worker

import "time"

// Log Messages - Worker Pool
const (
	LogMsgWorkerJobFailed   = "Worker job failed"
	LogMsgWorkerJobPanicked = "Worker job panicked"
	LogMsgQueueFull         = "Worker queue full, job dropped"
	LogMsgPoolStopped       = "Worker pool stopped, job dropped"
)

// Log Messages - Timers
const (
	LogMsgShuttingDown     = "Shutting down"
	LogMsgCancelledPending = "Cancelled pending execution"
	LogMsgShutdownComplete = "Shutdown complete"
	LogMsgShutdownTimedOut = "Shutdown timed out"
)

// Defaults
const (
	DefaultJobTimeout = 30 * time.Second
)

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount      = 2
	TestQueueSize        = 10
	TestExpectedJobCount = 2
)
