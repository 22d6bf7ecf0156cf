package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/osse101/WinLedger_Go/internal/testing/leaktest"
	"github.com/osse101/WinLedger_Go/internal/worker"
)

// countingJob signals each run on Done
type countingJob struct {
	runs int32
	Done chan struct{}
}

func (m *countingJob) Process(ctx context.Context) error {
	atomic.AddInt32(&m.runs, 1)
	select {
	case m.Done <- struct{}{}:
	default:
	}
	return nil
}

func TestScheduler(t *testing.T) {
	pool := worker.NewPool(1, 10)
	pool.Start()
	defer pool.Stop()

	sched := New(pool)
	defer sched.Stop()

	job := &countingJob{Done: make(chan struct{}, 10)}
	sched.Schedule("counting", 10*time.Millisecond, job)

	timeout := time.After(time.Second)
	runCount := 0
	for runCount < 2 {
		select {
		case <-job.Done:
			runCount++
		case <-timeout:
			t.Fatal("Timeout waiting for job execution")
		}
	}

	assert.GreaterOrEqual(t, atomic.LoadInt32(&job.runs), int32(2))
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start()
	defer pool.Stop()

	sched := New(pool)
	sched.Schedule("noop", time.Hour, &countingJob{Done: make(chan struct{}, 1)})
	sched.Stop()
	sched.Stop()
}

func TestScheduler_StopReleasesGoroutines(t *testing.T) {
	checker := leaktest.NewGoroutineChecker(t)

	pool := worker.NewPool(2, 4)
	pool.Start()
	sched := New(pool)
	sched.Schedule("a", 5*time.Millisecond, &countingJob{Done: make(chan struct{}, 1)})
	sched.Schedule("b", 5*time.Millisecond, &countingJob{Done: make(chan struct{}, 1)})
	time.Sleep(20 * time.Millisecond)

	sched.Stop()
	pool.Stop()

	checker.Check(0)
}

type fullQueue struct{ attempts int32 }

func (q *fullQueue) TryEnqueue(worker.Job) bool {
	atomic.AddInt32(&q.attempts, 1)
	return false
}

func TestScheduler_FullQueueSkipsTick(t *testing.T) {
	q := &fullQueue{}
	sched := New(q)
	job := &countingJob{Done: make(chan struct{}, 1)}
	sched.Schedule("skipped", 5*time.Millisecond, job)

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&q.attempts) >= 2 }, time.Second, 5*time.Millisecond)
	sched.Stop()

	assert.Zero(t, atomic.LoadInt32(&job.runs))
}
