// Package scheduler runs periodic maintenance jobs on the worker pool.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/WinLedger_Go/internal/logger"
	"github.com/osse101/WinLedger_Go/internal/worker"
)

const (
	LogMsgJobScheduled = "Scheduled job registered"
	LogMsgJobSkipped   = "Scheduled job skipped, worker queue full"
)

// Enqueuer is the part of worker.Pool the scheduler needs
type Enqueuer interface {
	TryEnqueue(job worker.Job) bool
}

// Scheduler hands jobs to a pool on fixed intervals
type Scheduler struct {
	pool   Enqueuer
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(pool Enqueuer) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{pool: pool, ctx: ctx, cancel: cancel}
}

// Schedule enqueues job every interval until Stop. A tick that finds the
// queue full is dropped.
func (s *Scheduler) Schedule(name string, interval time.Duration, job worker.Job) {
	logger.Info(LogMsgJobScheduled, "job", name, "interval", interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if !s.pool.TryEnqueue(job) {
					logger.Warn(LogMsgJobSkipped, "job", name)
				}
			}
		}
	}()
}

// Stop cancels every schedule and waits for the tickers to exit. Jobs
// already queued are left to the pool.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}
