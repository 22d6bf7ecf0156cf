package worker

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/WinLedger_Go/internal/logger"
)

type timerEntry struct {
	timer *time.Timer
	gen   uint64
}

// BaseWorker provides a keyed registry of pending timers for background workers.
// Re-arming a key replaces its timer, so only the last schedule fires.
type BaseWorker struct {
	mu     sync.Mutex
	timers map[string]timerEntry
	gen    uint64
	closed bool
	wg     sync.WaitGroup
}

func (w *BaseWorker) init() {
	if w.timers == nil {
		w.timers = make(map[string]timerEntry)
	}
}

// ScheduleFunc arms fn to run after delay under key, replacing any timer already
// pending for that key. Returns false after shutdown.
func (w *BaseWorker) ScheduleFunc(key string, delay time.Duration, fn func()) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.init()

	if w.closed {
		return false
	}
	if old, ok := w.timers[key]; ok {
		old.timer.Stop()
	}

	w.gen++
	gen := w.gen
	t := time.AfterFunc(delay, func() {
		w.mu.Lock()
		e, ok := w.timers[key]
		if !ok || e.gen != gen || w.closed {
			w.mu.Unlock()
			return
		}
		delete(w.timers, key)
		w.wg.Add(1)
		w.mu.Unlock()

		defer w.wg.Done()
		fn()
	})
	w.timers[key] = timerEntry{timer: t, gen: gen}
	return true
}

// StopTimer cancels the pending timer of key. Returns false if none was pending.
func (w *BaseWorker) StopTimer(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.timers[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(w.timers, key)
	return true
}

// PendingTimers returns the number of armed timers
func (w *BaseWorker) PendingTimers() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.timers)
}

// ShutdownTimers cancels every pending timer, waits for in-flight executions
// and returns the keys whose timers were cancelled so the caller can flush them.
func (w *BaseWorker) ShutdownTimers(ctx context.Context, workerName string) ([]string, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgShuttingDown, "worker", workerName)

	w.mu.Lock()
	w.closed = true
	cancelled := make([]string, 0, len(w.timers))
	for key, e := range w.timers {
		e.timer.Stop()
		cancelled = append(cancelled, key)
		log.Debug(LogMsgCancelledPending, "worker", workerName, "key", key)
	}
	w.timers = make(map[string]timerEntry)
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info(LogMsgShutdownComplete, "worker", workerName)
		return cancelled, nil
	case <-ctx.Done():
		log.Warn(LogMsgShutdownTimedOut, "worker", workerName)
		return cancelled, ctx.Err()
	}
}
