package reward

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/WinLedger_Go/internal/concurrency"
	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/logger"
	"github.com/osse101/WinLedger_Go/internal/metrics"
	"github.com/osse101/WinLedger_Go/internal/worker"
)

// CollapseFunc runs one hierarchy collapse for a member with the merged
// transitions accumulated since the last run
type CollapseFunc func(ctx context.Context, guildID, memberID string, changes []domain.Transition)

type pendingCollapse struct {
	guildID  string
	memberID string
	changes  []domain.Transition
}

// Debouncer coalesces collapse requests per (guild, member). Every trigger
// merges its transitions into the pending set and restarts the delay, so a
// burst of mutations produces one collapse pass.
type Debouncer struct {
	timers worker.BaseWorker
	delay  time.Duration
	fire   CollapseFunc

	mu      sync.Mutex
	pending map[string]*pendingCollapse
}

// NewDebouncer creates a debouncer running fire after delay of quiet time
func NewDebouncer(delay time.Duration, fire CollapseFunc) *Debouncer {
	if delay <= 0 {
		delay = DefaultCollapseDelay
	}
	return &Debouncer{
		delay:   delay,
		fire:    fire,
		pending: make(map[string]*pendingCollapse),
	}
}

// Trigger records changes for the member and (re)arms its timer.
// After shutdown the collapse runs synchronously and Trigger returns false.
func (d *Debouncer) Trigger(ctx context.Context, guildID, memberID string, changes []domain.Transition) bool {
	key := concurrency.Key(guildID, memberID)

	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok {
		p = &pendingCollapse{guildID: guildID, memberID: memberID}
		d.pending[key] = p
	}
	p.changes = Normalize(append(p.changes, changes...))
	if len(p.changes) == 0 {
		delete(d.pending, key)
		d.timers.StopTimer(key)
		d.updateGauge()
		d.mu.Unlock()
		return true
	}
	d.updateGauge()
	d.mu.Unlock()

	scheduled := d.timers.ScheduleFunc(key, d.delay, func() {
		d.flush(context.Background(), key)
	})
	if !scheduled {
		// shut down: run now rather than lose the changes
		d.flush(ctx, key)
		return false
	}
	logger.FromContext(ctx).Debug(LogMsgCollapseScheduled,
		"guild_id", guildID, "member_id", memberID, "delay", d.delay)
	return true
}

// Pending returns the number of members awaiting a collapse
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Debouncer) take(key string) *pendingCollapse {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := d.pending[key]
	delete(d.pending, key)
	d.updateGauge()
	return p
}

// updateGauge publishes the pending count. d.mu must be held.
func (d *Debouncer) updateGauge() {
	metrics.CollapsesPending.Set(float64(len(d.pending)))
}

func (d *Debouncer) flush(ctx context.Context, key string) {
	p := d.take(key)
	if p == nil {
		return
	}
	d.fire(ctx, p.guildID, p.memberID, p.changes)
}

// Shutdown cancels pending timers and runs their collapses immediately so no
// accumulated change is lost
func (d *Debouncer) Shutdown(ctx context.Context) error {
	keys, err := d.timers.ShutdownTimers(ctx, DebouncerWorkerName)
	if len(keys) > 0 {
		logger.FromContext(ctx).Info(LogMsgFlushingCollapses, "count", len(keys))
	}
	for _, key := range keys {
		d.flush(ctx, key)
	}
	return err
}
