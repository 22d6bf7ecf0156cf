package reward

import (
	"context"
	"errors"
	"sync"

	"github.com/osse101/WinLedger_Go/internal/concurrency"
	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/event"
	"github.com/osse101/WinLedger_Go/internal/logger"
	"github.com/osse101/WinLedger_Go/internal/metrics"
	"github.com/osse101/WinLedger_Go/internal/worker"
)

var errNoApplier = errors.New("no role applier configured")

// queuedOp is a role operation waiting for its member's drain job
type queuedOp struct {
	op        domain.RoleOp
	requestID string
}

// roleQueues holds pending role operations per (guild, member). A key is
// present while a drain job owns it, so at most one job per member runs and
// operations apply in arrival order even on a multi-worker pool.
type roleQueues struct {
	mu      sync.Mutex
	pending map[string][]queuedOp
}

func newRoleQueues() *roleQueues {
	return &roleQueues{pending: make(map[string][]queuedOp)}
}

// push appends ops for key and reports whether the caller must start a drain job
func (q *roleQueues) push(key string, ops []queuedOp) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	queued, active := q.pending[key]
	q.pending[key] = append(queued, ops...)
	return !active
}

// pop takes the next op for key, releasing the key once it is empty
func (q *roleQueues) pop(key string) (queuedOp, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	queued := q.pending[key]
	if len(queued) == 0 {
		delete(q.pending, key)
		return queuedOp{}, false
	}
	next := queued[0]
	q.pending[key] = queued[1:]
	return next, true
}

// roleJob drains the pending role operations of one member
type roleJob struct {
	engine   *Engine
	key      string
	guildID  string
	memberID string
}

var _ worker.Job = (*roleJob)(nil)

func (j *roleJob) Process(ctx context.Context) error {
	for {
		next, ok := j.engine.roles.pop(j.key)
		if !ok {
			return nil
		}
		opCtx := ctx
		if next.requestID != "" {
			opCtx = logger.WithRequestID(ctx, next.requestID)
		}
		j.engine.apply(opCtx, j.guildID, j.memberID, next.op)
	}
}

// dispatch hands ops to the worker pool, applying inline when no pool is
// configured or the queue is saturated
func (e *Engine) dispatch(ctx context.Context, guildID, memberID string, ops []domain.RoleOp) {
	if len(ops) == 0 {
		return
	}
	if e.pool == nil {
		for _, op := range ops {
			e.apply(ctx, guildID, memberID, op)
		}
		return
	}

	requestID, _ := logger.RequestIDFromContext(ctx)
	queued := make([]queuedOp, len(ops))
	for i, op := range ops {
		queued[i] = queuedOp{op: op, requestID: requestID}
	}
	key := concurrency.Key(guildID, memberID)
	if !e.roles.push(key, queued) {
		return
	}
	job := &roleJob{engine: e, key: key, guildID: guildID, memberID: memberID}
	if !e.pool.TryEnqueue(job) {
		logger.FromContext(ctx).Warn(LogMsgRoleJobDropped, "guild_id", guildID, "member_id", memberID)
		_ = job.Process(ctx)
	}
}

// apply performs a single role operation. Failures are soft: they are logged,
// counted and published, never returned. Reports whether the change succeeded.
func (e *Engine) apply(ctx context.Context, guildID, memberID string, op domain.RoleOp) bool {
	log := logger.FromContext(ctx)

	var err error
	switch {
	case e.applier == nil:
		err = errNoApplier
	case op.Kind == domain.RoleGrant:
		err = e.applier.GrantRole(ctx, guildID, memberID, op.RoleID, op.Reason)
	default:
		err = e.applier.RevokeRole(ctx, guildID, memberID, op.RoleID, op.Reason)
	}

	if err == nil {
		metrics.RoleOperations.WithLabelValues(string(op.Kind), metrics.OutcomeSuccess).Inc()
		log.Debug(LogMsgRoleApplied, "guild_id", guildID, "member_id", memberID,
			"role_id", op.RoleID, "kind", op.Kind)
		return true
	}
	metrics.RoleOperations.WithLabelValues(string(op.Kind), metrics.OutcomeFailure).Inc()
	if errors.Is(err, errNoApplier) {
		log.Debug(LogMsgNoRoleApplier, "guild_id", guildID, "role_id", op.RoleID, "kind", op.Kind)
		return false
	}

	action := domain.TransitionAdded
	if op.Kind == domain.RoleRevoke {
		action = domain.TransitionRemoved
	}
	roleErr := &domain.RoleApplicationError{
		GuildID:  guildID,
		MemberID: memberID,
		RoleID:   op.RoleID,
		Action:   action,
		Err:      err,
	}
	log.Warn(LogMsgRoleApplicationFailed, "error", roleErr)
	if pubErr := e.publisher.Publish(ctx, event.NewRoleApplicationFailedEvent(roleErr)); pubErr != nil {
		log.Warn(LogMsgPublishFailed, "error", pubErr)
	}
	return false
}
