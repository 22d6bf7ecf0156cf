package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/event"
)

func TestEventMetricsCollector_RecordsLedgerAndRewardEvents(t *testing.T) {
	bus := event.NewMemoryBus()
	require.NoError(t, NewEventMetricsCollector().Register(bus))

	awardedBefore := testutil.ToFloat64(PointsAwarded)
	removedBefore := testutil.ToFloat64(PointsRemoved)
	addedBefore := testutil.ToFloat64(RewardTransitions.WithLabelValues(string(domain.TransitionAdded), string(domain.MetricWins)))

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, event.NewLedgerMutatedEvent("g", "m", "register_win",
		domain.Delta{Points: 7, Wins: 1}, domain.Counter{}, domain.Counter{Points: 7, Wins: 1})))
	require.NoError(t, bus.Publish(ctx, event.NewLedgerMutatedEvent("g", "m", "modify_points",
		domain.Delta{Points: -3}, domain.Counter{Points: 7}, domain.Counter{Points: 4})))
	require.NoError(t, bus.Publish(ctx, event.NewRewardTransitionEvent("g", "m",
		domain.Transition{Type: domain.TransitionAdded, RoleID: "r", Metric: domain.MetricWins, Threshold: 1})))

	assert.Equal(t, awardedBefore+7, testutil.ToFloat64(PointsAwarded))
	assert.Equal(t, removedBefore+3, testutil.ToFloat64(PointsRemoved))
	assert.Equal(t, addedBefore+1, testutil.ToFloat64(RewardTransitions.WithLabelValues(string(domain.TransitionAdded), string(domain.MetricWins))))
}

func TestEventMetricsCollector_IgnoresUndecodablePayload(t *testing.T) {
	c := NewEventMetricsCollector()
	err := c.HandleEvent(context.Background(), event.Event{Type: event.LedgerMutated, Payload: "garbage"})
	assert.NoError(t, err)
}
