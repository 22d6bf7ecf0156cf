package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/WinLedger_Go/internal/domain"
)

func winsLadder(mode domain.HierarchyMode) *Ladder {
	return NewLadder("g1", mode, []domain.RewardDefinition{
		{RoleID: "r3", Metric: domain.MetricWins, Threshold: 3},
		{RoleID: "r1", Metric: domain.MetricWins, Threshold: 1},
		{RoleID: "r2", Metric: domain.MetricWins, Threshold: 2},
		{RoleID: "p10", Metric: domain.MetricPoints, Threshold: 10},
	})
}

// applyOps simulates the role set of a member after ops
func applyOps(held map[string]bool, ops []domain.RoleOp) map[string]bool {
	out := make(map[string]bool, len(held))
	for k, v := range held {
		out[k] = v
	}
	for _, op := range ops {
		if op.Kind == domain.RoleGrant {
			out[op.RoleID] = true
		} else {
			delete(out, op.RoleID)
		}
	}
	return out
}

func roleIDs(ops []domain.RoleOp, kind domain.RoleOpKind) []string {
	var ids []string
	for _, op := range ops {
		if op.Kind == kind {
			ids = append(ids, op.RoleID)
		}
	}
	return ids
}

func TestNewLadder_SortsTiers(t *testing.T) {
	l := winsLadder(domain.HierarchyKeepAll)

	tiers := l.Tiers(domain.MetricWins)
	require.Len(t, tiers, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{tiers[0].Threshold, tiers[1].Threshold, tiers[2].Threshold})
	assert.Len(t, l.Tiers(domain.MetricPoints), 1)
	assert.False(t, l.Empty())
	assert.True(t, NewLadder("g2", domain.HierarchyKeepAll, nil).Empty())
}

func TestDetectTransitions(t *testing.T) {
	l := winsLadder(domain.HierarchyKeepAll)

	tests := []struct {
		name     string
		from, to int64
		want     []string
		wantType domain.TransitionType
	}{
		{"no change", 2, 2, nil, ""},
		{"single crossing", 0, 1, []string{"r1"}, domain.TransitionAdded},
		{"landing exactly on threshold", 1, 2, []string{"r2"}, domain.TransitionAdded},
		{"multiple crossings", 0, 5, []string{"r1", "r2", "r3"}, domain.TransitionAdded},
		{"removal", 3, 1, []string{"r2", "r3"}, domain.TransitionRemoved},
		{"within tier", 3, 9, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectTransitions(l, domain.MetricWins, tt.from, tt.to)
			var ids []string
			for _, c := range got {
				ids = append(ids, c.RoleID)
				assert.Equal(t, tt.wantType, c.Type)
				assert.Equal(t, domain.MetricWins, c.Metric)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestDetectAll_BasicWinScenario(t *testing.T) {
	l := NewLadder("g1", domain.HierarchyKeepAll, []domain.RewardDefinition{
		{RoleID: "first-win", Metric: domain.MetricWins, Threshold: 1},
		{RoleID: "ten-points", Metric: domain.MetricPoints, Threshold: 10},
	})

	got := DetectAll(l, domain.Counter{}, domain.Counter{Points: 10, Wins: 1})

	require.Len(t, got, 2)
	assert.Equal(t, domain.Transition{Type: domain.TransitionAdded, RoleID: "ten-points", Metric: domain.MetricPoints, Threshold: 10}, got[0])
	assert.Equal(t, domain.Transition{Type: domain.TransitionAdded, RoleID: "first-win", Metric: domain.MetricWins, Threshold: 1}, got[1])
}

func TestNormalize(t *testing.T) {
	added := func(id string) domain.Transition {
		return domain.Transition{Type: domain.TransitionAdded, RoleID: id, Metric: domain.MetricWins}
	}
	removed := func(id string) domain.Transition {
		return domain.Transition{Type: domain.TransitionRemoved, RoleID: id, Metric: domain.MetricWins}
	}

	t.Run("opposites cancel", func(t *testing.T) {
		assert.Empty(t, Normalize([]domain.Transition{added("r1"), removed("r1")}))
	})

	t.Run("repeats collapse", func(t *testing.T) {
		got := Normalize([]domain.Transition{added("r1"), added("r1")})
		assert.Equal(t, []domain.Transition{added("r1")}, got)
	})

	t.Run("order preserved", func(t *testing.T) {
		got := Normalize([]domain.Transition{added("r2"), added("r1"), removed("r2"), removed("r3")})
		assert.Equal(t, []domain.Transition{added("r1"), removed("r3")}, got)
	})
}

func TestCollapse_Promotion(t *testing.T) {
	l := winsLadder(domain.HierarchyKeepHighest)
	changes := DetectTransitions(l, domain.MetricWins, 0, 3)

	ops := Collapse(l, domain.MetricWins, 3, changes)

	assert.Empty(t, roleIDs(ops, domain.RoleGrant), "r3 was just added")
	assert.ElementsMatch(t, []string{"r1", "r2"}, roleIDs(ops, domain.RoleRevoke))
}

func TestCollapse_HierarchyDemotion(t *testing.T) {
	l := winsLadder(domain.HierarchyKeepHighest)
	held := map[string]bool{"r3": true}

	changes := DetectTransitions(l, domain.MetricWins, 3, 2)
	held = applyOps(held, []domain.RoleOp{opForTransition(changes[0])})

	ops := Collapse(l, domain.MetricWins, 2, changes)
	held = applyOps(held, ops)

	assert.Equal(t, map[string]bool{"r2": true}, held)
}

func TestCollapse_Idempotent(t *testing.T) {
	l := winsLadder(domain.HierarchyKeepHighest)
	changes := Normalize(append(
		DetectTransitions(l, domain.MetricWins, 0, 3),
		DetectTransitions(l, domain.MetricWins, 3, 2)...,
	))

	held := map[string]bool{"r1": true, "r2": true}
	once := applyOps(held, Collapse(l, domain.MetricWins, 2, changes))
	twice := applyOps(once, Collapse(l, domain.MetricWins, 2, changes))

	assert.Equal(t, once, twice)
	assert.Equal(t, map[string]bool{"r2": true}, once)
}

func TestCollapse_NothingReached(t *testing.T) {
	l := winsLadder(domain.HierarchyKeepHighest)
	changes := DetectTransitions(l, domain.MetricWins, 1, 0)

	ops := Collapse(l, domain.MetricWins, 0, changes)

	assert.Empty(t, roleIDs(ops, domain.RoleGrant))
	assert.Equal(t, []string{"r1"}, roleIDs(ops, domain.RoleRevoke))
}

func TestCollapse_IgnoresOtherMetrics(t *testing.T) {
	l := winsLadder(domain.HierarchyKeepHighest)
	changes := DetectTransitions(l, domain.MetricPoints, 0, 10)

	assert.Empty(t, Collapse(l, domain.MetricWins, 3, changes))
	assert.Empty(t, Collapse(l, domain.MetricPoints, 10, changes), "single tier was just added")
}

func TestEligibleAndFilterByHierarchy(t *testing.T) {
	l := winsLadder(domain.HierarchyKeepHighest)
	totals := domain.Counter{Points: 12, Wins: 2}

	eligible := Eligible(l, totals)
	var ids []string
	for _, d := range eligible {
		ids = append(ids, d.RoleID)
	}
	assert.Equal(t, []string{"p10", "r1", "r2"}, ids)

	filtered := FilterByHierarchy(eligible)
	require.Len(t, filtered, 2)
	assert.Equal(t, "p10", filtered[0].RoleID)
	assert.Equal(t, "r2", filtered[1].RoleID)
}

func TestNextTiers(t *testing.T) {
	l := winsLadder(domain.HierarchyKeepAll)

	got := NextTiers(l, domain.Counter{Points: 12, Wins: 1})

	assert.Equal(t, []domain.Progress{
		{RoleID: "r2", Metric: domain.MetricWins, Has: 1, Needs: 2},
	}, got)
}

func TestLadder_ValidateAndKnown(t *testing.T) {
	l := winsLadder(domain.HierarchyKeepHighest)
	changes := []domain.Transition{
		{Type: domain.TransitionAdded, RoleID: "r1", Metric: domain.MetricWins, Threshold: 99},
		{Type: domain.TransitionAdded, RoleID: "gone", Metric: domain.MetricWins, Threshold: 5},
	}

	err := l.Validate(changes)
	var inconsistency *domain.HierarchyInconsistencyError
	require.ErrorAs(t, err, &inconsistency)
	assert.Equal(t, "gone", inconsistency.RoleID)

	known, unknown := l.Known(changes)
	require.Len(t, known, 1)
	assert.Equal(t, int64(1), known[0].Threshold, "threshold refreshed from the ladder")
	assert.Len(t, unknown, 1)
}
