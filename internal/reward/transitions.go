package reward

import (
	"fmt"

	"github.com/osse101/WinLedger_Go/internal/domain"
)

// DetectTransitions returns every reward of metric m crossed by a move from
// `from` to `to`. Added when from < threshold <= to, Removed when
// to < threshold <= from. Results are in ascending threshold order.
func DetectTransitions(l *Ladder, m domain.Metric, from, to int64) []domain.Transition {
	if from == to {
		return nil
	}
	var out []domain.Transition
	for _, d := range l.Tiers(m) {
		switch {
		case from < d.Threshold && d.Threshold <= to:
			out = append(out, transition(domain.TransitionAdded, d))
		case to < d.Threshold && d.Threshold <= from:
			out = append(out, transition(domain.TransitionRemoved, d))
		}
	}
	return out
}

// DetectAll runs DetectTransitions for every metric
func DetectAll(l *Ladder, before, after domain.Counter) []domain.Transition {
	var out []domain.Transition
	for _, m := range domain.Metrics {
		out = append(out, DetectTransitions(l, m, before.Get(m), after.Get(m))...)
	}
	return out
}

func transition(t domain.TransitionType, d domain.RewardDefinition) domain.Transition {
	return domain.Transition{Type: t, RoleID: d.RoleID, Metric: d.Metric, Threshold: d.Threshold}
}

// Normalize merges a sequence of transitions into their net effect per role.
// An Added and a Removed of the same role cancel out; repeats of the same
// direction collapse into one. First-seen order is preserved.
func Normalize(changes []domain.Transition) []domain.Transition {
	net := make(map[string]int, len(changes))
	last := make(map[string]domain.Transition, len(changes))
	order := make([]string, 0, len(changes))
	for _, c := range changes {
		if _, seen := last[c.RoleID]; !seen {
			order = append(order, c.RoleID)
		}
		last[c.RoleID] = c
		if c.Type == domain.TransitionAdded {
			net[c.RoleID]++
		} else {
			net[c.RoleID]--
		}
	}

	out := make([]domain.Transition, 0, len(order))
	for _, id := range order {
		c := last[id]
		switch n := net[id]; {
		case n > 0:
			c.Type = domain.TransitionAdded
		case n < 0:
			c.Type = domain.TransitionRemoved
		default:
			continue
		}
		out = append(out, c)
	}
	return out
}

// Collapse computes the role operations that leave a member with only the
// highest reached tier of metric m within the range touched by changes.
//
// The range runs from the tier just below the lowest changed tier up to the
// highest changed tier. The highest tier in range with threshold <= total is
// kept and granted unless it was just Added; every other tier in range is
// revoked. Collapse is pure and applying its result twice changes nothing.
func Collapse(l *Ladder, m domain.Metric, total int64, changes []domain.Transition) []domain.RoleOp {
	tiers := l.Tiers(m)
	if len(tiers) == 0 {
		return nil
	}

	added := make(map[string]bool)
	lo, hi := -1, -1
	for _, c := range changes {
		if c.Metric != m {
			continue
		}
		idx := tierIndex(tiers, c.RoleID)
		if idx < 0 {
			continue
		}
		if c.Type == domain.TransitionAdded {
			added[c.RoleID] = true
		}
		if lo < 0 || idx < lo {
			lo = idx
		}
		if idx > hi {
			hi = idx
		}
	}
	if lo < 0 {
		return nil
	}
	if lo > 0 {
		lo--
	}

	keep := -1
	for i := hi; i >= lo; i-- {
		if tiers[i].Threshold <= total {
			keep = i
			break
		}
	}

	var ops []domain.RoleOp
	for i := lo; i <= hi; i++ {
		d := tiers[i]
		if i == keep {
			if !added[d.RoleID] {
				ops = append(ops, domain.RoleOp{
					Kind:   domain.RoleGrant,
					RoleID: d.RoleID,
					Reason: fmt.Sprintf(ReasonHierarchyKeep, m),
				})
			}
			continue
		}
		ops = append(ops, domain.RoleOp{
			Kind:   domain.RoleRevoke,
			RoleID: d.RoleID,
			Reason: fmt.Sprintf(ReasonHierarchyDrop, m),
		})
	}
	return ops
}

func tierIndex(tiers []domain.RewardDefinition, roleID string) int {
	for i, d := range tiers {
		if d.RoleID == roleID {
			return i
		}
	}
	return -1
}

// Eligible returns every definition of the ladder reached by totals
func Eligible(l *Ladder, totals domain.Counter) []domain.RewardDefinition {
	var out []domain.RewardDefinition
	for _, m := range domain.Metrics {
		for _, d := range l.Tiers(m) {
			if d.Threshold > totals.Get(m) {
				break
			}
			out = append(out, d)
		}
	}
	return out
}

// FilterByHierarchy keeps only the highest-threshold definition per metric
func FilterByHierarchy(defs []domain.RewardDefinition) []domain.RewardDefinition {
	best := make(map[domain.Metric]domain.RewardDefinition)
	for _, d := range defs {
		if cur, ok := best[d.Metric]; !ok || d.Threshold > cur.Threshold {
			best[d.Metric] = d
		}
	}
	out := make([]domain.RewardDefinition, 0, len(best))
	for _, m := range domain.Metrics {
		if d, ok := best[m]; ok {
			out = append(out, d)
		}
	}
	return out
}

// NextTiers returns, per metric, the lowest reward not yet reached by totals
func NextTiers(l *Ladder, totals domain.Counter) []domain.Progress {
	var out []domain.Progress
	for _, m := range domain.Metrics {
		have := totals.Get(m)
		for _, d := range l.Tiers(m) {
			if d.Threshold > have {
				out = append(out, domain.Progress{RoleID: d.RoleID, Metric: m, Has: have, Needs: d.Threshold})
				break
			}
		}
	}
	return out
}
