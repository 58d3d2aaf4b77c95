// Optimizer orchestration of spec §4.5: "For at most max_iteration_rounds
// outer passes and max_exploration_rounds inner explorations per group:
// traverse groups bottom-up; for each expression, apply every applicable
// CBO rule, record produced alternatives, recompute costs; terminate when
// no alternative improves total cost." Grounded on spec.md §4.5's loop
// description directly.
package optimizer

import (
	"fmt"

	"github.com/kkkqkx123/graphdb/internal/plan"
)

// Optimizer holds the CBO rule set, cost model, and statistics provider
// used to turn a rewritten logical plan into a costed physical plan.
type Optimizer struct {
	Rules                []CBORule
	Cost                 CostModel
	Stats                StatisticsProvider
	MaxIterationRounds   int
	MaxExplorationRounds int
}

// New builds an Optimizer for the named cost profile with the default CBO
// rule set.
func New(profile Profile, stats StatisticsProvider, maxIterationRounds, maxExplorationRounds int) *Optimizer {
	if maxIterationRounds <= 0 {
		maxIterationRounds = 5
	}
	if maxExplorationRounds <= 0 {
		maxExplorationRounds = 5
	}
	if stats == nil {
		stats = NewInMemoryStatistics()
	}
	return &Optimizer{
		Rules:                DefaultCBORules(),
		Cost:                 ForProfile(profile),
		Stats:                stats,
		MaxIterationRounds:   maxIterationRounds,
		MaxExplorationRounds: maxExplorationRounds,
	}
}

// Optimize runs the group-exploration loop to completion and returns a
// costed physical plan (spec §4.5 "Output: a physical plan with costs").
func (o *Optimizer) Optimize(root *plan.Node, idGen *plan.IDGenerator) (*plan.Node, error) {
	if root == nil {
		return nil, fmt.Errorf("optimizer: nil plan")
	}
	memo, rootID := BuildMemo(root)

	o.computeCosts(memo) // seed costs so the first round's rules see real row/cost estimates
	for outer := 0; outer < o.MaxIterationRounds; outer++ {
		state := NewExplorationState()
		anyChanged := false
		for inner := 0; inner < o.MaxExplorationRounds; inner++ {
			changed := o.exploreRound(memo, state)
			o.computeCosts(memo) // refresh estimates so later rules/rounds see this round's new alternatives
			anyChanged = anyChanged || changed
			if !changed {
				break
			}
		}
		if !anyChanged {
			break
		}
	}

	best := ExtractBest(memo, rootID, idGen)
	return best, nil
}

// exploreRound applies every rule to every not-yet-explored expression in
// every group, in bottom-up group order, and reports whether any new
// alternative was produced.
func (o *Optimizer) exploreRound(m *Memo, state *ExplorationState) bool {
	changed := false
	for _, gid := range m.GroupIDsBottomUp() {
		g := m.Group(gid)
		if g == nil {
			continue
		}
		exprs := append([]*OptGroupNode{}, g.Exprs...) // snapshot: rules append to g.Exprs as they run
		for _, node := range exprs {
			for _, rule := range o.Rules {
				if state.HasApplied(gid, node, rule.Name()) {
					continue
				}
				state.MarkApplied(gid, node, rule.Name())
				alts := rule.Apply(m, g, node)
				if len(alts) == 0 {
					continue
				}
				for _, alt := range alts {
					alt.Rule = rule.Name()
					g.AddExpr(alt)
				}
				changed = true
			}
		}
		state.VisitGroup(gid)
	}
	return changed
}

// computeCosts walks every group bottom-up, estimates rows and cost for
// every alternative expression, and selects the minimum-cost winner per
// group (spec §4.5 "the optimizer selects the minimum-cost expression per
// group bottom-up").
func (o *Optimizer) computeCosts(m *Memo) {
	for _, gid := range m.GroupIDsBottomUp() {
		g := m.Group(gid)
		if g == nil {
			continue
		}
		haveConcrete := false
		for _, node := range g.Exprs {
			if !isLogicalOnlyKind(node.Kind) {
				haveConcrete = true
				break
			}
		}
		var winner *OptGroupNode
		for _, node := range g.Exprs {
			node.Rows = o.estimateRows(m, node)
			node.Cost = o.estimateCost(m, node)
			// A purely logical placeholder (KindScan before index
			// selection runs, KindInnerJoin/CrossJoin before algorithm
			// selection runs) never wins once a concrete physical
			// alternative exists in the same group — it represents "not
			// yet decided", not a real execution strategy.
			if haveConcrete && isLogicalOnlyKind(node.Kind) {
				continue
			}
			if winner == nil || node.Cost < winner.Cost {
				winner = node
			}
		}
		g.Winner = winner
	}
}

// isLogicalOnlyKind reports whether kind is a pre-decision logical
// placeholder the CBO rule set always supersedes with at least one
// concrete physical alternative (index_selection always emits a
// SequentialScan alt for KindScan; join_algorithm_selection always emits
// a NestedLoopJoin alt for every join kind).
func isLogicalOnlyKind(kind plan.Kind) bool {
	switch kind {
	case plan.KindScan, plan.KindInnerJoin, plan.KindCrossJoin, plan.KindLeftJoin, plan.KindFullOuterJoin:
		return true
	default:
		return false
	}
}

func (o *Optimizer) childRows(m *Memo, inputs []GroupID, i int) float64 {
	if i >= len(inputs) {
		return 0
	}
	return bestRows(m.Group(inputs[i]))
}

func (o *Optimizer) childCost(m *Memo, inputs []GroupID, i int) float64 {
	if i >= len(inputs) {
		return 0
	}
	g := m.Group(inputs[i])
	if g == nil || g.Winner == nil {
		return 0
	}
	return g.Winner.Cost
}

func (o *Optimizer) sumChildCost(m *Memo, inputs []GroupID) float64 {
	total := 0.0
	for i := range inputs {
		total += o.childCost(m, inputs, i)
	}
	return total
}
