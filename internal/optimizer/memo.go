// Group model of spec §4.5: "Each logically-equivalent subplan is a
// Group; a Group holds several alternative expressions (OptGroupNodes).
// Rules transform group expressions into new expressions in the same
// group; the optimizer selects the minimum-cost expression per group
// bottom-up." Grounded on spec.md §4.5's text directly (no teacher
// Cascades-style memo exists in the pack); internal/plan's tagged-variant
// Node shape is reused for OptGroupNode's Attrs payload so the same
// per-kind structs (ScanAttrs, FilterAttrs, ...) serve both the logical
// plan and the optimizer's group expressions.
package optimizer

import "github.com/kkkqkx123/graphdb/internal/plan"

// GroupID identifies one equivalence class of alternative plans.
type GroupID int64

// OptGroupNode is one alternative expression within a Group: a plan.Kind
// plus Attrs (reusing internal/plan's per-kind Attrs structs), pointers to
// child Groups rather than child Nodes (since each child is itself an
// equivalence class), and the cost/row estimates the optimizer fills in.
type OptGroupNode struct {
	Kind       plan.Kind
	Attrs      any
	Inputs     []GroupID
	OutputCols []string
	Properties plan.NodeProperties
	Cost       float64
	Rows       float64
	Rule       string // name of the rule that produced this alternative, "" for the original
}

// Group holds every alternative expression discovered for one logically
// equivalent subplan, plus the current minimum-cost winner.
type Group struct {
	ID         GroupID
	OutputCols []string
	Exprs      []*OptGroupNode
	Winner     *OptGroupNode
}

// Memo is the optimizer's working set of groups, indexed by GroupID in
// creation order (so iterating ids ascending is always a valid bottom-up
// traversal of the group DAG built by BuildMemo).
type Memo struct {
	groups map[GroupID]*Group
	order  []GroupID
	next   GroupID
}

func NewMemo() *Memo {
	return &Memo{groups: make(map[GroupID]*Group)}
}

func (m *Memo) newGroup(outputCols []string) *Group {
	m.next++
	g := &Group{ID: m.next, OutputCols: outputCols}
	m.groups[g.ID] = g
	m.order = append(m.order, g.ID)
	return g
}

func (m *Memo) Group(id GroupID) *Group {
	return m.groups[id]
}

// GroupIDsBottomUp returns every group id in the order groups were first
// created, which for a memo built exclusively by BuildMemo is always a
// valid bottom-up (children-before-parents) order.
func (m *Memo) GroupIDsBottomUp() []GroupID {
	return m.order
}

// AddExpr appends a new alternative to g, recording which rule produced
// it ("" for the seed expression built by BuildMemo).
func (g *Group) AddExpr(n *OptGroupNode) {
	g.Exprs = append(g.Exprs, n)
}

// BuildMemo converts a rewritten logical plan tree into an initial memo:
// one Group per node, each holding a single seed OptGroupNode, children
// referenced by GroupID. Returns the memo and the root group's id.
func BuildMemo(root *plan.Node) (*Memo, GroupID) {
	m := NewMemo()
	rootID := buildGroup(m, root)
	return m, rootID
}

func buildGroup(m *Memo, n *plan.Node) GroupID {
	if n == nil {
		g := m.newGroup(nil)
		g.AddExpr(&OptGroupNode{Kind: plan.KindStart})
		return g.ID
	}
	childIDs := make([]GroupID, len(n.Children))
	for i, c := range n.Children {
		childIDs[i] = buildGroup(m, c)
	}
	g := m.newGroup(n.OutputCols)
	g.AddExpr(&OptGroupNode{
		Kind:       n.Kind,
		Attrs:      n.Attrs,
		Inputs:     childIDs,
		OutputCols: n.OutputCols,
		Properties: n.Properties,
	})
	return g.ID
}

// ExtractBest rebuilds a physical plan.Node tree from the memo's current
// winners, assigning fresh node ids from idGen and carrying the winner's
// estimated Cost onto the output Node (spec §4.5 "Output: a physical plan
// with costs"). Falls back to a group's first expression if no winner has
// been computed yet (e.g. ExtractBest called before any cost pass).
func ExtractBest(m *Memo, id GroupID, idGen *plan.IDGenerator) *plan.Node {
	g := m.Group(id)
	if g == nil || len(g.Exprs) == 0 {
		return nil
	}
	best := g.Winner
	if best == nil {
		best = g.Exprs[0]
	}
	children := make([]*plan.Node, len(best.Inputs))
	for i, cid := range best.Inputs {
		children[i] = ExtractBest(m, cid, idGen)
	}
	return &plan.Node{
		ID:         idGen.Next(),
		Kind:       best.Kind,
		Children:   children,
		OutputCols: best.OutputCols,
		Cost:       best.Cost,
		Properties: best.Properties,
		Attrs:      best.Attrs,
	}
}

// ExplorationState tracks, per spec §4.5, "visited groups/nodes per round
// and the list of rules already applied" — per-expression, not merely
// per-group, so a rule can still fire against a new alternative another
// rule produced in an earlier round within the same outer iteration.
type ExplorationState struct {
	visitedGroups map[GroupID]bool
	applied       map[GroupID]map[*OptGroupNode]map[string]bool
}

func NewExplorationState() *ExplorationState {
	return &ExplorationState{
		visitedGroups: make(map[GroupID]bool),
		applied:       make(map[GroupID]map[*OptGroupNode]map[string]bool),
	}
}

func (s *ExplorationState) VisitGroup(id GroupID) {
	s.visitedGroups[id] = true
}

func (s *ExplorationState) Visited(id GroupID) bool {
	return s.visitedGroups[id]
}

func (s *ExplorationState) HasApplied(id GroupID, node *OptGroupNode, rule string) bool {
	byNode, ok := s.applied[id]
	if !ok {
		return false
	}
	rules, ok := byNode[node]
	if !ok {
		return false
	}
	return rules[rule]
}

func (s *ExplorationState) MarkApplied(id GroupID, node *OptGroupNode, rule string) {
	byNode, ok := s.applied[id]
	if !ok {
		byNode = make(map[*OptGroupNode]map[string]bool)
		s.applied[id] = byNode
	}
	rules, ok := byNode[node]
	if !ok {
		rules = make(map[string]bool)
		byNode[node] = rules
	}
	rules[rule] = true
}
