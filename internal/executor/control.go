// Control family (spec §4.6): Start, Argument, Loop, PassThrough, Select —
// the plumbing operators that seed a plan tree, thread correlated
// sub-query context, and iterate a sub-plan to a fixpoint.
package executor

import (
	"context"

	"github.com/kkkqkx123/graphdb/internal/plan"
	"github.com/kkkqkx123/graphdb/internal/value"
)

// startOperator yields exactly one empty row then EOF — the seed for any
// plan branch with no FROM clause (e.g. `RETURN 1`).
type startOperator struct {
	baseStats
	done bool
}

func newStartOperator() *startOperator { return &startOperator{} }

func (s *startOperator) Open(ctx context.Context) error { s.onOpen(); s.done = false; return nil }

func (s *startOperator) Next(ctx context.Context) (Row, error) {
	if s.done {
		return nil, nil
	}
	s.done = true
	s.onRow()
	return Row{}, nil
}

func (s *startOperator) Close() error { s.onClose(); return nil }
func (s *startOperator) Stats() Stats { return s.stats() }

// argumentOperator seeds a correlated sub-plan branch (the right-hand side
// of PatternApply/RollUpApply) with one row binding the node's output
// columns to NULL — the outer row's actual values are supplied by the
// apply operator rebinding this seed per outer row, rather than by
// argumentOperator itself, which only needs to exist as a distinguishable
// leaf in the branch.
type argumentOperator struct {
	baseStats
	cols []string
	done bool
}

func newArgumentOperator(n *plan.Node) *argumentOperator {
	return &argumentOperator{cols: n.OutputCols}
}

func (a *argumentOperator) Open(ctx context.Context) error { a.onOpen(); a.done = false; return nil }

func (a *argumentOperator) Next(ctx context.Context) (Row, error) {
	if a.done {
		return nil, nil
	}
	a.done = true
	row := make(Row, len(a.cols))
	for _, c := range a.cols {
		row[c] = value.Null()
	}
	a.onRow()
	return row, nil
}

func (a *argumentOperator) Close() error { a.onClose(); return nil }
func (a *argumentOperator) Stats() Stats { return a.stats() }

// passThroughOperator forwards its child's rows unchanged — used where the
// planner needs a stable node identity (e.g. a branch point) without any
// row transformation.
type passThroughOperator struct {
	baseStats
	child Operator
}

func newPassThroughOperator(child Operator) *passThroughOperator {
	return &passThroughOperator{child: child}
}

func (p *passThroughOperator) Open(ctx context.Context) error {
	p.onOpen()
	return p.child.Open(ctx)
}

func (p *passThroughOperator) Next(ctx context.Context) (Row, error) {
	r, err := p.child.Next(ctx)
	if err != nil || r == nil {
		return r, err
	}
	p.onRow()
	return r, nil
}

func (p *passThroughOperator) Close() error { p.onClose(); return p.child.Close() }
func (p *passThroughOperator) Stats() Stats { return p.stats() }

// selectOperator forwards its child's rows unchanged, optionally applying a
// projection of the node's OutputCols when the child produces a superset of
// columns — the "choose/narrow to these columns" shape spec §4.6 names
// Select for, without introducing a bespoke Attrs type since narrowing is
// expressible purely from OutputCols.
type selectOperator struct {
	baseStats
	child Operator
	cols  []string
}

func newSelectOperator(ec *Context, n *plan.Node, child Operator) (*selectOperator, error) {
	return &selectOperator{child: child, cols: n.OutputCols}, nil
}

func (s *selectOperator) Open(ctx context.Context) error {
	s.onOpen()
	return s.child.Open(ctx)
}

func (s *selectOperator) Next(ctx context.Context) (Row, error) {
	r, err := s.child.Next(ctx)
	if err != nil || r == nil {
		return r, err
	}
	if len(s.cols) == 0 {
		s.onRow()
		return r, nil
	}
	out := make(Row, len(s.cols))
	for _, c := range s.cols {
		out[c] = r[c]
	}
	s.onRow()
	return out, nil
}

func (s *selectOperator) Close() error { s.onClose(); return s.child.Close() }
func (s *selectOperator) Stats() Stats { return s.stats() }

// loopOperator re-opens and fully drains its child repeatedly, accumulating
// distinct rows (by their string representation) until a pass adds nothing
// new — a fixpoint iteration (spec §4.6 "Loop (sub-plan executed to a
// fixpoint)"), bounded by maxLoopIterations as a safety cap against a
// non-terminating sub-plan.
type loopOperator struct {
	baseStats
	child  Operator
	out    []Row
	cursor int
}

const maxLoopIterations = 10000

func newLoopOperator(ec *Context, n *plan.Node, child Operator) (*loopOperator, error) {
	return &loopOperator{child: child}, nil
}

func (l *loopOperator) Open(ctx context.Context) error {
	l.onOpen()
	seen := map[string]bool{}
	var acc []Row

	for iter := 0; iter < maxLoopIterations; iter++ {
		l.onLoop()
		if err := l.child.Open(ctx); err != nil {
			return err
		}
		added := false
		for {
			r, err := l.child.Next(ctx)
			if err != nil {
				l.child.Close()
				return err
			}
			if r == nil {
				break
			}
			key := rowKey(r)
			if !seen[key] {
				seen[key] = true
				acc = append(acc, r)
				added = true
			}
		}
		if err := l.child.Close(); err != nil {
			return err
		}
		if !added {
			break
		}
	}
	l.out = acc
	l.cursor = 0
	return nil
}

func (l *loopOperator) Next(ctx context.Context) (Row, error) {
	if l.cursor >= len(l.out) {
		return nil, nil
	}
	r := l.out[l.cursor]
	l.cursor++
	l.onRow()
	return r, nil
}

func (l *loopOperator) Close() error { l.onClose(); return nil }
func (l *loopOperator) Stats() Stats { return l.stats() }
