// Unwind (spec §4.6): expands a list-valued expression into one row per
// element, binding each element to Alias and otherwise passing the input
// row's columns through unchanged. A non-list Source value (including
// NULL) unwinds to zero rows, matching Cypher UNWIND semantics.
package executor

import (
	"context"

	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/plan"
	"github.com/kkkqkx123/graphdb/internal/value"
)

type unwindOperator struct {
	baseStats
	child     Operator
	source    *expr.Expr
	alias     string
	functions expr.Functions
	out       []Row
	pos       int
}

func newUnwindOperator(ec *Context, n *plan.Node, child Operator) (*unwindOperator, error) {
	a, ok := n.Attrs.(plan.UnwindAttrs)
	if !ok {
		return nil, badAttrs(n, "UnwindAttrs")
	}
	return &unwindOperator{child: child, source: a.Source, alias: a.Alias, functions: ec.Functions}, nil
}

func (u *unwindOperator) Open(ctx context.Context) error {
	u.onOpen()
	if err := u.child.Open(ctx); err != nil {
		return err
	}
	rows, err := drain(ctx, u.child)
	if err != nil {
		return err
	}
	var out []Row
	for _, r := range rows {
		v, err := expr.Eval(u.source, r, u.functions)
		if err != nil {
			return err
		}
		if v.Kind != value.KindList {
			continue
		}
		for _, item := range v.List() {
			newRow := make(Row, len(r)+1)
			for k, val := range r {
				newRow[k] = val
			}
			newRow[u.alias] = item
			out = append(out, newRow)
		}
	}
	u.out = out
	u.pos = 0
	return nil
}

func (u *unwindOperator) Next(ctx context.Context) (Row, error) {
	if u.pos >= len(u.out) {
		return nil, nil
	}
	r := u.out[u.pos]
	u.pos++
	u.onRow()
	return r, nil
}

func (u *unwindOperator) Close() error { u.onClose(); return u.child.Close() }
func (u *unwindOperator) Stats() Stats { return u.stats() }
