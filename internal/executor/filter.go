// Filter and Project (spec §4.6): row-at-a-time predicate admission and
// column re-computation, both driven by internal/expr's evaluator.
package executor

import (
	"context"

	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/plan"
)

type filterOperator struct {
	baseStats
	child     Operator
	predicate *expr.Expr
	functions expr.Functions
}

func newFilterOperator(ec *Context, n *plan.Node, child Operator) (*filterOperator, error) {
	a, ok := n.Attrs.(plan.FilterAttrs)
	if !ok {
		return nil, badAttrs(n, "FilterAttrs")
	}
	return &filterOperator{child: child, predicate: a.Predicate, functions: ec.Functions}, nil
}

func (f *filterOperator) Open(ctx context.Context) error {
	f.onOpen()
	return f.child.Open(ctx)
}

func (f *filterOperator) Next(ctx context.Context) (Row, error) {
	for {
		r, err := f.child.Next(ctx)
		if err != nil || r == nil {
			return r, err
		}
		v, err := expr.Eval(f.predicate, r, f.functions)
		if err != nil {
			return nil, err
		}
		if expr.Truthy(v) {
			f.onRow()
			return r, nil
		}
	}
}

func (f *filterOperator) Close() error { f.onClose(); return f.child.Close() }
func (f *filterOperator) Stats() Stats { return f.stats() }

type projectOperator struct {
	baseStats
	child     Operator
	items     []plan.ProjectItem
	functions expr.Functions
}

func newProjectOperator(ec *Context, n *plan.Node, child Operator) (*projectOperator, error) {
	a, ok := n.Attrs.(plan.ProjectAttrs)
	if !ok {
		return nil, badAttrs(n, "ProjectAttrs")
	}
	return &projectOperator{child: child, items: a.Items, functions: ec.Functions}, nil
}

func (p *projectOperator) Open(ctx context.Context) error {
	p.onOpen()
	return p.child.Open(ctx)
}

func (p *projectOperator) Next(ctx context.Context) (Row, error) {
	r, err := p.child.Next(ctx)
	if err != nil || r == nil {
		return r, err
	}
	out := make(Row, len(p.items))
	for _, item := range p.items {
		v, err := expr.Eval(item.Expr, r, p.functions)
		if err != nil {
			return nil, err
		}
		out[item.Alias] = v
	}
	p.onRow()
	return out, nil
}

func (p *projectOperator) Close() error { p.onClose(); return p.child.Close() }
func (p *projectOperator) Stats() Stats { return p.stats() }
