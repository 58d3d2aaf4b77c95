// Aggregate operator (spec §4.6): hash-based grouping over
// AggregateAttrs.GroupBy, computing each AggregateAttrs.Aggs call per group.
// A nil/empty GroupBy is the scalar-aggregate case — the whole input forms
// one group, emitting exactly one row even over an empty input (COUNT(*)
// of no rows is 0). With a non-empty GroupBy, an empty input emits no rows.
package executor

import (
	"context"
	"math"

	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/plan"
	"github.com/kkkqkx123/graphdb/internal/value"
)

type aggregateOperator struct {
	baseStats
	child     Operator
	groupBy   []string
	aggs      []plan.AggCall
	functions expr.Functions

	out []Row
	pos int
}

func newAggregateOperator(ec *Context, n *plan.Node, child Operator) (*aggregateOperator, error) {
	a, ok := n.Attrs.(plan.AggregateAttrs)
	if !ok {
		return nil, badAttrs(n, "AggregateAttrs")
	}
	return &aggregateOperator{child: child, groupBy: a.GroupBy, aggs: a.Aggs, functions: ec.Functions}, nil
}

// aggState accumulates one AggCall's running value across a group's rows.
type aggState struct {
	call     plan.AggCall
	count    int64
	sum      float64
	sumSq    float64
	min, max value.Value
	haveMM   bool
	bitAnd   int64
	bitOr    int64
	bitXor   int64
	haveBit  bool
	items    []value.Value
	seenSet  map[string]bool
}

func newAggState(call plan.AggCall) *aggState {
	return &aggState{call: call, seenSet: map[string]bool{}}
}

func (s *aggState) add(row Row, fns expr.Functions) error {
	s.count++
	if s.call.Func == "COUNT" && s.call.Arg == nil {
		return nil // COUNT(*): presence alone counts
	}
	if s.call.Arg == nil {
		return nil
	}
	v, err := expr.Eval(s.call.Arg, row, fns)
	if err != nil {
		return err
	}
	if v.IsNull() {
		s.count-- // NULL inputs don't count toward COUNT(expr)/SUM/AVG
		return nil
	}
	switch s.call.Func {
	case "COUNT":
		// non-NULL count already tracked by s.count above
	case "SUM", "AVG", "STD":
		f := asFloat(v)
		s.sum += f
		s.sumSq += f * f
	case "MIN":
		if !s.haveMM || less(v, s.min) {
			s.min = v
			s.haveMM = true
		}
	case "MAX":
		if !s.haveMM || less(s.max, v) {
			s.max = v
			s.haveMM = true
		}
	case "BIT_AND", "BIT_OR", "BIT_XOR":
		i := v.Int()
		if !s.haveBit {
			s.bitAnd, s.bitOr, s.bitXor = i, i, i
			s.haveBit = true
		} else {
			s.bitAnd &= i
			s.bitOr |= i
			s.bitXor ^= i
		}
	case "COLLECT":
		s.items = append(s.items, v)
	case "COLLECT_SET":
		k := valueKey(v)
		if !s.seenSet[k] {
			s.seenSet[k] = true
			s.items = append(s.items, v)
		}
	}
	return nil
}

func (s *aggState) result() value.Value {
	switch s.call.Func {
	case "COUNT":
		return value.Int(s.count)
	case "SUM":
		return value.Float(s.sum)
	case "AVG":
		if s.count == 0 {
			return value.Null()
		}
		return value.Float(s.sum / float64(s.count))
	case "STD":
		if s.count == 0 {
			return value.Null()
		}
		mean := s.sum / float64(s.count)
		variance := s.sumSq/float64(s.count) - mean*mean
		if variance < 0 {
			variance = 0
		}
		return value.Float(math.Sqrt(variance))
	case "MIN":
		if !s.haveMM {
			return value.Null()
		}
		return s.min
	case "MAX":
		if !s.haveMM {
			return value.Null()
		}
		return s.max
	case "BIT_AND":
		if !s.haveBit {
			return value.Null()
		}
		return value.Int(s.bitAnd)
	case "BIT_OR":
		if !s.haveBit {
			return value.Null()
		}
		return value.Int(s.bitOr)
	case "BIT_XOR":
		if !s.haveBit {
			return value.Null()
		}
		return value.Int(s.bitXor)
	case "COLLECT":
		return value.List(s.items)
	case "COLLECT_SET":
		return value.Set(s.items)
	default:
		return value.Null()
	}
}

// less and asFloat mirror expr's arithmetic/ordering coercions for MIN/MAX
// and the numeric aggregates, since expr.Eval has no public comparator hook.
func less(a, b value.Value) bool {
	c, ok := a.Compare(b)
	return ok && c < 0
}

func asFloat(v value.Value) float64 {
	if v.Kind == value.KindInt {
		return float64(v.Int())
	}
	return v.Float()
}

type aggGroup struct {
	keyRow Row // GroupBy columns bound to their group's values
	states []*aggState
}

func (a *aggregateOperator) Open(ctx context.Context) error {
	a.onOpen()
	if err := a.child.Open(ctx); err != nil {
		return err
	}
	rows, err := drain(ctx, a.child)
	if err != nil {
		return err
	}

	order := []string{}
	groups := map[string]*aggGroup{}
	for _, r := range rows {
		key := rowKeyCols(r, a.groupBy)
		g, ok := groups[key]
		if !ok {
			keyRow := make(Row, len(a.groupBy))
			for _, c := range a.groupBy {
				keyRow[c] = r[c]
			}
			states := make([]*aggState, len(a.aggs))
			for i, call := range a.aggs {
				states[i] = newAggState(call)
			}
			g = &aggGroup{keyRow: keyRow, states: states}
			groups[key] = g
			order = append(order, key)
		}
		for _, st := range g.states {
			if err := st.add(r, a.functions); err != nil {
				return err
			}
		}
	}

	if len(groups) == 0 && len(a.groupBy) == 0 && len(a.aggs) > 0 {
		// Scalar aggregate (no GROUP BY) over zero input rows still emits
		// one row, e.g. COUNT(*) over an empty match is 0, not no rows.
		states := make([]*aggState, len(a.aggs))
		for i, call := range a.aggs {
			states[i] = newAggState(call)
		}
		groups[""] = &aggGroup{keyRow: Row{}, states: states}
		order = append(order, "")
	}

	out := make([]Row, 0, len(order))
	for _, key := range order {
		g := groups[key]
		row := make(Row, len(g.keyRow)+len(g.states))
		for c, v := range g.keyRow {
			row[c] = v
		}
		for i, st := range g.states {
			row[st.call.Alias] = st.result()
		}
		out = append(out, row)
	}
	a.out = out
	a.pos = 0
	return nil
}

func (a *aggregateOperator) Next(ctx context.Context) (Row, error) {
	if a.pos >= len(a.out) {
		return nil, nil
	}
	r := a.out[a.pos]
	a.pos++
	a.onRow()
	return r, nil
}

func (a *aggregateOperator) Close() error { a.onClose(); return a.child.Close() }
func (a *aggregateOperator) Stats() Stats { return a.stats() }
