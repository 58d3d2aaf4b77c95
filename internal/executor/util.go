package executor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/plan"
	"github.com/kkkqkx123/graphdb/internal/value"
)

// badAttrs reports a plan node whose Attrs payload doesn't match the type
// its Kind requires — an internal planner/executor contract violation.
func badAttrs(n *plan.Node, want string) error {
	return grapherr.New(grapherr.KindInternal, grapherr.CodeInternalError,
		fmt.Sprintf("executor: node %d (%s) expects %s, got %T", n.ID, n.Kind, want, n.Attrs))
}

// rowKey produces a stable string identity for a row, used by Dedup, the
// Set family (Union/Intersect/Minus), and Loop's fixpoint check. Columns
// are sorted so key equality doesn't depend on map iteration order.
func rowKey(r Row) string {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	var sb strings.Builder
	for _, c := range cols {
		sb.WriteString(c)
		sb.WriteByte('=')
		sb.WriteString(valueKey(r[c]))
		sb.WriteByte('|')
	}
	return sb.String()
}

// rowKeyCols is rowKey restricted to a fixed column subset (Dedup's
// DedupAttrs.Columns, when non-empty).
func rowKeyCols(r Row, cols []string) string {
	var sb strings.Builder
	for _, c := range cols {
		sb.WriteString(c)
		sb.WriteByte('=')
		sb.WriteString(valueKey(r[c]))
		sb.WriteByte('|')
	}
	return sb.String()
}

// nullValue is the NULL bound to every column of a join's opposite side when
// no matching row exists (Left/FullOuter join padding).
var nullValue = value.Null()

func valueKey(v value.Value) string {
	if v.IsNull() {
		return "null"
	}
	switch v.Kind {
	case value.KindBool:
		return fmt.Sprintf("b:%v", v.Bool())
	case value.KindInt:
		return fmt.Sprintf("i:%d", v.Int())
	case value.KindFloat:
		return fmt.Sprintf("f:%v", v.Float())
	case value.KindString:
		return "s:" + v.Str()
	default:
		return fmt.Sprintf("%v:%v", v.Kind, v.GraphPayload())
	}
}
