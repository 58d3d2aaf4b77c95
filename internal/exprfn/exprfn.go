// Package exprfn implements the scalar function table expr.Eval dispatches
// KindCall nodes through (internal/expr's doc comment: "FuncName, Args" is
// looked up in the caller-supplied expr.Functions map). Grounded on the
// scalar function catalog straga-Mimir_lite's Cypher layer exposes
// (pkg/cypher/call.go's SHOW FUNCTIONS listing: coalesce, toString,
// toInteger, labels, keys, size, ...) but reimplemented from scratch
// against this module's value.Value rather than ported from the teacher's
// string/regex evaluator, since expr.Functions operates on already-typed
// Values, not raw Cypher text.
package exprfn

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/value"
)

func arityErr(name string, want int, got int) error {
	return grapherr.New(grapherr.KindQuery, grapherr.CodeInvalidStatement,
		fmt.Sprintf("%s: expected %d argument(s), got %d", name, want, got))
}

// Builtins returns the default scalar function table wired into
// executor.Context.Functions and planner-time constant folding.
func Builtins() expr.Functions {
	return expr.Functions{
		"coalesce":    fnCoalesce,
		"exists":      fnExists,
		"tostring":    fnToString,
		"tointeger":   fnToInteger,
		"tofloat":     fnToFloat,
		"toboolean":   fnToBoolean,
		"size":        fnSize,
		"keys":        fnKeys,
		"abs":         fnAbs,
		"ceil":        fnCeil,
		"floor":       fnFloor,
		"round":       fnRound,
		"sign":        fnSign,
		"sqrt":        fnSqrt,
		"upper":       fnUpper,
		"lower":       fnLower,
		"trim":        fnTrim,
		"substring":   fnSubstring,
		"split":       fnSplit,
		"replace":     fnReplace,
		"reverse":     fnReverse,
		"left":        fnLeft,
		"right":       fnRight,
		"type":        fnType,
		"id":          fnID,
		"labels":      fnLabels,
		"startswith":  fnStartsWith,
		"endswith":    fnEndsWith,
		"contains":    fnContainsStr,
		"list":        fnList,
	}
}

// fnList collects its arguments into a list Value, giving queryparser's
// expression builder a function to lower `[a, b, c]` list-literal syntax
// into (since expr.Expr has no dedicated list-literal Kind, every
// multi-element literal is a KindCall to this builtin instead).
func fnList(args []value.Value) (value.Value, error) {
	return value.List(args), nil
}

func fnCoalesce(args []value.Value) (value.Value, error) {
	for _, a := range args {
		if !a.IsNull() {
			return a, nil
		}
	}
	return value.Null(), nil
}

func fnExists(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("exists", 1, len(args))
	}
	return value.Bool(!args[0].IsNull()), nil
}

func fnToString(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("toString", 1, len(args))
	}
	a := args[0]
	if a.IsNull() {
		return value.Null(), nil
	}
	switch a.Kind {
	case value.KindString:
		return a, nil
	case value.KindInt:
		return value.String(strconv.FormatInt(a.Int(), 10)), nil
	case value.KindFloat:
		return value.String(strconv.FormatFloat(a.Float(), 'g', -1, 64)), nil
	case value.KindBool:
		return value.String(strconv.FormatBool(a.Bool())), nil
	default:
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "toString: unsupported argument type")
	}
}

func fnToInteger(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("toInteger", 1, len(args))
	}
	a := args[0]
	switch a.Kind {
	case value.KindNull:
		return value.Null(), nil
	case value.KindInt:
		return a, nil
	case value.KindFloat:
		return value.Int(int64(a.Float())), nil
	case value.KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(a.Str()), 10, 64)
		if err != nil {
			return value.Null(), nil
		}
		return value.Int(n), nil
	default:
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "toInteger: unsupported argument type")
	}
}

func fnToFloat(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("toFloat", 1, len(args))
	}
	a := args[0]
	switch a.Kind {
	case value.KindNull:
		return value.Null(), nil
	case value.KindFloat:
		return a, nil
	case value.KindInt:
		return value.Float(float64(a.Int())), nil
	case value.KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(a.Str()), 64)
		if err != nil {
			return value.Null(), nil
		}
		return value.Float(f), nil
	default:
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "toFloat: unsupported argument type")
	}
}

func fnToBoolean(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("toBoolean", 1, len(args))
	}
	a := args[0]
	switch a.Kind {
	case value.KindNull:
		return value.Null(), nil
	case value.KindBool:
		return a, nil
	case value.KindString:
		switch strings.ToLower(a.Str()) {
		case "true":
			return value.Bool(true), nil
		case "false":
			return value.Bool(false), nil
		default:
			return value.Null(), nil
		}
	default:
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "toBoolean: unsupported argument type")
	}
}

func fnSize(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("size", 1, len(args))
	}
	a := args[0]
	switch a.Kind {
	case value.KindNull:
		return value.Null(), nil
	case value.KindString:
		return value.Int(int64(len(a.Str()))), nil
	case value.KindList:
		return value.Int(int64(len(a.List()))), nil
	case value.KindSet:
		return value.Int(int64(len(a.List()))), nil
	case value.KindMap:
		return value.Int(int64(len(a.Map()))), nil
	default:
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "size: unsupported argument type")
	}
}

func fnKeys(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("keys", 1, len(args))
	}
	if args[0].Kind != value.KindMap {
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "keys: argument must be a map")
	}
	names := value.SortedMapKeys(args[0].Map())
	out := make([]value.Value, len(names))
	for i, n := range names {
		out[i] = value.String(n)
	}
	return value.List(out), nil
}

func numericArg(name string, args []value.Value) (float64, bool, error) {
	if len(args) != 1 {
		return 0, false, arityErr(name, 1, len(args))
	}
	switch args[0].Kind {
	case value.KindNull:
		return 0, true, nil
	case value.KindInt:
		return float64(args[0].Int()), false, nil
	case value.KindFloat:
		return args[0].Float(), false, nil
	default:
		return 0, false, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, name+": argument must be numeric")
	}
}

func fnAbs(args []value.Value) (value.Value, error) {
	if len(args) == 1 && args[0].Kind == value.KindInt {
		n := args[0].Int()
		if n < 0 {
			n = -n
		}
		return value.Int(n), nil
	}
	f, isNull, err := numericArg("abs", args)
	if err != nil || isNull {
		return value.Null(), err
	}
	return value.Float(math.Abs(f)), nil
}

func fnCeil(args []value.Value) (value.Value, error) {
	f, isNull, err := numericArg("ceil", args)
	if err != nil || isNull {
		return value.Null(), err
	}
	return value.Float(math.Ceil(f)), nil
}

func fnFloor(args []value.Value) (value.Value, error) {
	f, isNull, err := numericArg("floor", args)
	if err != nil || isNull {
		return value.Null(), err
	}
	return value.Float(math.Floor(f)), nil
}

func fnRound(args []value.Value) (value.Value, error) {
	f, isNull, err := numericArg("round", args)
	if err != nil || isNull {
		return value.Null(), err
	}
	return value.Float(math.Round(f)), nil
}

func fnSign(args []value.Value) (value.Value, error) {
	f, isNull, err := numericArg("sign", args)
	if err != nil || isNull {
		return value.Null(), err
	}
	switch {
	case f > 0:
		return value.Int(1), nil
	case f < 0:
		return value.Int(-1), nil
	default:
		return value.Int(0), nil
	}
}

func fnSqrt(args []value.Value) (value.Value, error) {
	f, isNull, err := numericArg("sqrt", args)
	if err != nil || isNull {
		return value.Null(), err
	}
	return value.Float(math.Sqrt(f)), nil
}

func stringArg(name string, args []value.Value) (string, bool, error) {
	if len(args) < 1 {
		return "", false, arityErr(name, 1, len(args))
	}
	if args[0].Kind == value.KindNull {
		return "", true, nil
	}
	if args[0].Kind != value.KindString {
		return "", false, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, name+": argument must be a string")
	}
	return args[0].Str(), false, nil
}

func fnUpper(args []value.Value) (value.Value, error) {
	s, isNull, err := stringArg("upper", args)
	if err != nil || isNull {
		return value.Null(), err
	}
	return value.String(strings.ToUpper(s)), nil
}

func fnLower(args []value.Value) (value.Value, error) {
	s, isNull, err := stringArg("lower", args)
	if err != nil || isNull {
		return value.Null(), err
	}
	return value.String(strings.ToLower(s)), nil
}

func fnTrim(args []value.Value) (value.Value, error) {
	s, isNull, err := stringArg("trim", args)
	if err != nil || isNull {
		return value.Null(), err
	}
	return value.String(strings.TrimSpace(s)), nil
}

func fnReverse(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("reverse", 1, len(args))
	}
	switch args[0].Kind {
	case value.KindNull:
		return value.Null(), nil
	case value.KindString:
		r := []rune(args[0].Str())
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
		return value.String(string(r)), nil
	case value.KindList:
		items := args[0].List()
		out := make([]value.Value, len(items))
		for i, v := range items {
			out[len(items)-1-i] = v
		}
		return value.List(out), nil
	default:
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "reverse: unsupported argument type")
	}
}

func fnSubstring(args []value.Value) (value.Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeInvalidStatement, "substring: expected 2 or 3 arguments")
	}
	if args[0].Kind == value.KindNull {
		return value.Null(), nil
	}
	if args[0].Kind != value.KindString || args[1].Kind != value.KindInt {
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "substring: invalid argument types")
	}
	r := []rune(args[0].Str())
	start := int(args[1].Int())
	if start < 0 {
		start = 0
	}
	if start > len(r) {
		start = len(r)
	}
	end := len(r)
	if len(args) == 3 {
		if args[2].Kind != value.KindInt {
			return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "substring: length must be an integer")
		}
		end = start + int(args[2].Int())
		if end > len(r) {
			end = len(r)
		}
	}
	if end < start {
		end = start
	}
	return value.String(string(r[start:end])), nil
}

func fnSplit(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, arityErr("split", 2, len(args))
	}
	if args[0].Kind == value.KindNull {
		return value.Null(), nil
	}
	if args[0].Kind != value.KindString || args[1].Kind != value.KindString {
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "split: arguments must be strings")
	}
	parts := strings.Split(args[0].Str(), args[1].Str())
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = value.String(p)
	}
	return value.List(out), nil
}

func fnReplace(args []value.Value) (value.Value, error) {
	if len(args) != 3 {
		return value.Value{}, arityErr("replace", 3, len(args))
	}
	if args[0].Kind == value.KindNull {
		return value.Null(), nil
	}
	for _, a := range args {
		if a.Kind != value.KindString {
			return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "replace: arguments must be strings")
		}
	}
	return value.String(strings.ReplaceAll(args[0].Str(), args[1].Str(), args[2].Str())), nil
}

func fnLeft(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, arityErr("left", 2, len(args))
	}
	if args[0].Kind == value.KindNull {
		return value.Null(), nil
	}
	if args[0].Kind != value.KindString || args[1].Kind != value.KindInt {
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "left: invalid argument types")
	}
	r := []rune(args[0].Str())
	n := int(args[1].Int())
	if n < 0 {
		n = 0
	}
	if n > len(r) {
		n = len(r)
	}
	return value.String(string(r[:n])), nil
}

func fnRight(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, arityErr("right", 2, len(args))
	}
	if args[0].Kind == value.KindNull {
		return value.Null(), nil
	}
	if args[0].Kind != value.KindString || args[1].Kind != value.KindInt {
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "right: invalid argument types")
	}
	r := []rune(args[0].Str())
	n := int(args[1].Int())
	if n < 0 {
		n = 0
	}
	if n > len(r) {
		n = len(r)
	}
	return value.String(string(r[len(r)-n:])), nil
}

func fnStartsWith(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, arityErr("startsWith", 2, len(args))
	}
	if args[0].Kind == value.KindNull || args[1].Kind == value.KindNull {
		return value.Null(), nil
	}
	if args[0].Kind != value.KindString || args[1].Kind != value.KindString {
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "startsWith: arguments must be strings")
	}
	return value.Bool(strings.HasPrefix(args[0].Str(), args[1].Str())), nil
}

func fnEndsWith(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, arityErr("endsWith", 2, len(args))
	}
	if args[0].Kind == value.KindNull || args[1].Kind == value.KindNull {
		return value.Null(), nil
	}
	if args[0].Kind != value.KindString || args[1].Kind != value.KindString {
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "endsWith: arguments must be strings")
	}
	return value.Bool(strings.HasSuffix(args[0].Str(), args[1].Str())), nil
}

func fnContainsStr(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, arityErr("contains", 2, len(args))
	}
	if args[0].Kind == value.KindNull || args[1].Kind == value.KindNull {
		return value.Null(), nil
	}
	if args[0].Kind != value.KindString || args[1].Kind != value.KindString {
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "contains: arguments must be strings")
	}
	return value.Bool(strings.Contains(args[0].Str(), args[1].Str())), nil
}

// fnType/fnID/fnLabels operate on the graph-typed Values a pattern match
// binds (vertex/edge columns), per Cypher's id()/type()/labels()
// functions. They read the value's own Kind rather than any schema
// lookup, since expr.Functions has no catalog access.
func fnType(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("type", 1, len(args))
	}
	if args[0].Kind != value.KindEdge {
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "type: argument must be an edge")
	}
	if e, ok := args[0].GraphPayload().(*graph.Edge); ok {
		return value.Int(int64(e.Type)), nil
	}
	return value.Null(), nil
}

func fnID(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("id", 1, len(args))
	}
	if v, ok := args[0].GraphPayload().(*graph.Vertex); ok {
		return value.Int(int64(v.ID)), nil
	}
	return value.Null(), nil
}

func fnLabels(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, arityErr("labels", 1, len(args))
	}
	if args[0].Kind != value.KindVertex {
		return value.Value{}, grapherr.New(grapherr.KindQuery, grapherr.CodeTypeError, "labels: argument must be a vertex")
	}
	v, ok := args[0].GraphPayload().(*graph.Vertex)
	if !ok {
		return value.List(nil), nil
	}
	out := make([]value.Value, len(v.Tags))
	for i, t := range v.Tags {
		out[i] = value.Int(int64(t.Tag))
	}
	return value.List(out), nil
}
