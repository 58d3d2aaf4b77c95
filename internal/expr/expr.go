// Package expr implements the expression evaluation subsystem of spec
// §4.6 ("Expression evaluation is a separate subsystem used by Filter,
// Project, and predicate-like operators"). Grounded on straga-Mimir_lite's
// pkg/cypher expression/operator helpers (operators.go, type_conversion.go)
// for the binary-operator dispatch and NULL three-valued-logic shape,
// reworked as a small tagged-variant tree instead of string-based
// expression text.
package expr

import (
	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/value"
)

// Kind discriminates an Expr node.
type Kind uint8

const (
	KindLiteral Kind = iota
	KindVar
	KindProperty
	KindBinary
	KindUnary
	KindCall
)

type BinaryOp string

const (
	OpAdd BinaryOp = "+"
	OpSub BinaryOp = "-"
	OpMul BinaryOp = "*"
	OpDiv BinaryOp = "/"
	OpMod BinaryOp = "%"
	OpEq  BinaryOp = "=="
	OpNeq BinaryOp = "!="
	OpLt  BinaryOp = "<"
	OpLte BinaryOp = "<="
	OpGt  BinaryOp = ">"
	OpGte BinaryOp = ">="
	OpAnd BinaryOp = "AND"
	OpOr  BinaryOp = "OR"
)

type UnaryOp string

const (
	OpNot UnaryOp = "NOT"
	OpNeg UnaryOp = "-"
)

// Expr is a tagged-variant expression tree node (spec §9's "closed set of
// node variants known at compile time" strategy applied to expressions as
// well as plan nodes).
type Expr struct {
	Kind Kind

	Literal value.Value // KindLiteral

	VarName string // KindVar: row[VarName]

	PropBase Variable // KindProperty: PropBase.PropName
	PropName string

	BinOp BinaryOp // KindBinary
	Left  *Expr
	Right *Expr

	UnOp    UnaryOp // KindUnary
	Operand *Expr

	FuncName string // KindCall
	Args     []*Expr
}

// Variable names the row column an expression reads.
type Variable = string

func Lit(v value.Value) *Expr           { return &Expr{Kind: KindLiteral, Literal: v} }
func Var(name string) *Expr             { return &Expr{Kind: KindVar, VarName: name} }
func Prop(base, name string) *Expr      { return &Expr{Kind: KindProperty, PropBase: base, PropName: name} }
func Binary(op BinaryOp, l, r *Expr) *Expr { return &Expr{Kind: KindBinary, BinOp: op, Left: l, Right: r} }
func Unary(op UnaryOp, e *Expr) *Expr   { return &Expr{Kind: KindUnary, UnOp: op, Operand: e} }
func Call(name string, args ...*Expr) *Expr {
	return &Expr{Kind: KindCall, FuncName: name, Args: args}
}

// Row is one evaluation context: variable name -> Value.
type Row map[string]value.Value

// Functions resolves a builtin function by name; callers register the
// built-in table used by Project/Filter. Unregistered names return
// UndefinedVariable-flavored errors.
type Functions map[string]func(args []value.Value) (value.Value, error)

// Eval evaluates e against row using the optional function table (nil is
// fine if no KindCall nodes appear). NULL propagates per SQL three-valued
// logic (spec §4.6): any operand that is NULL makes a binary/unary result
// NULL rather than erroring, except where noted.
func Eval(e *Expr, row Row, fns Functions) (value.Value, error) {
	if e == nil {
		return value.Null(), nil
	}
	switch e.Kind {
	case KindLiteral:
		return e.Literal, nil
	case KindVar:
		v, ok := row[e.VarName]
		if !ok {
			return value.Null(), grapherr.New(grapherr.KindQuery, grapherr.CodeInvalidInput, "undefined variable: "+e.VarName)
		}
		return v, nil
	case KindProperty:
		base, ok := row[e.PropBase]
		if !ok {
			return value.Null(), grapherr.New(grapherr.KindQuery, grapherr.CodeInvalidInput, "undefined variable: "+e.PropBase)
		}
		if base.Kind != value.KindMap {
			return value.Null(), nil
		}
		if p, ok := base.Map()[e.PropName]; ok {
			return p, nil
		}
		return value.Null(), nil
	case KindBinary:
		return evalBinary(e, row, fns)
	case KindUnary:
		return evalUnary(e, row, fns)
	case KindCall:
		if fns == nil {
			return value.Null(), grapherr.New(grapherr.KindQuery, grapherr.CodeInvalidInput, "unknown function: "+e.FuncName)
		}
		fn, ok := fns[e.FuncName]
		if !ok {
			return value.Null(), grapherr.New(grapherr.KindQuery, grapherr.CodeInvalidInput, "unknown function: "+e.FuncName)
		}
		args := make([]value.Value, len(e.Args))
		for i, a := range e.Args {
			v, err := Eval(a, row, fns)
			if err != nil {
				return value.Null(), err
			}
			args[i] = v
		}
		return fn(args)
	default:
		return value.Null(), grapherr.New(grapherr.KindInternal, grapherr.CodeInternalError, "unknown expr kind")
	}
}

func evalUnary(e *Expr, row Row, fns Functions) (value.Value, error) {
	v, err := Eval(e.Operand, row, fns)
	if err != nil {
		return value.Null(), err
	}
	if v.IsNull() {
		return value.Null(), nil
	}
	switch e.UnOp {
	case OpNot:
		if v.Kind != value.KindBool {
			return value.Null(), grapherr.New(grapherr.KindValidation, grapherr.CodeTypeError, "NOT requires a boolean operand")
		}
		return value.Bool(!v.Bool()), nil
	case OpNeg:
		switch v.Kind {
		case value.KindInt:
			return value.Int(-v.Int()), nil
		case value.KindFloat:
			return value.Float(-v.Float()), nil
		default:
			return value.Null(), grapherr.New(grapherr.KindValidation, grapherr.CodeTypeError, "unary - requires a numeric operand")
		}
	default:
		return value.Null(), grapherr.New(grapherr.KindInternal, grapherr.CodeInternalError, "unknown unary op")
	}
}

func evalBinary(e *Expr, row Row, fns Functions) (value.Value, error) {
	// AND/OR implement SQL three-valued logic with short-circuit on a
	// determining operand, evaluated left-to-right.
	if e.BinOp == OpAnd || e.BinOp == OpOr {
		l, err := Eval(e.Left, row, fns)
		if err != nil {
			return value.Null(), err
		}
		if e.BinOp == OpAnd && l.Kind == value.KindBool && !l.Bool() {
			return value.Bool(false), nil
		}
		if e.BinOp == OpOr && l.Kind == value.KindBool && l.Bool() {
			return value.Bool(true), nil
		}
		r, err := Eval(e.Right, row, fns)
		if err != nil {
			return value.Null(), err
		}
		if l.IsNull() || r.IsNull() {
			return value.Null(), nil
		}
		if l.Kind != value.KindBool || r.Kind != value.KindBool {
			return value.Null(), grapherr.New(grapherr.KindValidation, grapherr.CodeTypeError, "AND/OR require boolean operands")
		}
		if e.BinOp == OpAnd {
			return value.Bool(l.Bool() && r.Bool()), nil
		}
		return value.Bool(l.Bool() || r.Bool()), nil
	}

	l, err := Eval(e.Left, row, fns)
	if err != nil {
		return value.Null(), err
	}
	r, err := Eval(e.Right, row, fns)
	if err != nil {
		return value.Null(), err
	}
	if l.IsNull() || r.IsNull() {
		return value.Null(), nil
	}

	switch e.BinOp {
	case OpEq:
		return value.Bool(l.Equal(r)), nil
	case OpNeq:
		return value.Bool(!l.Equal(r)), nil
	case OpLt, OpLte, OpGt, OpGte:
		cmp, ok := l.Compare(r)
		if !ok {
			return value.Null(), grapherr.New(grapherr.KindValidation, grapherr.CodeTypeError, "operands are not comparable")
		}
		switch e.BinOp {
		case OpLt:
			return value.Bool(cmp < 0), nil
		case OpLte:
			return value.Bool(cmp <= 0), nil
		case OpGt:
			return value.Bool(cmp > 0), nil
		default:
			return value.Bool(cmp >= 0), nil
		}
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return evalArith(e.BinOp, l, r)
	default:
		return value.Null(), grapherr.New(grapherr.KindInternal, grapherr.CodeInternalError, "unknown binary op")
	}
}

func evalArith(op BinaryOp, l, r value.Value) (value.Value, error) {
	if l.Kind == value.KindString && r.Kind == value.KindString && op == OpAdd {
		return value.String(l.Str() + r.Str()), nil
	}
	lf, lok := asFloat(l)
	rf, rok := asFloat(r)
	if !lok || !rok {
		return value.Null(), grapherr.New(grapherr.KindValidation, grapherr.CodeTypeError, "arithmetic requires numeric operands")
	}
	if op == OpDiv && rf == 0 {
		return value.Null(), grapherr.New(grapherr.KindValidation, grapherr.CodeExecutionError, "division by zero")
	}
	if op == OpMod && rf == 0 {
		return value.Null(), grapherr.New(grapherr.KindValidation, grapherr.CodeExecutionError, "division by zero")
	}

	// Preserve int arithmetic when both operands are ints.
	if l.Kind == value.KindInt && r.Kind == value.KindInt && op != OpDiv {
		li, ri := l.Int(), r.Int()
		switch op {
		case OpAdd:
			return value.Int(li + ri), nil
		case OpSub:
			return value.Int(li - ri), nil
		case OpMul:
			return value.Int(li * ri), nil
		case OpMod:
			return value.Int(li % ri), nil
		}
	}

	switch op {
	case OpAdd:
		return value.Float(lf + rf), nil
	case OpSub:
		return value.Float(lf - rf), nil
	case OpMul:
		return value.Float(lf * rf), nil
	case OpDiv:
		return value.Float(lf / rf), nil
	case OpMod:
		return value.Float(float64(int64(lf) % int64(rf))), nil
	}
	return value.Null(), grapherr.New(grapherr.KindInternal, grapherr.CodeInternalError, "unreachable")
}

func asFloat(v value.Value) (float64, bool) {
	switch v.Kind {
	case value.KindInt:
		return float64(v.Int()), true
	case value.KindFloat:
		return v.Float(), true
	default:
		return 0, false
	}
}

// Truthy applies SQL/Cypher-style truthiness: only a non-NULL boolean true
// is truthy, matching a Filter operator's admission rule.
func Truthy(v value.Value) bool {
	return v.Kind == value.KindBool && v.Bool()
}
