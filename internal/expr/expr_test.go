package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkqkx123/graphdb/internal/value"
)

func TestEvalArithmetic(t *testing.T) {
	e := Binary(OpAdd, Lit(value.Int(2)), Lit(value.Int(3)))
	v, err := Eval(e, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.Int())
}

func TestEvalDivisionByZero(t *testing.T) {
	e := Binary(OpDiv, Lit(value.Int(1)), Lit(value.Int(0)))
	_, err := Eval(e, nil, nil)
	assert.Error(t, err)
}

func TestEvalComparison(t *testing.T) {
	e := Binary(OpGt, Var("age"), Lit(value.Int(21)))
	row := Row{"age": value.Int(30)}
	v, err := Eval(e, row, nil)
	require.NoError(t, err)
	assert.True(t, Truthy(v))
}

func TestEvalNullPropagation(t *testing.T) {
	e := Binary(OpAdd, Lit(value.Null()), Lit(value.Int(1)))
	v, err := Eval(e, nil, nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestEvalAndShortCircuitsOnFalse(t *testing.T) {
	e := Binary(OpAnd, Lit(value.Bool(false)), Var("undefined"))
	v, err := Eval(e, nil, nil)
	require.NoError(t, err, "AND must short-circuit before evaluating the undefined right operand")
	assert.False(t, Truthy(v))
}

func TestEvalUndefinedVariable(t *testing.T) {
	_, err := Eval(Var("missing"), Row{}, nil)
	assert.Error(t, err)
}

func TestEvalPropertyAccess(t *testing.T) {
	row := Row{"n": value.Map(map[string]value.Value{"name": value.String("Alice")})}
	v, err := Eval(Prop("n", "name"), row, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alice", v.Str())
}

func TestEvalFunctionCall(t *testing.T) {
	fns := Functions{
		"abs": func(args []value.Value) (value.Value, error) {
			if args[0].Int() < 0 {
				return value.Int(-args[0].Int()), nil
			}
			return args[0], nil
		},
	}
	v, err := Eval(Call("abs", Lit(value.Int(-5))), nil, fns)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.Int())
}
