package exprfn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/value"
)

func TestCoalesceReturnsFirstNonNull(t *testing.T) {
	fns := Builtins()
	v, err := fns["coalesce"]([]value.Value{value.Null(), value.Null(), value.Int(7)})
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.Int())
}

func TestToIntegerParsesString(t *testing.T) {
	fns := Builtins()
	v, err := fns["tointeger"]([]value.Value{value.String("42")})
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int())
}

func TestToIntegerBadStringYieldsNull(t *testing.T) {
	fns := Builtins()
	v, err := fns["tointeger"]([]value.Value{value.String("not a number")})
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestSizeOverListAndString(t *testing.T) {
	fns := Builtins()
	v, err := fns["size"]([]value.Value{value.List([]value.Value{value.Int(1), value.Int(2)})})
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.Int())

	v, err = fns["size"]([]value.Value{value.String("hello")})
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.Int())
}

func TestKeysOverMapIsSorted(t *testing.T) {
	fns := Builtins()
	v, err := fns["keys"]([]value.Value{value.Map(map[string]value.Value{"b": value.Int(1), "a": value.Int(2)})})
	require.NoError(t, err)
	list := v.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Str())
	assert.Equal(t, "b", list[1].Str())
}

func TestAbsPreservesIntKind(t *testing.T) {
	fns := Builtins()
	v, err := fns["abs"]([]value.Value{value.Int(-5)})
	require.NoError(t, err)
	assert.Equal(t, value.KindInt, v.Kind)
	assert.Equal(t, int64(5), v.Int())
}

func TestSubstringWithAndWithoutLength(t *testing.T) {
	fns := Builtins()
	v, err := fns["substring"]([]value.Value{value.String("hello world"), value.Int(6)})
	require.NoError(t, err)
	assert.Equal(t, "world", v.Str())

	v, err = fns["substring"]([]value.Value{value.String("hello world"), value.Int(0), value.Int(5)})
	require.NoError(t, err)
	assert.Equal(t, "hello", v.Str())
}

func TestStartsWithEndsWithContains(t *testing.T) {
	fns := Builtins()
	v, err := fns["startswith"]([]value.Value{value.String("hello"), value.String("he")})
	require.NoError(t, err)
	assert.True(t, v.Bool())

	v, err = fns["endswith"]([]value.Value{value.String("hello"), value.String("lo")})
	require.NoError(t, err)
	assert.True(t, v.Bool())

	v, err = fns["contains"]([]value.Value{value.String("hello"), value.String("ell")})
	require.NoError(t, err)
	assert.True(t, v.Bool())
}

func TestIdAndLabelsOverVertex(t *testing.T) {
	v := &graph.Vertex{ID: ids.VertexId(9), Tags: []graph.TagInstance{{Tag: ids.TagId(3)}, {Tag: ids.TagId(4)}}}
	fns := Builtins()

	idVal, err := fns["id"]([]value.Value{v.AsValue()})
	require.NoError(t, err)
	assert.Equal(t, int64(9), idVal.Int())

	labelsVal, err := fns["labels"]([]value.Value{v.AsValue()})
	require.NoError(t, err)
	list := labelsVal.List()
	require.Len(t, list, 2)
	assert.Equal(t, int64(3), list[0].Int())
	assert.Equal(t, int64(4), list[1].Int())
}

func TestTypeOverEdge(t *testing.T) {
	e := &graph.Edge{Src: 1, Dst: 2, Type: ids.EdgeType(5)}
	fns := Builtins()
	v, err := fns["type"]([]value.Value{e.AsValue()})
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.Int())
}

func TestReverseStringAndList(t *testing.T) {
	fns := Builtins()
	v, err := fns["reverse"]([]value.Value{value.String("abc")})
	require.NoError(t, err)
	assert.Equal(t, "cba", v.Str())

	v, err = fns["reverse"]([]value.Value{value.List([]value.Value{value.Int(1), value.Int(2), value.Int(3)})})
	require.NoError(t, err)
	list := v.List()
	require.Len(t, list, 3)
	assert.Equal(t, int64(3), list[0].Int())
}
