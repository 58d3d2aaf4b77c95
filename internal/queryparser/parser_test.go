package queryparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkqkx123/graphdb/internal/ast"
	"github.com/kkkqkx123/graphdb/internal/expr"
)

func TestParseSimpleMatchReturn(t *testing.T) {
	p := NewParser()
	q, err := p.Parse(`MATCH (a:Person)-[r:KNOWS]->(b:Person) WHERE a.age > 30 RETURN a.name AS name, b.name ORDER BY name DESC LIMIT 10 SKIP 2`)
	require.NoError(t, err)
	require.Len(t, q.Clauses, 6)

	assert.Equal(t, ast.ClauseMatch, q.Clauses[0].Kind)
	match := q.Clauses[0].Match
	require.Len(t, match.Patterns, 1)
	pattern := match.Patterns[0]
	require.Len(t, pattern.Nodes, 2)
	require.Len(t, pattern.Edges, 1)
	assert.Equal(t, "a", pattern.Nodes[0].Variable)
	assert.Equal(t, []string{"Person"}, pattern.Nodes[0].Tags)
	assert.Equal(t, "b", pattern.Nodes[1].Variable)
	assert.Equal(t, "r", pattern.Edges[0].Variable)
	assert.Equal(t, []string{"KNOWS"}, pattern.Edges[0].EdgeTypes)
	assert.Equal(t, ast.DirOutgoing, pattern.Edges[0].Direction)
	assert.Equal(t, 1, pattern.Edges[0].MinHops)
	assert.Equal(t, 1, pattern.Edges[0].MaxHops)

	assert.Equal(t, ast.ClauseWhere, q.Clauses[1].Kind)
	pred := q.Clauses[1].Where.Predicate
	require.Equal(t, expr.KindBinary, pred.Kind)
	assert.Equal(t, expr.OpGt, pred.BinOp)

	assert.Equal(t, ast.ClauseReturn, q.Clauses[2].Kind)
	ret := q.Clauses[2].Return
	require.Len(t, ret.Items, 2)
	assert.Equal(t, "name", ret.Items[0].Alias)
	assert.Equal(t, "b.name", ret.Items[1].Alias)

	assert.Equal(t, ast.ClauseOrderBy, q.Clauses[3].Kind)
	require.Len(t, q.Clauses[3].OrderBy.Items, 1)
	assert.Equal(t, "name", q.Clauses[3].OrderBy.Items[0].Column)
	assert.True(t, q.Clauses[3].OrderBy.Items[0].Descending)

	assert.Equal(t, ast.ClauseLimit, q.Clauses[4].Kind)
	assert.Equal(t, int64(10), q.Clauses[4].Limit.Count)

	assert.Equal(t, ast.ClauseSkip, q.Clauses[5].Kind)
	assert.Equal(t, int64(2), q.Clauses[5].Skip.Count)
}

func TestParseOptionalMatchAndIncomingEdge(t *testing.T) {
	p := NewParser()
	q, err := p.Parse(`OPTIONAL MATCH (a)<-[:FOLLOWS]-(b) RETURN a`)
	require.NoError(t, err)
	require.Len(t, q.Clauses, 2)
	assert.True(t, q.Clauses[0].Match.Optional)
	assert.Equal(t, ast.DirIncoming, q.Clauses[0].Match.Patterns[0].Edges[0].Direction)
}

func TestParseUndirectedAndVariableLengthEdge(t *testing.T) {
	p := NewParser()
	q, err := p.Parse(`MATCH (a)-[:KNOWS*1..3]-(b) RETURN a`)
	require.NoError(t, err)
	edge := q.Clauses[0].Match.Patterns[0].Edges[0]
	assert.Equal(t, ast.DirBoth, edge.Direction)
	assert.Equal(t, 1, edge.MinHops)
	assert.Equal(t, 3, edge.MaxHops)
}

func TestParseNodePropertiesAndWithClause(t *testing.T) {
	p := NewParser()
	q, err := p.Parse(`MATCH (a:Person {name: "Ada", age: 36}) WITH a RETURN a`)
	require.NoError(t, err)
	node := q.Clauses[0].Match.Patterns[0].Nodes[0]
	require.Contains(t, node.Properties, "name")
	require.Contains(t, node.Properties, "age")
	nameExpr := node.Properties["name"]
	assert.Equal(t, expr.KindLiteral, nameExpr.Kind)
	assert.Equal(t, "Ada", nameExpr.Literal.Str())

	assert.Equal(t, ast.ClauseWith, q.Clauses[1].Kind)
	assert.Len(t, q.Clauses[1].With.Items, 1)
}

func TestParseUnwind(t *testing.T) {
	p := NewParser()
	q, err := p.Parse(`UNWIND [1, 2, 3] AS x RETURN x`)
	require.NoError(t, err)
	require.Equal(t, ast.ClauseUnwind, q.Clauses[0].Kind)
	unwind := q.Clauses[0].Unwind
	assert.Equal(t, "x", unwind.Alias)
	assert.Equal(t, expr.KindCall, unwind.Source.Kind)
	assert.Equal(t, "list", unwind.Source.FuncName)
	assert.Len(t, unwind.Source.Args, 3)
}

func TestParseRejectsCreateAsUnsupportedWriteClause(t *testing.T) {
	p := NewParser()
	_, err := p.Parse(`CREATE (a:Person {name: "Ada"})`)
	assert.Error(t, err)
}

func TestParseExprPrecedence(t *testing.T) {
	e, err := parseExpr(`a.age > 30 AND NOT b.banned OR c.vip`)
	require.NoError(t, err)
	// top-level is OR, since OR binds loosest
	assert.Equal(t, expr.KindBinary, e.Kind)
	assert.Equal(t, expr.OpOr, e.BinOp)
	left := e.Left
	assert.Equal(t, expr.OpAnd, left.BinOp)
}

func TestParseExprArithmeticAndFunctionCall(t *testing.T) {
	e, err := parseExpr(`abs(a.balance - 10) * 2`)
	require.NoError(t, err)
	assert.Equal(t, expr.KindBinary, e.Kind)
	assert.Equal(t, expr.OpMul, e.BinOp)
	call := e.Left
	assert.Equal(t, expr.KindCall, call.Kind)
	assert.Equal(t, "abs", call.FuncName)
	require.Len(t, call.Args, 1)
}

func TestParseExprRejectsTrailingGarbage(t *testing.T) {
	_, err := parseExpr(`a.age > 30 )`)
	assert.Error(t, err)
}

func TestParseEmptyStatementRejected(t *testing.T) {
	p := NewParser()
	_, err := p.Parse("   ")
	assert.Error(t, err)
}

func TestUnquoteHandlesPlainAndQuoted(t *testing.T) {
	assert.Equal(t, "Ada", unquote(`"Ada"`))
	assert.Equal(t, "Ada", unquote(`'Ada'`))
}
