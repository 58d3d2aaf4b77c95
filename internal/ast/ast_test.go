package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kkkqkx123/graphdb/internal/expr"
)

func TestPatternValidateRejectsMismatchedEdgeCount(t *testing.T) {
	p := Pattern{
		Nodes: []NodePattern{{Variable: "a"}, {Variable: "b"}},
		Edges: nil,
	}
	assert.Error(t, p.Validate())
}

func TestPatternValidateAcceptsChain(t *testing.T) {
	p := Pattern{
		Nodes: []NodePattern{{Variable: "a"}, {Variable: "b"}, {Variable: "c"}},
		Edges: []EdgePattern{{EdgeTypes: []string{"KNOWS"}}, {EdgeTypes: []string{"KNOWS"}}},
	}
	assert.NoError(t, p.Validate())
}

func TestQueryValidateRejectsClauseAfterReturn(t *testing.T) {
	q := Query{Clauses: []Clause{
		{Kind: ClauseReturn, Return: &ReturnClause{}},
		{Kind: ClauseMatch, Match: &MatchClause{Patterns: []Pattern{{Nodes: []NodePattern{{Variable: "a"}}}}}},
	}}
	assert.Error(t, q.Validate())
}

func TestQueryValidateAllowsOrderByAfterReturn(t *testing.T) {
	q := Query{Clauses: []Clause{
		{Kind: ClauseReturn, Return: &ReturnClause{}},
		{Kind: ClauseOrderBy, OrderBy: &OrderByClause{Items: []OrderByItem{{Column: "n"}}}},
		{Kind: ClauseLimit, Limit: &LimitClause{Count: 10}},
	}}
	assert.NoError(t, q.Validate())
}

func TestQueryValidateRejectsEmpty(t *testing.T) {
	assert.Error(t, Query{}.Validate())
}

func TestQueryValidateChecksNestedPatterns(t *testing.T) {
	q := Query{Clauses: []Clause{
		{Kind: ClauseMatch, Match: &MatchClause{Patterns: []Pattern{{}}}},
	}}
	assert.Error(t, q.Validate())
	_ = expr.Var("unused") // keep expr import exercised by package, avoids unused import drift
}
