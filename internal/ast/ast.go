// Package ast defines the minimal validated query AST the planner
// consumes (spec §4.4 "Input: a validated AST"). Grounded on
// straga-Mimir_lite's pkg/cypher/ast_builder.go (ASTClause's
// tagged-clause-type-plus-payload shape, ASTMatch/ASTWhere/ASTReturn
// field layout), trimmed to the clauses spec §4.4's lowering step names
// (MATCH, WHERE, WITH, RETURN, ORDER BY, SKIP, LIMIT) and generalized from
// Cypher-only syntax to the spec's tag/edge-type pattern model.
package ast

import (
	"fmt"

	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/ids"
)

// ClauseKind discriminates a Clause's payload, mirroring the teacher's
// ASTClauseType enum.
type ClauseKind string

const (
	ClauseMatch   ClauseKind = "MATCH"
	ClauseWhere   ClauseKind = "WHERE"
	ClauseWith    ClauseKind = "WITH"
	ClauseReturn  ClauseKind = "RETURN"
	ClauseOrderBy ClauseKind = "ORDER_BY"
	ClauseLimit   ClauseKind = "LIMIT"
	ClauseSkip    ClauseKind = "SKIP"
	ClauseUnwind  ClauseKind = "UNWIND"
)

// NodePattern is one vertex slot of a MATCH pattern: an optional bound
// variable, zero or more tag names to filter on, and inline property
// equality constraints.
type NodePattern struct {
	Variable   string
	Tags       []string
	Properties map[string]expr.Expr
}

// EdgePattern is one edge slot connecting two NodePatterns.
type EdgePattern struct {
	Variable  string
	EdgeTypes []string
	Direction plan_Direction // re-declared locally to avoid an ast->plan import cycle
	MinHops   int
	MaxHops   int // 0 means zero hops (the start set only); the parser defaults both bounds to 1
}

// plan_Direction mirrors plan.Direction's three values without importing
// package plan (ast is lower in the dependency order; the planner
// translates this into plan.Direction during lowering).
type plan_Direction string

const (
	DirOutgoing plan_Direction = "outgoing"
	DirIncoming plan_Direction = "incoming"
	DirBoth     plan_Direction = "both"
)

// Pattern is one MATCH pattern: an alternating chain of NodePatterns
// connected by EdgePatterns (len(Edges) == len(Nodes)-1).
type Pattern struct {
	Nodes []NodePattern
	Edges []EdgePattern
}

func (p Pattern) Validate() error {
	if len(p.Nodes) == 0 {
		return fmt.Errorf("ast: pattern must have at least one node")
	}
	if len(p.Edges) != len(p.Nodes)-1 {
		return fmt.Errorf("ast: pattern has %d nodes but %d edges (expected %d)", len(p.Nodes), len(p.Edges), len(p.Nodes)-1)
	}
	return nil
}

type MatchClause struct {
	Patterns []Pattern
	Optional bool
}

type WhereClause struct {
	Predicate *expr.Expr
}

type ReturnItem struct {
	Expr  *expr.Expr
	Alias string
}

type ReturnClause struct {
	Items    []ReturnItem
	Distinct bool
}

type WithClause struct {
	Items []ReturnItem
}

type OrderByItem struct {
	Column     string
	Descending bool
}

type OrderByClause struct {
	Items []OrderByItem
}

type LimitClause struct{ Count int64 }
type SkipClause struct{ Count int64 }

type UnwindClause struct {
	Source *expr.Expr
	Alias  string
}

// Clause is a tagged-variant AST clause, one per ClauseKind.
type Clause struct {
	Kind ClauseKind

	Match   *MatchClause
	Where   *WhereClause
	With    *WithClause
	Return  *ReturnClause
	OrderBy *OrderByClause
	Limit   *LimitClause
	Skip    *SkipClause
	Unwind  *UnwindClause
}

// Query is a validated sequence of clauses bound to one graph space.
type Query struct {
	Space   ids.SpaceId
	Clauses []Clause
}

// Validate checks clause-ordering and pattern-shape invariants a planner
// may assume hold (the parser/validator external collaborator is
// responsible for producing only Querys that pass this check; spec §1
// treats the parser itself as an external collaborator, but the contract
// it must honor is specified here).
func (q Query) Validate() error {
	if len(q.Clauses) == 0 {
		return fmt.Errorf("ast: query has no clauses")
	}
	sawReturn := false
	for _, c := range q.Clauses {
		if sawReturn && c.Kind != ClauseOrderBy && c.Kind != ClauseLimit && c.Kind != ClauseSkip {
			return fmt.Errorf("ast: clause %s may not follow RETURN", c.Kind)
		}
		if c.Kind == ClauseReturn {
			sawReturn = true
		}
		if c.Kind == ClauseMatch {
			for _, p := range c.Match.Patterns {
				if err := p.Validate(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
