// Package queryparser implements the text-to-AST lexer/parser spec §1
// names as an external collaborator and internal/service.Parser's
// interface contract demands: it turns a MATCH/WHERE/WITH/RETURN/
// ORDER BY/SKIP/LIMIT/UNWIND query string into a validated internal/ast
// Query. It is grounded on straga-Mimir_lite's pkg/cypher/ast_builder.go
// — the same keyword-boundary clause splitter (clauses.go), the same
// node/relationship-pattern regexes (patterns.go) — generalized to the
// tag/edge-type pattern model internal/ast specifies and extended with a
// real operator-precedence expression parser (exprparser.go) the
// teacher's own builder does not have, since internal/expr needs genuine
// Binary/Unary trees rather than a single classified literal/variable/
// property/function/list leaf.
//
// It deliberately cannot produce CREATE/MERGE/DELETE/SET/REMOVE clauses:
// internal/ast models only the read/traversal clause set the planner
// lowers (spec §1's division of labor), so those keywords are reported
// as parse errors pointing callers at GraphService's direct Go-typed
// schema/data methods (schema.go) instead.
package queryparser

import (
	"strings"

	"github.com/kkkqkx123/graphdb/internal/ast"
	"github.com/kkkqkx123/graphdb/internal/grapherr"
)

// Parser implements internal/service.Parser. It is stateless and safe
// for concurrent use — NewASTBuilder's precompiled regexes are package
// vars here rather than struct fields, since there is no per-call state
// to isolate (no Cypher-specific configuration knobs exist yet).
type Parser struct{}

// NewParser returns a ready-to-use Parser.
func NewParser() *Parser { return &Parser{} }

// Parse lowers statement into an ast.Query with Space left at its zero
// value — the caller (GraphService.Query/ValidateQuery) binds the
// calling session's active space before validating or lowering further.
func (p *Parser) Parse(statement string) (ast.Query, error) {
	trimmed := strings.TrimSpace(statement)
	if trimmed == "" {
		return ast.Query{}, grapherr.New(grapherr.KindQuery, grapherr.CodeParseError, "queryparser: empty statement")
	}

	raw := splitIntoClauses(trimmed)
	if len(raw) == 0 {
		return ast.Query{}, grapherr.New(grapherr.KindQuery, grapherr.CodeParseError, "queryparser: no recognized clause in statement")
	}

	clauses := make([]ast.Clause, 0, len(raw))
	for _, rc := range raw {
		clause, err := buildClause(rc)
		if err != nil {
			return ast.Query{}, err
		}
		clauses = append(clauses, clause)
	}

	return ast.Query{Clauses: clauses}, nil
}
