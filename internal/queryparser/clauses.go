package queryparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kkkqkx123/graphdb/internal/ast"
	"github.com/kkkqkx123/graphdb/internal/grapherr"
)

// clauseKeyword pairs a clause-introducing keyword with the ast.ClauseKind
// it maps to, or "" when the keyword names a write clause internal/ast has
// no representation for (those mutations go through GraphService's direct
// Go-typed schema/data methods instead of query text — see schema.go).
// Longer phrases are listed before the shorter keywords they contain
// ("OPTIONAL MATCH" before "MATCH", "ORDER BY" before nothing it collides
// with) so the boundary scan below prefers the longest match at a given
// position, mirroring straga-Mimir_lite's splitIntoClauses.
type clauseKeyword struct {
	keyword string
	kind    ast.ClauseKind // "" for a recognized-but-unsupported write keyword
}

var clauseKeywords = []clauseKeyword{
	{"OPTIONAL MATCH", ast.ClauseMatch},
	{"DETACH DELETE", ""},
	{"ORDER BY", ast.ClauseOrderBy},
	{"MATCH", ast.ClauseMatch},
	{"MERGE", ""},
	{"DELETE", ""},
	{"REMOVE", ""},
	{"RETURN", ast.ClauseReturn},
	{"UNWIND", ast.ClauseUnwind},
	{"WHERE", ast.ClauseWhere},
	{"LIMIT", ast.ClauseLimit},
	{"SKIP", ast.ClauseSkip},
	{"CALL", ""},
	{"UNION", ""},
	{"FOREACH", ""},
	{"WITH", ast.ClauseWith},
	{"CREATE", ""},
	{"SET", ""},
}

type clauseBoundary struct {
	pos     int
	keyword string
	kind    ast.ClauseKind
}

type rawClause struct {
	keyword string
	kind    ast.ClauseKind
	text    string
}

// splitIntoClauses finds every clause-keyword occurrence in statement
// (outside quoted strings, respecting word boundaries) and slices the
// original text between consecutive boundaries, exactly the technique
// straga-Mimir_lite's ASTBuilder.splitIntoClauses uses for Cypher. CREATE
// and SET occurrences immediately after "ON" / "ON CREATE" / "ON MATCH"
// are MERGE-clause modifiers there, not standalone clauses, and are
// skipped the same way.
func splitIntoClauses(statement string) []rawClause {
	upper := strings.ToUpper(statement)
	mask := computeQuoteMask(statement)

	var boundaries []clauseBoundary
	for _, kw := range clauseKeywords {
		from := 0
		for {
			pos := findKeywordPosition(upper, mask, kw.keyword, from)
			if pos < 0 {
				break
			}
			if kw.keyword == "CREATE" || kw.keyword == "SET" {
				before := strings.TrimRight(upper[:pos], " \t\n\r")
				if strings.HasSuffix(before, "ON") || strings.HasSuffix(before, "ON CREATE") || strings.HasSuffix(before, "ON MATCH") {
					from = pos + len(kw.keyword)
					continue
				}
			}
			boundaries = append(boundaries, clauseBoundary{pos: pos, keyword: kw.keyword, kind: kw.kind})
			from = pos + len(kw.keyword)
		}
	}

	sortBoundaries(boundaries)

	var filtered []clauseBoundary
	for i, b := range boundaries {
		if i == 0 {
			filtered = append(filtered, b)
			continue
		}
		prev := filtered[len(filtered)-1]
		if b.pos < prev.pos+len(prev.keyword) {
			continue
		}
		filtered = append(filtered, b)
	}

	var clauses []rawClause
	for i, b := range filtered {
		end := len(statement)
		if i+1 < len(filtered) {
			end = filtered[i+1].pos
		}
		clauses = append(clauses, rawClause{
			keyword: b.keyword,
			kind:    b.kind,
			text:    strings.TrimSpace(statement[b.pos:end]),
		})
	}
	return clauses
}

func sortBoundaries(b []clauseBoundary) {
	for i := 1; i < len(b); i++ {
		for j := i; j > 0 && b[j].pos < b[j-1].pos; j-- {
			b[j], b[j-1] = b[j-1], b[j]
		}
	}
}

// computeQuoteMask marks every byte that falls inside a single- or
// double-quoted run so findKeywordPosition can skip keyword-shaped text
// that only appears inside a string literal (e.g. a WHERE clause
// comparing against the literal "LIMIT").
func computeQuoteMask(s string) []bool {
	mask := make([]bool, len(s))
	inString := false
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			mask[i] = true
			if c == quote {
				inString = false
			}
			continue
		}
		if c == '\'' || c == '"' {
			inString = true
			quote = c
			mask[i] = true
		}
	}
	return mask
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// findKeywordPosition finds the next word-boundary-respecting, unquoted
// occurrence of keyword in upper at or after from, or -1.
func findKeywordPosition(upper string, mask []bool, keyword string, from int) int {
	for from <= len(upper)-len(keyword) {
		idx := strings.Index(upper[from:], keyword)
		if idx < 0 {
			return -1
		}
		pos := from + idx
		before := pos == 0 || !isWordChar(upper[pos-1])
		afterIdx := pos + len(keyword)
		after := afterIdx >= len(upper) || !isWordChar(upper[afterIdx])
		if before && after && !mask[pos] {
			return pos
		}
		from = pos + 1
	}
	return -1
}

func unsupportedClauseErr(keyword string) error {
	return grapherr.New(grapherr.KindQuery, grapherr.CodeInvalidStatement,
		fmt.Sprintf("queryparser: %s is not supported in query text; use GraphService's direct schema/data methods for writes", keyword))
}

// buildClause turns one rawClause into an ast.Clause, dispatching on the
// clause's own ast.ClauseKind (internal/ast's tagged-variant shape,
// mirroring ASTBuilder.parseClause's switch).
func buildClause(raw rawClause) (ast.Clause, error) {
	if raw.kind == "" {
		return ast.Clause{}, unsupportedClauseErr(raw.keyword)
	}
	body := strings.TrimSpace(raw.text[len(raw.keyword):])
	switch raw.kind {
	case ast.ClauseMatch:
		match, err := parseMatch(body, strings.EqualFold(raw.keyword, "OPTIONAL MATCH"))
		if err != nil {
			return ast.Clause{}, err
		}
		return ast.Clause{Kind: ast.ClauseMatch, Match: match}, nil
	case ast.ClauseWhere:
		pred, err := parseExpr(body)
		if err != nil {
			return ast.Clause{}, err
		}
		return ast.Clause{Kind: ast.ClauseWhere, Where: &ast.WhereClause{Predicate: pred}}, nil
	case ast.ClauseWith:
		items, distinct, err := parseReturnItems(body)
		if err != nil {
			return ast.Clause{}, err
		}
		_ = distinct // internal/ast.WithClause carries no Distinct flag; WITH DISTINCT collapses to a plain WITH (a later RETURN DISTINCT still de-duplicates).
		return ast.Clause{Kind: ast.ClauseWith, With: &ast.WithClause{Items: items}}, nil
	case ast.ClauseReturn:
		items, distinct, err := parseReturnItems(body)
		if err != nil {
			return ast.Clause{}, err
		}
		return ast.Clause{Kind: ast.ClauseReturn, Return: &ast.ReturnClause{Items: items, Distinct: distinct}}, nil
	case ast.ClauseOrderBy:
		items, err := parseOrderBy(body)
		if err != nil {
			return ast.Clause{}, err
		}
		return ast.Clause{Kind: ast.ClauseOrderBy, OrderBy: &ast.OrderByClause{Items: items}}, nil
	case ast.ClauseLimit:
		n, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return ast.Clause{}, grapherr.Wrap(grapherr.KindQuery, grapherr.CodeParseError, "queryparser: invalid LIMIT count", err)
		}
		return ast.Clause{Kind: ast.ClauseLimit, Limit: &ast.LimitClause{Count: n}}, nil
	case ast.ClauseSkip:
		n, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return ast.Clause{}, grapherr.Wrap(grapherr.KindQuery, grapherr.CodeParseError, "queryparser: invalid SKIP count", err)
		}
		return ast.Clause{Kind: ast.ClauseSkip, Skip: &ast.SkipClause{Count: n}}, nil
	case ast.ClauseUnwind:
		upper := strings.ToUpper(body)
		asIdx := strings.LastIndex(upper, " AS ")
		if asIdx < 0 {
			return ast.Clause{}, grapherr.New(grapherr.KindQuery, grapherr.CodeParseError, "queryparser: UNWIND requires an AS alias")
		}
		source, err := parseExpr(strings.TrimSpace(body[:asIdx]))
		if err != nil {
			return ast.Clause{}, err
		}
		alias := strings.TrimSpace(body[asIdx+4:])
		return ast.Clause{Kind: ast.ClauseUnwind, Unwind: &ast.UnwindClause{Source: source, Alias: alias}}, nil
	}
	return ast.Clause{}, grapherr.New(grapherr.KindQuery, grapherr.CodeInternalError, "queryparser: unhandled clause kind "+string(raw.kind))
}

// parseReturnItems parses a comma-separated RETURN/WITH item list,
// each item an expression with an optional trailing `AS alias`.
func parseReturnItems(body string) ([]ast.ReturnItem, bool, error) {
	distinct := false
	if strings.HasPrefix(strings.ToUpper(body), "DISTINCT") {
		distinct = true
		body = strings.TrimSpace(body[len("DISTINCT"):])
	}
	parts := splitOutsideBrackets(body, ',')
	items := make([]ast.ReturnItem, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		alias := ""
		upper := strings.ToUpper(part)
		if asIdx := strings.LastIndex(upper, " AS "); asIdx > 0 {
			alias = strings.TrimSpace(part[asIdx+4:])
			part = strings.TrimSpace(part[:asIdx])
		}
		e, err := parseExpr(part)
		if err != nil {
			return nil, false, err
		}
		if alias == "" {
			alias = part
		}
		items = append(items, ast.ReturnItem{Expr: e, Alias: alias})
	}
	return items, distinct, nil
}

func parseOrderBy(body string) ([]ast.OrderByItem, error) {
	parts := splitOutsideBrackets(body, ',')
	items := make([]ast.OrderByItem, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := false
		upper := strings.ToUpper(part)
		switch {
		case strings.HasSuffix(upper, " DESC"):
			desc = true
			part = strings.TrimSpace(part[:len(part)-5])
		case strings.HasSuffix(upper, " ASC"):
			part = strings.TrimSpace(part[:len(part)-4])
		}
		items = append(items, ast.OrderByItem{Column: part, Descending: desc})
	}
	return items, nil
}

// splitOutsideBrackets splits s on delim, skipping occurrences inside
// (), [], {} nesting or quoted strings — straga-Mimir_lite's
// splitOutsideBrackets helper, reused verbatim since it is already
// generic over delimiter and quoting rules internal/queryparser needs
// unchanged.
func splitOutsideBrackets(s string, delim rune) []string {
	var parts []string
	var current strings.Builder
	depth := 0
	inString := false
	var stringChar rune

	for _, ch := range s {
		if inString {
			current.WriteRune(ch)
			if ch == stringChar {
				inString = false
			}
			continue
		}
		switch ch {
		case '\'', '"':
			inString = true
			stringChar = ch
			current.WriteRune(ch)
		case '(', '[', '{':
			depth++
			current.WriteRune(ch)
		case ')', ']', '}':
			depth--
			current.WriteRune(ch)
		default:
			if ch == delim && depth == 0 {
				parts = append(parts, current.String())
				current.Reset()
				continue
			}
			current.WriteRune(ch)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
