package queryparser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kkkqkx123/graphdb/internal/ast"
	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/grapherr"
)

// nodePattern and edgePattern are the same "match the whole bracketed
// shape, then pick the pieces apart with named groups" regexes
// straga-Mimir_lite's ASTBuilder precompiles (nodePattern/relationPattern
// in NewASTBuilder), generalized two ways the teacher's one-directional
// `-[...]->`-only regex doesn't need: an edge may point either way or
// neither (`<-[...]-`, `-[...]->`, `-[...]-`), and may carry a variable
// hop count (`*`, `*2`, `*1..3`) the way Cypher variable-length paths do.
var (
	nodePattern = regexp.MustCompile(`\((\w*)(?::(\w+(?::\w+)*))?(?:\s*\{([^}]*)\})?\)`)
	edgePattern = regexp.MustCompile(`(<)?-\[(\w*)?(?::(\w+(?:\|\w+)*))?(?:\*(\d+)?(?:\.\.(\d+))?)?\]-(>)?`)
	propPattern = regexp.MustCompile(`(\w+)\s*:\s*([^,}]+)`)
)

// unboundedHopCap bounds a bare `*` variable-length edge (no explicit
// min/max) to a finite traversal depth, since plan.TraverseAttrs.MaxDepth
// is a single finite int with no "unbounded" sentinel.
const unboundedHopCap = 32

// parseMatch parses the pattern list following MATCH/OPTIONAL MATCH —
// one or more comma-separated patterns, each an alternating chain of node
// and edge shapes (spec's "alternating NodePattern/EdgePattern chain").
func parseMatch(body string, optional bool) (*ast.MatchClause, error) {
	parts := splitOutsideBrackets(body, ',')
	patterns := make([]ast.Pattern, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pattern, err := parsePattern(part)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, pattern)
	}
	if len(patterns) == 0 {
		return nil, grapherr.New(grapherr.KindQuery, grapherr.CodeParseError, "queryparser: MATCH requires at least one pattern")
	}
	return &ast.MatchClause{Patterns: patterns, Optional: optional}, nil
}

func parsePattern(text string) (ast.Pattern, error) {
	var pattern ast.Pattern

	for _, m := range nodePattern.FindAllStringSubmatch(text, -1) {
		node := ast.NodePattern{Properties: map[string]expr.Expr{}}
		if len(m) > 1 {
			node.Variable = m[1]
		}
		if len(m) > 2 && m[2] != "" {
			node.Tags = strings.Split(m[2], ":")
		}
		if len(m) > 3 && m[3] != "" {
			for _, pm := range propPattern.FindAllStringSubmatch(m[3], -1) {
				if len(pm) <= 2 {
					continue
				}
				valExpr, err := parseExpr(strings.TrimSpace(pm[2]))
				if err != nil {
					return ast.Pattern{}, err
				}
				node.Properties[pm[1]] = *valExpr
			}
		}
		pattern.Nodes = append(pattern.Nodes, node)
	}

	for _, m := range edgePattern.FindAllStringSubmatch(text, -1) {
		edge := ast.EdgePattern{MinHops: 1, MaxHops: 1}
		leftArrow, variable, edgeType, minHop, maxHop, rightArrow := m[1], m[2], m[3], m[4], m[5], m[6]
		switch {
		case leftArrow != "" && rightArrow == "":
			edge.Direction = ast.DirIncoming
		case leftArrow == "" && rightArrow != "":
			edge.Direction = ast.DirOutgoing
		default:
			edge.Direction = ast.DirBoth
		}
		edge.Variable = variable
		if edgeType != "" {
			edge.EdgeTypes = strings.Split(edgeType, "|")
		}
		if minHop != "" {
			n, err := strconv.Atoi(minHop)
			if err != nil {
				return ast.Pattern{}, grapherr.Wrap(grapherr.KindQuery, grapherr.CodeParseError, "queryparser: invalid hop count", err)
			}
			edge.MinHops = n
			edge.MaxHops = n
		} else if strings.Contains(m[0], "*") {
			// Bare `*` (no bounds): the planner/executor only carries a
			// single finite MaxDepth (internal/planner/lower.go's
			// lowerExpand, internal/executor/traverse.go), so an unbounded
			// variable-length path is capped here rather than left
			// unrepresentable.
			edge.MinHops = 1
			edge.MaxHops = unboundedHopCap
		}
		if maxHop != "" {
			n, err := strconv.Atoi(maxHop)
			if err != nil {
				return ast.Pattern{}, grapherr.Wrap(grapherr.KindQuery, grapherr.CodeParseError, "queryparser: invalid hop count", err)
			}
			edge.MaxHops = n
		}
		pattern.Edges = append(pattern.Edges, edge)
	}

	if err := pattern.Validate(); err != nil {
		return ast.Pattern{}, grapherr.Wrap(grapherr.KindQuery, grapherr.CodeParseError, fmt.Sprintf("queryparser: invalid pattern %q", text), err)
	}
	return pattern, nil
}
