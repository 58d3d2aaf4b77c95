package queryparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/value"
)

// exprParser is a small precedence-climbing recursive descent parser over
// the token stream tokenize produces. straga-Mimir_lite's ASTBuilder.
// parseExpression only classifies a whole text blob into one of a fixed
// set of shapes (literal/variable/property/function/list) without ever
// combining them with an operator — adequate for its own simplified
// Cypher AST, but internal/expr models real BinaryOp/UnaryOp trees and
// internal/ast's WHERE/RETURN/ORDER BY clauses need genuine predicates
// (`a.age > 30 AND b.active`), so this parser adds the precedence climb
// the teacher's builder leaves out, reusing its literal/variable/
// property/function/list classification at the leaves.
type exprParser struct {
	toks []token
	pos  int
}

// parseExpr parses text as a full expression and reports an error if any
// trailing, unconsumed tokens remain.
func parseExpr(text string) (*expr.Expr, error) {
	p := &exprParser{toks: tokenize(text)}
	if len(p.toks) == 0 {
		return nil, grapherr.New(grapherr.KindQuery, grapherr.CodeParseError, "queryparser: empty expression")
	}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, grapherr.New(grapherr.KindQuery, grapherr.CodeParseError,
			fmt.Sprintf("queryparser: unexpected trailing token %q in expression %q", p.toks[p.pos].text, text))
	}
	return e, nil
}

func (p *exprParser) peek() token {
	if p.pos >= len(p.toks) {
		return token{kind: tokEOF}
	}
	return p.toks[p.pos]
}

func (p *exprParser) next() token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *exprParser) parseOr() (*expr.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for isKeyword(p.peek(), "OR") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = expr.Binary(expr.OpOr, left, right)
	}
	return left, nil
}

func (p *exprParser) parseAnd() (*expr.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for isKeyword(p.peek(), "AND") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = expr.Binary(expr.OpAnd, left, right)
	}
	return left, nil
}

func (p *exprParser) parseNot() (*expr.Expr, error) {
	if isKeyword(p.peek(), "NOT") {
		p.next()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return expr.Unary(expr.OpNot, operand), nil
	}
	return p.parseComparison()
}

var comparisonOps = map[string]expr.BinaryOp{
	"=": expr.OpEq, "==": expr.OpEq,
	"<>": expr.OpNeq, "!=": expr.OpNeq,
	"<": expr.OpLt, "<=": expr.OpLte,
	">": expr.OpGt, ">=": expr.OpGte,
}

func (p *exprParser) parseComparison() (*expr.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind == tokOp {
		if op, ok := comparisonOps[t.text]; ok {
			p.next()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return expr.Binary(op, left, right), nil
		}
	}
	return left, nil
}

func (p *exprParser) parseAdditive() (*expr.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		if t.text == "+" {
			left = expr.Binary(expr.OpAdd, left, right)
		} else {
			left = expr.Binary(expr.OpSub, left, right)
		}
	}
}

func (p *exprParser) parseMultiplicative() (*expr.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "*" && t.text != "/" && t.text != "%") {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		switch t.text {
		case "*":
			left = expr.Binary(expr.OpMul, left, right)
		case "/":
			left = expr.Binary(expr.OpDiv, left, right)
		case "%":
			left = expr.Binary(expr.OpMod, left, right)
		}
	}
}

func (p *exprParser) parseUnary() (*expr.Expr, error) {
	if t := p.peek(); t.kind == tokOp && t.text == "-" {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return expr.Unary(expr.OpNeg, operand), nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (*expr.Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		if strings.Contains(t.text, ".") {
			f, err := strconv.ParseFloat(t.text, 64)
			if err != nil {
				return nil, grapherr.Wrap(grapherr.KindQuery, grapherr.CodeParseError, "queryparser: invalid float literal "+t.text, err)
			}
			return expr.Lit(value.Float(f)), nil
		}
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, grapherr.Wrap(grapherr.KindQuery, grapherr.CodeParseError, "queryparser: invalid integer literal "+t.text, err)
		}
		return expr.Lit(value.Int(n)), nil

	case tokString:
		return expr.Lit(value.String(unquote(t.text))), nil

	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, grapherr.New(grapherr.KindQuery, grapherr.CodeParseError, "queryparser: expected closing ')'")
		}
		p.next()
		return inner, nil

	case tokLBracket:
		var items []*expr.Expr
		if p.peek().kind != tokRBracket {
			for {
				item, err := p.parseOr()
				if err != nil {
					return nil, err
				}
				items = append(items, item)
				if p.peek().kind == tokComma {
					p.next()
					continue
				}
				break
			}
		}
		if p.peek().kind != tokRBracket {
			return nil, grapherr.New(grapherr.KindQuery, grapherr.CodeParseError, "queryparser: expected closing ']'")
		}
		p.next()
		return expr.Call("list", items...), nil

	case tokIdent:
		switch strings.ToUpper(t.text) {
		case "TRUE":
			return expr.Lit(value.Bool(true)), nil
		case "FALSE":
			return expr.Lit(value.Bool(false)), nil
		case "NULL":
			return expr.Lit(value.Null()), nil
		}
		if p.peek().kind == tokLParen {
			p.next()
			var args []*expr.Expr
			if p.peek().kind != tokRParen {
				for {
					if isKeyword(p.peek(), "DISTINCT") {
						// aggregate DISTINCT modifier: the argument list
						// itself is unaffected once lowered into expr.Call.
						p.next()
					}
					if t2 := p.peek(); t2.kind == tokOp && t2.text == "*" {
						// count(*) — no argument to parse.
						p.next()
						break
					}
					arg, err := p.parseOr()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if p.peek().kind == tokComma {
						p.next()
						continue
					}
					break
				}
			}
			if p.peek().kind != tokRParen {
				return nil, grapherr.New(grapherr.KindQuery, grapherr.CodeParseError, "queryparser: expected closing ')' in function call "+t.text)
			}
			p.next()
			return expr.Call(strings.ToLower(t.text), args...), nil
		}
		if dot := strings.IndexByte(t.text, '.'); dot > 0 {
			return expr.Prop(t.text[:dot], t.text[dot+1:]), nil
		}
		return expr.Var(t.text), nil
	}

	return nil, grapherr.New(grapherr.KindQuery, grapherr.CodeParseError, fmt.Sprintf("queryparser: unexpected token %q", t.text))
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}
