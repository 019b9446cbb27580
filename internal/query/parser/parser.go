// Package parser turns a token stream into an ast.Select. The grammar is
// closed (SELECT/FROM/WHERE/ORDER BY, with optional trailing
// LIMIT/OFFSET in either order) and the parser is not error-recovering:
// the first violation aborts with a SyntaxError.
package parser

import (
	"github.com/steveyegge/witchql/internal/kverrors"
	"github.com/steveyegge/witchql/internal/query/ast"
	"github.com/steveyegge/witchql/internal/query/lexer"
	"github.com/steveyegge/witchql/internal/query/token"
)

// Parser consumes a fixed token slice by position.
type Parser struct {
	tokens []token.Token
	pos    int
}

// Parse tokenizes and parses sql in one step.
func Parse(sql string) (*ast.Select, error) {
	p := &Parser{tokens: lexer.Tokenize(sql)}
	return p.parseSelect()
}

func (p *Parser) current() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() token.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	t := p.current()
	if t.Kind != kind {
		return token.Token{}, kverrors.NewSyntax("expected %v, found %v", kind, t.Kind)
	}
	return p.advance(), nil
}

func (p *Parser) parseSelect() (*ast.Select, error) {
	if _, err := p.expect(token.Select); err != nil {
		return nil, err
	}

	sel := &ast.Select{}
	if err := p.parseSelectList(sel); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.From); err != nil {
		return nil, err
	}
	fromTok, err := p.expect(token.Identifier)
	if err != nil {
		return nil, err
	}
	sel.From = fromTok.Ident

	if p.current().Kind == token.Where {
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		sel.Where = expr
	}

	if p.current().Kind == token.OrderKw {
		p.advance()
		if _, err := p.expect(token.By); err != nil {
			return nil, err
		}
		col, err := p.expect(token.Identifier)
		if err != nil {
			return nil, err
		}
		sel.OrderBy = col.Ident
	}

	if err := p.parseLimitOffset(sel); err != nil {
		return nil, err
	}

	if p.current().Kind != token.EOF {
		return nil, kverrors.NewSyntax("unexpected trailing token %v", p.current().Kind)
	}

	return sel, nil
}

// parseLimitOffset accepts LIMIT and OFFSET clauses in either order, each
// at most once.
func (p *Parser) parseLimitOffset(sel *ast.Select) error {
	for i := 0; i < 2; i++ {
		switch p.current().Kind {
		case token.Limit:
			if sel.Limit != nil {
				return kverrors.NewSyntax("duplicate LIMIT clause")
			}
			p.advance()
			n, err := p.expect(token.Number)
			if err != nil {
				return err
			}
			v := int(n.Num)
			sel.Limit = &v
		case token.Offset:
			if sel.Offset != nil {
				return kverrors.NewSyntax("duplicate OFFSET clause")
			}
			p.advance()
			n, err := p.expect(token.Number)
			if err != nil {
				return err
			}
			v := int(n.Num)
			sel.Offset = &v
		default:
			return nil
		}
	}
	return nil
}

func (p *Parser) parseSelectList(sel *ast.Select) error {
	if p.current().Kind == token.Asterisk {
		p.advance()
		sel.Star = true
		if p.current().Kind == token.Comma {
			return kverrors.NewSyntax("cannot mix * with explicit fields")
		}
		return nil
	}

	for {
		col, err := p.expect(token.Identifier)
		if err != nil {
			return err
		}
		sel.Fields = append(sel.Fields, col.Ident)
		if p.current().Kind != token.Comma {
			break
		}
		p.advance()
		if p.current().Kind == token.Asterisk {
			return kverrors.NewSyntax("cannot mix * with explicit fields")
		}
	}
	return nil
}

// parseExpression parses a left-associative chain of comparisons joined
// by AND/OR at equal precedence.
func (p *Parser) parseExpression() (ast.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.current().Kind {
		case token.And:
			op = "AND"
		case token.Or:
			op = "OR"
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryOp{Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	colTok, err := p.expect(token.Identifier)
	if err != nil {
		return nil, err
	}
	op, err := p.parseCmpOp()
	if err != nil {
		return nil, err
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return ast.BinaryOp{Left: ast.Column{Name: colTok.Ident}, Op: op, Right: lit}, nil
}

func (p *Parser) parseCmpOp() (string, error) {
	switch p.current().Kind {
	case token.GT:
		p.advance()
		return ">", nil
	case token.GE:
		p.advance()
		return ">=", nil
	case token.LT:
		p.advance()
		return "<", nil
	case token.LE:
		p.advance()
		return "<=", nil
	case token.EQ:
		p.advance()
		return "=", nil
	case token.NE:
		p.advance()
		return "!=", nil
	default:
		return "", kverrors.NewSyntax("expected comparison operator, found %v", p.current().Kind)
	}
}

func (p *Parser) parseLiteral() (ast.Expr, error) {
	t := p.current()
	switch t.Kind {
	case token.Number:
		p.advance()
		return ast.Literal{Num: t.Num}, nil
	case token.String:
		p.advance()
		return ast.Literal{IsString: true, Str: t.Str}, nil
	default:
		return nil, kverrors.NewSyntax("expected literal, found %v", t.Kind)
	}
}
