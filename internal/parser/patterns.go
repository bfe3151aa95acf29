package parser

import (
	"github.com/yen-lang/Yen-sub000/internal/ast"
	"github.com/yen-lang/Yen-sub000/internal/token"
)

// parsePattern reads `or-pattern [when|if guard]` and leaves curToken on its
// last token.
func (p *Parser) parsePattern() ast.Pattern {
	tok := p.curToken
	first := p.parsePrimaryPattern()
	if first == nil {
		return nil
	}

	var pattern ast.Pattern = first
	if p.peekTokenIs(token.BITWISE_OR) {
		or := &ast.OrPattern{Token: tok, Alternatives: []ast.Pattern{first}}
		for p.peekTokenIs(token.BITWISE_OR) {
			p.nextToken()
			p.nextToken()
			alt := p.parsePrimaryPattern()
			if alt == nil {
				return nil
			}
			or.Alternatives = append(or.Alternatives, alt)
		}
		pattern = or
	}

	if p.peekTokenIs(token.IF) || (p.peekTokenIs(token.IDENT) && p.peekToken.Literal == "when") {
		p.nextToken()
		guarded := &ast.GuardedPattern{Token: p.curToken, Pattern: pattern}
		p.nextToken()
		guarded.Guard = p.parseExpression(LOWEST)
		if guarded.Guard == nil {
			return nil
		}
		pattern = guarded
	}

	return pattern
}

func (p *Parser) parsePrimaryPattern() ast.Pattern {
	switch p.curToken.Type {
	case token.IDENT:
		switch {
		case p.curToken.Literal == "_":
			return &ast.WildcardPattern{Token: p.curToken}
		case p.peekTokenIs(token.PERIOD):
			return p.parseValuePattern()
		case p.peekTokenIs(token.LBRACE):
			return p.parseStructPattern()
		}
		return &ast.BindingPattern{Token: p.curToken, Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}

	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE, token.NULL, token.MINUS:
		return p.parseValuePattern()

	case token.LPAREN:
		return p.parseTuplePattern(token.RPAREN)

	case token.LBRACKET:
		return p.parseTuplePattern(token.RBRACKET)
	}

	p.addError("unexpected %s in pattern", describe(p.curToken))
	return nil
}

// parseValuePattern reads a literal or a qualified constant, optionally
// followed by a range operator and an upper bound.
func (p *Parser) parseValuePattern() ast.Pattern {
	tok := p.curToken
	start := p.parsePatternValue()
	if start == nil {
		return nil
	}

	if p.peekTokenIs(token.RANGE) || p.peekTokenIs(token.RANGE_INCL) {
		p.nextToken()
		rp := &ast.RangePattern{Token: p.curToken, Start: start, Inclusive: p.curTokenIs(token.RANGE_INCL)}
		p.nextToken()
		rp.End = p.parsePatternValue()
		if rp.End == nil {
			return nil
		}
		return rp
	}

	return &ast.LiteralPattern{Token: tok, Value: start}
}

func (p *Parser) parsePatternValue() ast.Expression {
	switch p.curToken.Type {
	case token.MINUS:
		tok := p.curToken
		if !p.peekTokenIs(token.INT) && !p.peekTokenIs(token.FLOAT) {
			p.addErrorAt(p.peekToken, "expected a number after '-' in pattern, got %s", describe(p.peekToken))
			return nil
		}
		p.nextToken()
		operand := p.prefixParseFns[p.curToken.Type]()
		if operand == nil {
			return nil
		}
		return &ast.PrefixExpression{Token: tok, Operator: "-", Right: operand}

	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE, token.NULL:
		return p.prefixParseFns[p.curToken.Type]()

	case token.IDENT:
		var expr ast.Expression = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		for p.peekTokenIs(token.PERIOD) {
			p.nextToken()
			get := &ast.GetExpression{Token: p.curToken, Object: expr}
			if !p.nextIsName() {
				return nil
			}
			get.Name = p.curToken.Literal
			expr = get
		}
		return expr
	}

	p.addError("expected a literal in pattern, got %s", describe(p.curToken))
	return nil
}

// parseTuplePattern reads `( ... )` or `[ ... ]`. A parenthesized single
// pattern without a trailing comma is just that pattern.
func (p *Parser) parseTuplePattern(end token.TokenType) ast.Pattern {
	tp := &ast.TuplePattern{Token: p.curToken}

	if p.peekTokenIs(end) {
		p.nextToken()
		return tp
	}

	trailingComma := false
	for {
		p.nextToken()
		elem := p.parsePattern()
		if elem == nil {
			return nil
		}
		tp.Elements = append(tp.Elements, elem)
		trailingComma = false
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		trailingComma = true
		if p.peekTokenIs(end) {
			break
		}
	}

	if !p.expectPeek(end) {
		return nil
	}

	if end == token.RPAREN && len(tp.Elements) == 1 && !trailingComma {
		return tp.Elements[0]
	}
	return tp
}

// parseStructPattern reads `Name { field, other: pattern }`.
func (p *Parser) parseStructPattern() ast.Pattern {
	sp := &ast.StructPattern{
		Token: p.curToken,
		Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal},
	}
	p.nextToken()

	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		field := &ast.FieldPattern{Name: name}
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			field.Pattern = p.parsePattern()
			if field.Pattern == nil {
				return nil
			}
		} else {
			field.Pattern = &ast.BindingPattern{Token: name.Token, Name: name}
		}
		sp.Fields = append(sp.Fields, field)
		if !p.peekTokenIs(token.RBRACE) && !p.expectPeek(token.COMMA) {
			return nil
		}
	}
	p.nextToken()
	return sp
}
