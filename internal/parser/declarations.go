package parser

import (
	"github.com/yen-lang/Yen-sub000/internal/ast"
	"github.com/yen-lang/Yen-sub000/internal/token"
)

// parseParameters reads a parameter list; curToken is the opening token and is
// left on end.
func (p *Parser) parseParameters(end token.TokenType) ([]*ast.Parameter, bool) {
	params := []*ast.Parameter{}

	defaultPrecedence := LOWEST
	if end == token.BITWISE_OR {
		defaultPrecedence = BITWISE_OR
	}

	if p.peekTokenIs(end) {
		p.nextToken()
		return params, true
	}

	for {
		p.nextToken()
		param := &ast.Parameter{}
		if p.curTokenIs(token.ELLIPSIS) {
			param.Variadic = true
			p.nextToken()
		}
		if !p.curTokenIs(token.IDENT) {
			p.addError("expected a parameter name, got %s", describe(p.curToken))
			return nil, false
		}
		param.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			param.Type = p.parseType()
			if param.Type == nil {
				return nil, false
			}
		}
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			param.Default = p.parseExpression(defaultPrecedence)
			if param.Default == nil {
				return nil, false
			}
		}
		if n := len(params); n > 0 && params[n-1].Variadic {
			p.addErrorAt(param.Name.Token, "variadic parameter %s must be last", params[n-1].Name.Value)
			return nil, false
		}
		params = append(params, param)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(end) {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseFunctionStatement() ast.Statement {
	fn := p.parseFunctionDecl(true)
	if fn == nil {
		return nil
	}
	return fn
}

// parseFunctionDecl reads `func name(params) [-> T] { body }`. curToken is
// either the func keyword or, inside class and trait bodies, the name itself.
func (p *Parser) parseFunctionDecl(requireBody bool) *ast.FunctionStatement {
	fn := &ast.FunctionStatement{Token: p.curToken}

	if p.curTokenIs(token.FUNCTION) {
		if !p.nextIsName() {
			return nil
		}
	}
	fn.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params, ok := p.parseParameters(token.RPAREN)
	if !ok {
		return nil
	}
	fn.Parameters = params

	if p.peekTokenIs(token.ARROW) || p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		fn.ReturnType = p.parseType()
		if fn.ReturnType == nil {
			return nil
		}
	}

	if !p.peekTokenIs(token.LBRACE) && !requireBody {
		return fn
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlockStatement()
	if fn.Body == nil {
		return nil
	}
	return fn
}

func (p *Parser) parseStructStatement() ast.Statement {
	stmt := &ast.StructStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		if p.curTokenIs(token.COMMA) || p.curTokenIs(token.SEMICOLON) {
			continue
		}
		if p.curTokenIs(token.LET) || p.curTokenIs(token.VAR) {
			p.nextToken()
		}
		if !p.curTokenIs(token.IDENT) {
			p.addError("expected a field name in struct %s, got %s", stmt.Name.Value, describe(p.curToken))
			return nil
		}
		field := &ast.FieldDecl{Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			field.Type = p.parseType()
			if field.Type == nil {
				return nil
			}
		}
		for _, existing := range stmt.Fields {
			if existing.Name.Value == field.Name.Value {
				p.addError("duplicate field %s in struct %s", field.Name.Value, stmt.Name.Value)
				return nil
			}
		}
		stmt.Fields = append(stmt.Fields, field)
		if p.peekTokenIs(token.EOF) {
			break
		}
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return stmt
}

func (p *Parser) isClassModifier(tok token.Token) bool {
	if tok.Type != token.IDENT || (tok.Literal != "data" && tok.Literal != "sealed") {
		return false
	}
	next := p.peekToken
	return next.Type == token.CLASS || (next.Type == token.IDENT && (next.Literal == "data" || next.Literal == "sealed"))
}

// parseModifiedClass handles `data class` and `sealed class`.
func (p *Parser) parseModifiedClass() ast.Statement {
	isData, sealed := false, false
	for p.curTokenIs(token.IDENT) {
		switch p.curToken.Literal {
		case "data":
			isData = true
		case "sealed":
			sealed = true
		default:
			p.addError("unknown class modifier %q", p.curToken.Literal)
			return nil
		}
		p.nextToken()
	}
	if !p.curTokenIs(token.CLASS) {
		p.addError("expected class after modifiers, got %s", describe(p.curToken))
		return nil
	}
	return p.parseClassStatement(isData, sealed)
}

func (p *Parser) parseClassStatement(isData, sealed bool) ast.Statement {
	stmt := &ast.ClassStatement{Token: p.curToken, IsData: isData, Sealed: sealed}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	var primary []*ast.Parameter
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		params, ok := p.parseParameters(token.RPAREN)
		if !ok {
			return nil
		}
		primary = params
		for _, param := range params {
			stmt.Fields = append(stmt.Fields, &ast.ClassField{Name: param.Name, Type: param.Type})
		}
	}

	if p.peekTokenIs(token.EXTENDS) || p.peekTokenIs(token.COLON) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Parent = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}

	if p.peekTokenIs(token.IMPL) {
		p.nextToken()
		for {
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			stmt.Traits = append(stmt.Traits, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
	}

	if primary != nil && !p.peekTokenIs(token.LBRACE) {
		return p.withPrimaryConstructor(stmt, primary)
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		if p.curTokenIs(token.EOF) {
			p.addError("expected '}' to close class %s", stmt.Name.Value)
			return nil
		}
		if p.curTokenIs(token.SEMICOLON) || p.curTokenIs(token.COMMA) {
			continue
		}
		if !p.parseClassMember(stmt) {
			return nil
		}
	}
	p.nextToken()

	if primary != nil {
		return p.withPrimaryConstructor(stmt, primary)
	}
	return stmt
}

// withPrimaryConstructor synthesizes init for `class P(x, y)`: each parameter
// is assigned to the field of the same name.
func (p *Parser) withPrimaryConstructor(stmt *ast.ClassStatement, params []*ast.Parameter) ast.Statement {
	for _, m := range stmt.Methods {
		if m.Function.Name.Value == "init" && !m.Static {
			p.addErrorAt(m.Function.Token, "class %s has a parameter list and cannot also declare init", stmt.Name.Value)
			return nil
		}
	}
	body := &ast.BlockStatement{Token: stmt.Token}
	for _, param := range params {
		body.Statements = append(body.Statements, &ast.SetStatement{
			Token:  param.Name.Token,
			Object: &ast.ThisExpression{Token: param.Name.Token},
			Name:   param.Name.Value,
			Value:  param.Name,
		})
	}
	initTok := stmt.Name.Token
	initTok.Literal = "init"
	stmt.Methods = append(stmt.Methods, &ast.ClassMethod{
		Function: &ast.FunctionStatement{
			Token:      stmt.Token,
			Name:       &ast.Identifier{Token: initTok, Value: "init"},
			Parameters: params,
			Body:       body,
		},
	})
	return stmt
}

// parseClassMember reads one field, method or accessor, including its
// leading modifiers.
func (p *Parser) parseClassMember(stmt *ast.ClassStatement) bool {
	visibility := ast.Public
	static, lazy := false, false

modifiers:
	for {
		switch {
		case p.curTokenIs(token.PUB):
			visibility = ast.Public
		case p.curTokenIs(token.PRIV):
			visibility = ast.Private
		case p.curTokenIs(token.STATIC):
			static = true
		case p.curTokenIs(token.IDENT) && p.curToken.Literal == "lazy" && !p.peekTokenIs(token.LPAREN) && !p.peekTokenIs(token.COLON) && !p.peekTokenIs(token.ASSIGN):
			lazy = true
		default:
			break modifiers
		}
		p.nextToken()
	}

	switch {
	case p.curTokenIs(token.LET) || p.curTokenIs(token.VAR) || p.curTokenIs(token.CONST):
		isConst := p.curTokenIs(token.CONST)
		if !p.expectPeek(token.IDENT) {
			return false
		}
		return p.parseClassField(stmt, visibility, static, lazy, isConst)

	case p.curTokenIs(token.FUNCTION):
		fn := p.parseFunctionDecl(true)
		if fn == nil {
			return false
		}
		stmt.Methods = append(stmt.Methods, &ast.ClassMethod{Function: fn, Visibility: visibility, Static: static})
		return true

	case p.curTokenIs(token.IDENT) && (p.curToken.Literal == "get" || p.curToken.Literal == "set") && isName(p.peekToken):
		kind := ast.GetterMember
		if p.curToken.Literal == "set" {
			kind = ast.SetterMember
		}
		fn := p.parseAccessor(kind)
		if fn == nil {
			return false
		}
		stmt.Methods = append(stmt.Methods, &ast.ClassMethod{Function: fn, Visibility: visibility, Static: static, Kind: kind})
		return true

	case p.curTokenIs(token.IDENT) && p.peekTokenIs(token.LPAREN):
		fn := p.parseFunctionDecl(true)
		if fn == nil {
			return false
		}
		stmt.Methods = append(stmt.Methods, &ast.ClassMethod{Function: fn, Visibility: visibility, Static: static})
		return true

	case p.curTokenIs(token.IDENT):
		return p.parseClassField(stmt, visibility, static, lazy, false)
	}

	p.addError("unexpected %s in class %s", describe(p.curToken), stmt.Name.Value)
	return false
}

func (p *Parser) parseClassField(stmt *ast.ClassStatement, visibility ast.Visibility, static, lazy, isConst bool) bool {
	field := &ast.ClassField{
		Name:       &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal},
		Visibility: visibility,
		Static:     static,
		Lazy:       lazy,
		Const:      isConst,
	}
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		field.Type = p.parseType()
		if field.Type == nil {
			return false
		}
	}
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		field.Value = p.parseExpression(LOWEST)
		if field.Value == nil {
			return false
		}
	} else if lazy || isConst {
		p.addErrorAt(field.Name.Token, "field %s needs an initializer", field.Name.Value)
		return false
	}
	for _, existing := range stmt.Fields {
		if existing.Name.Value == field.Name.Value {
			p.addErrorAt(field.Name.Token, "duplicate field %s in class %s", field.Name.Value, stmt.Name.Value)
			return false
		}
	}
	stmt.Fields = append(stmt.Fields, field)
	return true
}

// parseAccessor reads `get name() { }`, `get name { }` or `set name(v) { }`.
func (p *Parser) parseAccessor(kind ast.MemberKind) *ast.FunctionStatement {
	fn := &ast.FunctionStatement{Token: p.curToken}
	p.nextToken()
	fn.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		params, ok := p.parseParameters(token.RPAREN)
		if !ok {
			return nil
		}
		fn.Parameters = params
	}
	switch {
	case kind == ast.GetterMember && len(fn.Parameters) != 0:
		p.addErrorAt(fn.Name.Token, "getter %s takes no parameters", fn.Name.Value)
		return nil
	case kind == ast.SetterMember && len(fn.Parameters) != 1:
		p.addErrorAt(fn.Name.Token, "setter %s takes exactly one parameter", fn.Name.Value)
		return nil
	}

	if p.peekTokenIs(token.ARROW) || p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		fn.ReturnType = p.parseType()
		if fn.ReturnType == nil {
			return nil
		}
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlockStatement()
	if fn.Body == nil {
		return nil
	}
	return fn
}

func (p *Parser) parseEnumStatement() ast.Statement {
	stmt := &ast.EnumStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		value := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		for _, existing := range stmt.Values {
			if existing.Value == value.Value {
				p.addError("duplicate value %s in enum %s", value.Value, stmt.Name.Value)
				return nil
			}
		}
		stmt.Values = append(stmt.Values, value)
		if !p.peekTokenIs(token.RBRACE) && !p.expectPeek(token.COMMA) {
			return nil
		}
	}
	p.nextToken()

	if len(stmt.Values) == 0 {
		p.addError("enum %s has no values", stmt.Name.Value)
		return nil
	}
	return stmt
}

// parseMethodBlock reads `{ func a() { } b() { } }`; requirements without a
// body are only accepted when allowRequired is set.
func (p *Parser) parseMethodBlock(owner string, allowRequired bool) ([]*ast.FunctionStatement, bool) {
	if !p.expectPeek(token.LBRACE) {
		return nil, false
	}
	methods := []*ast.FunctionStatement{}
	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		switch {
		case p.curTokenIs(token.EOF):
			p.addError("expected '}' to close %s", owner)
			return nil, false
		case p.curTokenIs(token.SEMICOLON) || p.curTokenIs(token.PUB):
			continue
		case p.curTokenIs(token.FUNCTION) || (p.curTokenIs(token.IDENT) && p.peekTokenIs(token.LPAREN)):
		default:
			p.addError("expected a method in %s, got %s", owner, describe(p.curToken))
			return nil, false
		}
		fn := p.parseFunctionDecl(!allowRequired)
		if fn == nil {
			return nil, false
		}
		methods = append(methods, fn)
	}
	p.nextToken()
	return methods, true
}

func (p *Parser) parseTraitStatement() ast.Statement {
	stmt := &ast.TraitStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	methods, ok := p.parseMethodBlock("trait "+stmt.Name.Value, true)
	if !ok {
		return nil
	}
	stmt.Methods = methods
	return stmt
}

// parseImplStatement reads `impl Trait for Type { }` or `impl Type { }`.
func (p *Parser) parseImplStatement() ast.Statement {
	stmt := &ast.ImplStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	first := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if p.peekTokenIs(token.FOR) {
		p.nextToken()
		if !p.nextIsName() {
			return nil
		}
		stmt.Trait = first
		stmt.Target = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	} else {
		stmt.Target = first
	}
	methods, ok := p.parseMethodBlock("impl "+stmt.Target.Value, false)
	if !ok {
		return nil
	}
	stmt.Methods = methods
	return stmt
}

func (p *Parser) parseExtendStatement() ast.Statement {
	stmt := &ast.ExtendStatement{Token: p.curToken}
	if !p.nextIsName() {
		return nil
	}
	stmt.Target = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	methods, ok := p.parseMethodBlock("extend "+stmt.Target.Value, false)
	if !ok {
		return nil
	}
	stmt.Methods = methods
	return stmt
}
