package parser

import (
	"github.com/yen-lang/Yen-sub000/internal/ast"
	"github.com/yen-lang/Yen-sub000/internal/token"
)

// statement keywords are the safe points the parser resynchronizes on
var statementStarts = map[token.TokenType]bool{
	token.LET: true, token.VAR: true, token.CONST: true, token.PRINT: true,
	token.IF: true, token.WHILE: true, token.DO: true, token.LOOP: true,
	token.FOR: true, token.REPEAT: true, token.RETURN: true, token.BREAK: true,
	token.CONTINUE: true, token.FUNCTION: true, token.STRUCT: true, token.CLASS: true,
	token.ENUM: true, token.TRAIT: true, token.IMPL: true, token.EXTEND: true,
	token.MATCH: true, token.SWITCH: true, token.IMPORT: true, token.EXPORT: true,
	token.DEFER: true, token.ASSERT: true, token.TRY: true, token.THROW: true,
	token.GO: true,
}

var compoundOperators = map[token.TokenType]string{
	token.PLUS_ASSIGN:     "+",
	token.MINUS_ASSIGN:    "-",
	token.ASTERISK_ASSIGN: "*",
	token.SLASH_ASSIGN:    "/",
	token.PERCENT_ASSIGN:  "%",
	token.POWER_ASSIGN:    "**",
	token.AND_ASSIGN:      "&",
	token.OR_ASSIGN:       "|",
	token.XOR_ASSIGN:      "^",
	token.SHL_ASSIGN:      "<<",
	token.SHR_ASSIGN:      ">>",
}

// parseStatementsUntil parses statements until one of the end tokens (or EOF)
// is current. A statement that produced errors is dropped and the parser
// skips ahead to the next safe point.
func (p *Parser) parseStatementsUntil(ends ...token.TokenType) []ast.Statement {
	statements := []ast.Statement{}
	for !p.curTokenIs(token.EOF) && !p.curTokenIn(ends) {
		before := len(p.errors)
		stmt := p.parseStatement()
		if len(p.errors) > before {
			p.synchronize(ends)
			if p.curTokenIn(ends) {
				continue
			}
		} else if stmt != nil {
			statements = append(statements, stmt)
		}
		p.nextToken()
	}
	return statements
}

func (p *Parser) curTokenIn(types []token.TokenType) bool {
	for _, t := range types {
		if p.curTokenIs(t) {
			return true
		}
	}
	return false
}

func (p *Parser) peekTokenIn(types []token.TokenType) bool {
	for _, t := range types {
		if p.peekTokenIs(t) {
			return true
		}
	}
	return false
}

func (p *Parser) synchronize(ends []token.TokenType) {
	for !p.curTokenIs(token.EOF) && !p.curTokenIn(ends) {
		if p.curTokenIs(token.SEMICOLON) {
			return
		}
		if statementStarts[p.peekToken.Type] || p.peekTokenIs(token.EOF) || p.peekTokenIn(ends) {
			return
		}
		p.nextToken()
	}
}

func (p *Parser) parseStatement() ast.Statement {
	stmt := p.parseStatementBody()
	if stmt != nil && p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseStatementBody() ast.Statement {
	switch p.curToken.Type {
	case token.SEMICOLON:
		return nil
	case token.PRINT:
		return p.parsePrintStatement()
	case token.LET, token.VAR, token.CONST:
		return p.parseLetStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.DO:
		return p.parseDoWhileStatement()
	case token.LOOP:
		return p.parseLoopStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.REPEAT:
		return p.parseRepeatStatement()
	case token.BREAK:
		return &ast.BreakStatement{Token: p.curToken}
	case token.CONTINUE:
		return &ast.ContinueStatement{Token: p.curToken}
	case token.RETURN:
		return p.parseReturnStatement()
	case token.FUNCTION:
		if p.peekTokenIs(token.IDENT) {
			return p.parseFunctionStatement()
		}
	case token.STRUCT:
		return p.parseStructStatement()
	case token.CLASS:
		return p.parseClassStatement(false, false)
	case token.ENUM:
		return p.parseEnumStatement()
	case token.TRAIT:
		return p.parseTraitStatement()
	case token.IMPL:
		return p.parseImplStatement()
	case token.EXTEND:
		return p.parseExtendStatement()
	case token.MATCH:
		return p.parseMatchStatement()
	case token.SWITCH:
		return p.parseSwitchStatement()
	case token.IMPORT:
		return p.parseImportStatement()
	case token.EXPORT:
		return p.parseExportStatement()
	case token.DEFER:
		return p.parseDeferStatement()
	case token.ASSERT:
		return p.parseAssertStatement()
	case token.TRY:
		return p.parseTryStatement()
	case token.THROW:
		return p.parseThrowStatement()
	case token.GO:
		return p.parseGoStatement()
	case token.IDENT:
		if p.isClassModifier(p.curToken) {
			return p.parseModifiedClass()
		}
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parsePrintStatement() ast.Statement {
	stmt := &ast.PrintStatement{Token: p.curToken}
	if p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
		return stmt
	}
	for {
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		stmt.Values = append(stmt.Values, value)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseLetStatement() ast.Statement {
	stmt := &ast.LetStatement{Token: p.curToken, Mutable: !p.curTokenIs(token.CONST)}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		stmt.Type = p.parseType()
		if stmt.Type == nil {
			return nil
		}
	}

	if !p.peekTokenIs(token.ASSIGN) {
		if !stmt.Mutable {
			p.addErrorAt(p.peekToken, "const %s must be initialized", stmt.Name.Value)
			return nil
		}
		return stmt
	}
	p.nextToken()
	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

// parseExpressionStatement parses an expression and only then decides whether
// it is the target of an assignment, a compound assignment or an increment.
func (p *Parser) parseExpressionStatement() ast.Statement {
	startTok := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	switch {
	case p.peekTokenIs(token.ASSIGN):
		p.nextToken()
		assignTok := p.curToken
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		return p.assignmentFor(expr, assignTok, value)

	case p.peekTokenIs(token.WALRUS):
		ident, ok := expr.(*ast.Identifier)
		if !ok {
			p.addErrorAt(p.peekToken, "':=' requires a variable name on the left")
			return nil
		}
		p.nextToken()
		tok := p.curToken
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		return &ast.LetStatement{Token: tok, Name: ident, Value: value, Mutable: true}

	case p.peekTokenIs(token.INCREMENT) || p.peekTokenIs(token.DECREMENT):
		if !isAssignable(expr) {
			p.addErrorAt(p.peekToken, "invalid increment target %s", expr.String())
			return nil
		}
		p.nextToken()
		op := "+"
		if p.curTokenIs(token.DECREMENT) {
			op = "-"
		}
		oneTok := p.curToken
		oneTok.Type, oneTok.Literal = token.INT, "1"
		one := &ast.IntegerLiteral{Token: oneTok, Value: 1}
		return &ast.CompoundAssignStatement{Token: p.curToken, Target: expr, Operator: op, Value: one}
	}

	if op, ok := compoundOperators[p.peekToken.Type]; ok {
		if !isAssignable(expr) {
			p.addErrorAt(p.peekToken, "invalid assignment target %s", expr.String())
			return nil
		}
		p.nextToken()
		tok := p.curToken
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		return &ast.CompoundAssignStatement{Token: tok, Target: expr, Operator: op, Value: value}
	}

	return &ast.ExpressionStatement{Token: startTok, Expression: expr}
}

func isAssignable(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.Identifier, *ast.IndexExpression, *ast.GetExpression:
		return true
	}
	return false
}

func (p *Parser) assignmentFor(target ast.Expression, tok token.Token, value ast.Expression) ast.Statement {
	switch t := target.(type) {
	case *ast.Identifier:
		return &ast.AssignStatement{Token: tok, Name: t, Value: value}
	case *ast.IndexExpression:
		return &ast.IndexAssignStatement{Token: tok, Left: t.Left, Index: t.Index, Value: value}
	case *ast.GetExpression:
		if t.Optional {
			p.addErrorAt(tok, "cannot assign through optional chain %s", t.String())
			return nil
		}
		return &ast.SetStatement{Token: tok, Object: t.Object, Name: t.Name, Value: value}
	}
	p.addErrorAt(tok, "invalid assignment target %s", target.String())
	return nil
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()

	block.Statements = p.parseStatementsUntil(token.RBRACE)

	if !p.curTokenIs(token.RBRACE) {
		p.addError("expected '}' to close block opened at line %d", block.Token.Line)
		return nil
	}

	return block
}

// parseBody accepts either a block or a single statement and returns a block.
func (p *Parser) parseBody() *ast.BlockStatement {
	p.nextToken()
	if p.curTokenIs(token.LBRACE) {
		return p.parseBlockStatement()
	}
	tok := p.curToken
	stmt := p.parseStatement()
	if stmt == nil {
		return nil
	}
	return &ast.BlockStatement{Token: tok, Statements: []ast.Statement{stmt}}
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	consequence := p.parseBody()
	if consequence == nil {
		return nil
	}
	stmt.Consequence = consequence

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			alt := p.parseIfStatement()
			if alt == nil {
				return nil
			}
			stmt.Alternative = alt
		} else {
			alt := p.parseBody()
			if alt == nil {
				return nil
			}
			stmt.Alternative = alt
		}
	}

	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	stmt.Body = p.parseBody()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	stmt := &ast.DoWhileStatement{Token: p.curToken}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil || !p.expectPeek(token.WHILE) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseLoopStatement() ast.Statement {
	stmt := &ast.LoopStatement{Token: p.curToken}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseForStatement handles `for x in xs`, `for (k, v) in m` and `for k, v in m`.
func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}

	parenthesized := p.peekTokenIs(token.LPAREN)
	if parenthesized {
		p.nextToken()
	}
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Variables = append(stmt.Variables, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if parenthesized && !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.IN) {
		return nil
	}

	p.nextToken()
	stmt.Iterable = p.parseExpression(LOWEST)
	if stmt.Iterable == nil {
		return nil
	}
	stmt.Body = p.parseBody()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseRepeatStatement() ast.Statement {
	stmt := &ast.RepeatStatement{Token: p.curToken}
	p.nextToken()
	stmt.Count = p.parseExpression(LOWEST)
	if stmt.Count == nil {
		return nil
	}
	stmt.Body = p.parseBody()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
		return stmt
	}

	p.nextToken()
	stmt.ReturnValue = p.parseExpression(LOWEST)
	if stmt.ReturnValue == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseMatchStatement() ast.Statement {
	stmt := &ast.MatchStatement{Token: p.curToken}

	p.nextToken()
	stmt.Subject = p.parseExpression(LOWEST)
	if stmt.Subject == nil || !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.addError("expected '}' to close match opened at line %d", stmt.Token.Line)
			return nil
		}
		arm := p.parseMatchArm()
		if arm == nil {
			return nil
		}
		stmt.Arms = append(stmt.Arms, arm)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
		p.nextToken()
	}

	if len(stmt.Arms) == 0 {
		p.addError("match statement needs at least one arm")
		return nil
	}
	return stmt
}

func (p *Parser) parseMatchArm() *ast.MatchArm {
	arm := &ast.MatchArm{Token: p.curToken}
	arm.Pattern = p.parsePattern()
	if arm.Pattern == nil || !p.expectPeek(token.ROCKET) {
		return nil
	}
	p.nextToken()
	arm.Body = p.parseStatement()
	if arm.Body == nil {
		return nil
	}
	return arm
}

// parseSwitchStatement reads `switch x { case a, b: ... default: ... }`.
func (p *Parser) parseSwitchStatement() ast.Statement {
	stmt := &ast.SwitchStatement{Token: p.curToken}

	p.nextToken()
	stmt.Subject = p.parseExpression(LOWEST)
	if stmt.Subject == nil || !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		switch p.curToken.Type {
		case token.CASE:
			c := &ast.SwitchCase{Token: p.curToken}
			values, ok := p.parseCaseValues()
			if !ok {
				return nil
			}
			c.Values = values
			c.Body = p.parseCaseBody()
			if c.Body == nil {
				return nil
			}
			stmt.Cases = append(stmt.Cases, c)
		case token.DEFAULT:
			if stmt.Default != nil {
				p.addError("duplicate default in switch")
				return nil
			}
			if !p.peekTokenIs(token.COLON) && !p.peekTokenIs(token.ROCKET) {
				p.peekError(token.COLON)
				return nil
			}
			p.nextToken()
			stmt.Default = p.parseCaseBody()
			if stmt.Default == nil {
				return nil
			}
		default:
			p.addError("expected case or default in switch, got %s", describe(p.curToken))
			return nil
		}
	}

	return stmt
}

func (p *Parser) parseCaseValues() ([]ast.Expression, bool) {
	var values []ast.Expression
	for {
		p.nextToken()
		v := p.parseExpression(LOWEST)
		if v == nil {
			return nil, false
		}
		values = append(values, v)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.peekTokenIs(token.COLON) && !p.peekTokenIs(token.ROCKET) {
		p.peekError(token.COLON)
		return nil, false
	}
	p.nextToken()
	return values, true
}

// parseCaseBody collects statements after a case label; curToken is left on
// the next case, default or the closing brace.
func (p *Parser) parseCaseBody() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()
	before := len(p.errors)
	block.Statements = p.parseStatementsUntil(token.CASE, token.DEFAULT, token.RBRACE)
	if len(p.errors) > before {
		return nil
	}
	if p.curTokenIs(token.EOF) {
		p.addError("expected '}' to close switch")
		return nil
	}
	return block
}

func (p *Parser) parseImportStatement() ast.Statement {
	stmt := &ast.ImportStatement{Token: p.curToken}
	p.nextToken()

	switch p.curToken.Type {
	case token.STRING:
		stmt.Path = p.curToken.Literal
	case token.IDENT:
		stmt.Path = p.curToken.Literal
		for p.peekTokenIs(token.PERIOD) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			stmt.Path += "." + p.curToken.Literal
		}
	default:
		p.addError("expected a module path after import, got %s", describe(p.curToken))
		return nil
	}

	if p.peekTokenIs(token.AS) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Alias = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}
	return stmt
}

func (p *Parser) parseExportStatement() ast.Statement {
	stmt := &ast.ExportStatement{Token: p.curToken}
	p.nextToken()
	switch p.curToken.Type {
	case token.LET, token.VAR, token.CONST, token.FUNCTION, token.STRUCT,
		token.CLASS, token.ENUM, token.TRAIT:
	default:
		if !p.isClassModifier(p.curToken) {
			p.addError("export must be followed by a declaration, got %s", describe(p.curToken))
			return nil
		}
	}
	stmt.Declaration = p.parseStatementBody()
	if stmt.Declaration == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseDeferStatement() ast.Statement {
	stmt := &ast.DeferStatement{Token: p.curToken}
	p.nextToken()
	stmt.Body = p.parseStatementBody()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseAssertStatement() ast.Statement {
	stmt := &ast.AssertStatement{Token: p.curToken}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	if p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		stmt.Message = p.parseExpression(LOWEST)
		if stmt.Message == nil {
			return nil
		}
	}
	return stmt
}

// parseTryStatement reads try { } catch [e | (e)] { } [finally { }].
func (p *Parser) parseTryStatement() ast.Statement {
	stmt := &ast.TryStatement{Token: p.curToken}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}

	if p.peekTokenIs(token.CATCH) {
		p.nextToken()
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			stmt.CatchName = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
			if !p.expectPeek(token.RPAREN) {
				return nil
			}
		} else if p.peekTokenIs(token.IDENT) {
			p.nextToken()
			stmt.CatchName = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		}
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.Catch = p.parseBlockStatement()
		if stmt.Catch == nil {
			return nil
		}
	}

	if p.peekTokenIs(token.FINALLY) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.Finally = p.parseBlockStatement()
		if stmt.Finally == nil {
			return nil
		}
	}

	if stmt.Catch == nil && stmt.Finally == nil {
		p.addError("try needs a catch or a finally block")
		return nil
	}
	return stmt
}

func (p *Parser) parseThrowStatement() ast.Statement {
	stmt := &ast.ThrowStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseGoStatement() ast.Statement {
	stmt := &ast.GoStatement{Token: p.curToken}
	p.nextToken()
	stmt.Call = p.parseExpression(LOWEST)
	if stmt.Call == nil {
		return nil
	}
	if _, ok := stmt.Call.(*ast.CallExpression); !ok {
		p.addError("go expects a call, got %s", stmt.Call.String())
		return nil
	}
	return stmt
}
