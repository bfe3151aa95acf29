package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yen-lang/Yen-sub000/internal/ast"
	"github.com/yen-lang/Yen-sub000/internal/lexer"
	"github.com/yen-lang/Yen-sub000/internal/token"
	"github.com/yen-lang/Yen-sub000/internal/util"
)

const (
	_           int = iota
	LOWEST          // statement level
	TERNARY         // ?:, |>, >>>
	COALESCE        // ??
	LOGICAL_OR      // ||
	LOGICAL_AND     // &&
	BITWISE_OR      // |
	BITWISE_XOR     // ^
	BITWISE_AND     // &
	EQUALS          // == !=
	COMPARISON      // < > <= >= in is
	CAST            // as
	RANGE           // .. ..=
	SHIFT           // << >>
	SUM             // + -
	PRODUCT         // * / %
	POWER           // **
	PREFIX          // -X or !X
	CALL            // myFunction(X), obj.field, list[index]
)

var precedences = map[token.TokenType]int{
	token.QUESTION:    TERNARY,
	token.PIPE:        TERNARY,
	token.COMPOSE:     TERNARY,
	token.COALESCE:    COALESCE,
	token.LOGICAL_OR:  LOGICAL_OR,
	token.LOGICAL_AND: LOGICAL_AND,
	token.BITWISE_OR:  BITWISE_OR,
	token.BITWISE_XOR: BITWISE_XOR,
	token.BITWISE_AND: BITWISE_AND,
	token.EQ:          EQUALS,
	token.NOT_EQ:      EQUALS,
	token.LT:          COMPARISON,
	token.LT_EQ:       COMPARISON,
	token.GT:          COMPARISON,
	token.GT_EQ:       COMPARISON,
	token.IN:          COMPARISON,
	token.IS:          COMPARISON,
	token.AS:          CAST,
	token.RANGE:       RANGE,
	token.RANGE_INCL:  RANGE,
	token.SHIFT_LEFT:  SHIFT,
	token.SHIFT_RIGHT: SHIFT,
	token.PLUS:        SUM,
	token.MINUS:       SUM,
	token.ASTERISK:    PRODUCT,
	token.SLASH:       PRODUCT,
	token.PERCENT:     PRODUCT,
	token.POWER:       POWER,
	token.PERIOD:      CALL,
	token.OPT_CHAIN:   CALL,
	token.LPAREN:      CALL,
	token.LBRACKET:    CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	tokens []token.Token
	pos    int    // index of curToken in tokens
	src    string // source code here
	errors []string

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

// Parse tokenizes and parses source, returning lex errors followed by parse errors.
func Parse(source string) (*ast.Program, []string) {
	tokens, lexErrors := lexer.Tokenize(source)
	p := New(tokens, source)
	program := p.ParseProgram()
	errs := append([]string{}, lexErrors...)
	return program, append(errs, p.Errors()...)
}

func New(tokens []token.Token, source string) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		eof := token.Token{Type: token.EOF, Position: len(source)}
		eof.Line, eof.Column = util.GetLineAndColumn(source, eof.Position)
		tokens = append(tokens, eof)
	}
	p := &Parser{
		tokens: tokens,
		src:    source,
		errors: []string{},
		pos:    -1,
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.NULL, p.parseNull)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.COMPLEMENT, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACKET, p.parseListLiteral)
	p.registerPrefix(token.LBRACE, p.parseMapLiteral)
	p.registerPrefix(token.BITWISE_OR, p.parseLambdaExpression)
	p.registerPrefix(token.LOGICAL_OR, p.parseLambdaExpression)
	p.registerPrefix(token.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(token.THIS, p.parseThis)
	p.registerPrefix(token.SUPER, p.parseSuper)
	p.registerPrefix(token.ELLIPSIS, p.parseSpreadExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, t := range []token.TokenType{
		token.PLUS, token.MINUS, token.SLASH, token.ASTERISK, token.PERCENT,
		token.EQ, token.NOT_EQ, token.LT, token.LT_EQ, token.GT, token.GT_EQ,
		token.LOGICAL_AND, token.LOGICAL_OR,
		token.BITWISE_AND, token.BITWISE_OR, token.BITWISE_XOR,
		token.SHIFT_LEFT, token.SHIFT_RIGHT, token.IN,
	} {
		p.registerInfix(t, p.parseInfixExpression)
	}
	p.registerInfix(token.POWER, p.parsePowerExpression)
	p.registerInfix(token.QUESTION, p.parseTernaryExpression)
	p.registerInfix(token.PIPE, p.parsePipeExpression)
	p.registerInfix(token.COMPOSE, p.parseComposeExpression)
	p.registerInfix(token.COALESCE, p.parseCoalesceExpression)
	p.registerInfix(token.RANGE, p.parseRangeExpression)
	p.registerInfix(token.RANGE_INCL, p.parseRangeExpression)
	p.registerInfix(token.AS, p.parseCastExpression)
	p.registerInfix(token.IS, p.parseIsExpression)
	p.registerInfix(token.PERIOD, p.parseGetExpression)
	p.registerInfix(token.OPT_CHAIN, p.parseGetExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)

	// Position curToken on the first token and peekToken on the second
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) tokenAt(i int) token.Token {
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.curToken = p.tokenAt(p.pos)
	p.peekToken = p.tokenAt(p.pos + 1)
}

// peekAt returns the token n positions after curToken; peekAt(1) is peekToken.
func (p *Parser) peekAt(n int) token.Token {
	return p.tokenAt(p.pos + n)
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) addError(message string, args ...interface{}) {
	p.addErrorAt(p.curToken, message, args...)
}

func (p *Parser) addErrorAt(tok token.Token, message string, args ...interface{}) {
	m := fmt.Sprintf(message, args...)
	if tok.Line == 0 {
		// tokens built without a lexer only carry a byte offset
		tok.Line, tok.Column = util.GetLineAndColumn(p.src, tok.Position)
	}
	msg := fmt.Sprintf("[%3d:%2d] %s", tok.Line, tok.Column, m)
	p.errors = append(p.errors, msg)
}

func (p *Parser) peekError(t token.TokenType) {
	// Line and column are extracted using the position of the peek token.
	p.addErrorAt(p.peekToken, "expected next token to be %s, got %s instead", t, describe(p.peekToken))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	if tok.Type == token.ILLEGAL {
		p.addError("invalid token %q", tok.Literal)
		return
	}
	p.addError("unexpected %s", describe(tok))
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT, token.INT, token.FLOAT:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	case token.STRING:
		return "string literal"
	}
	return fmt.Sprintf("%q", tok.Literal)
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	} else {
		p.peekError(t)
		return false
	}
}

func (p *Parser) Errors() []string {
	return p.errors
}

// HasErrors reports whether any grammar violation was recorded; the returned
// program must not be evaluated when it is set.
func (p *Parser) HasErrors() bool {
	return len(p.errors) > 0
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = p.parseStatementsUntil(token.EOF)
	return program
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expression {
	if p.curToken.Literal == "input" {
		if p.peekTokenIs(token.LPAREN) || (p.peekTokenIs(token.LT) && p.peekAt(3).Type == token.GT) {
			return p.parseInputExpression()
		}
	}
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseInputExpression() ast.Expression {
	expr := &ast.InputExpression{Token: p.curToken}
	if p.peekTokenIs(token.LT) {
		p.nextToken()
		p.nextToken()
		expr.Target = p.parseType()
		if expr.Target == nil || !p.expectPeek(token.GT) {
			return nil
		}
	}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return expr
	}
	p.nextToken()
	expr.Prompt = p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addError("could not parse %q as integer", p.curToken.Literal)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := &ast.FloatLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError("could not parse %q as float", p.curToken.Literal)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNull() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	if strings.Contains(p.curToken.Literal, "${") {
		return p.parseInterpolatedString()
	}
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

// parseInterpolatedString splits "a ${expr} b" into text and expression parts;
// each embedded expression is tokenized and parsed on its own.
func (p *Parser) parseInterpolatedString() ast.Expression {
	tok := p.curToken
	lit := tok.Literal
	expr := &ast.InterpolatedString{Token: tok}

	for len(lit) > 0 {
		start := strings.Index(lit, "${")
		if start < 0 {
			expr.Parts = append(expr.Parts, &ast.StringLiteral{Token: tok, Value: lit})
			break
		}
		if start > 0 {
			expr.Parts = append(expr.Parts, &ast.StringLiteral{Token: tok, Value: lit[:start]})
		}
		depth := 0
		end := -1
		for i := start + 2; i < len(lit); i++ {
			if lit[i] == '{' {
				depth++
			} else if lit[i] == '}' {
				if depth == 0 {
					end = i
					break
				}
				depth--
			}
		}
		if end < 0 {
			p.addError("unterminated interpolation in string literal")
			return nil
		}
		inner := lit[start+2 : end]
		if strings.TrimSpace(inner) == "" {
			p.addError("empty interpolation in string literal")
			return nil
		}
		tokens, lexErrors := lexer.Tokenize(inner)
		sub := New(tokens, inner)
		part := sub.parseExpression(LOWEST)
		if !sub.peekTokenIs(token.EOF) && len(sub.errors) == 0 {
			sub.addErrorAt(sub.peekToken, "unexpected %s", describe(sub.peekToken))
		}
		for _, e := range append(lexErrors, sub.errors...) {
			p.addError("in interpolation ${%s}: %s", inner, strings.TrimSpace(e[strings.Index(e, "]")+1:]))
		}
		if part == nil || len(sub.errors) > 0 || len(lexErrors) > 0 {
			return nil
		}
		expr.Parts = append(expr.Parts, part)
		lit = lit[end+1:]
	}

	return expr
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parsePowerExpression is right-associative: 2 ** 3 ** 2 == 2 ** 9
func (p *Parser) parsePowerExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}
	p.nextToken()
	expression.Right = p.parseExpression(POWER - 1)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseTernaryExpression(condition ast.Expression) ast.Expression {
	expression := &ast.TernaryExpression{Token: p.curToken, Condition: condition}
	p.nextToken()
	expression.Consequence = p.parseExpression(LOWEST)
	if expression.Consequence == nil || !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	expression.Alternative = p.parseExpression(LOWEST)
	if expression.Alternative == nil {
		return nil
	}
	return expression
}

func (p *Parser) parsePipeExpression(left ast.Expression) ast.Expression {
	expression := &ast.PipeExpression{Token: p.curToken, Left: left}
	p.nextToken()
	expression.Right = p.parseExpression(TERNARY)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseComposeExpression(left ast.Expression) ast.Expression {
	expression := &ast.ComposeExpression{Token: p.curToken, Left: left}
	p.nextToken()
	expression.Right = p.parseExpression(TERNARY)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseCoalesceExpression(left ast.Expression) ast.Expression {
	expression := &ast.CoalesceExpression{Token: p.curToken, Left: left}
	p.nextToken()
	expression.Right = p.parseExpression(COALESCE)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseRangeExpression(left ast.Expression) ast.Expression {
	expression := &ast.RangeExpression{
		Token:     p.curToken,
		Start:     left,
		Inclusive: p.curTokenIs(token.RANGE_INCL),
	}
	p.nextToken()
	expression.End = p.parseExpression(RANGE)
	if expression.End == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseCastExpression(left ast.Expression) ast.Expression {
	expression := &ast.CastExpression{Token: p.curToken, Value: left}
	p.nextToken()
	expression.Target = p.parseType()
	if expression.Target == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseIsExpression(left ast.Expression) ast.Expression {
	expression := &ast.IsExpression{Token: p.curToken, Value: left}
	p.nextToken()
	expression.Target = p.parseType()
	if expression.Target == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseListLiteral() ast.Expression {
	list := &ast.ListLiteral{Token: p.curToken}
	elements, ok := p.parseExpressionList(token.RBRACKET)
	if !ok {
		return nil
	}
	list.Elements = elements
	return list
}

// parseExpressionList reads comma separated expressions up to end, allowing a
// trailing comma; curToken is left on end.
func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, bool) {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}

	p.nextToken()
	for {
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil, false
		}
		list = append(list, expr)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		if p.peekTokenIs(end) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(end) {
		return nil, false
	}

	return list, true
}

func (p *Parser) parseMapLiteral() ast.Expression {
	m := &ast.MapLiteral{Token: p.curToken}

	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()

		var key ast.Expression
		if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.COLON) {
			key = &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
		} else {
			key = p.parseExpression(LOWEST)
		}
		if key == nil || !p.expectPeek(token.COLON) {
			return nil
		}

		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}

		m.Keys = append(m.Keys, key)
		m.Values = append(m.Values, value)

		if !p.peekTokenIs(token.RBRACE) && !p.expectPeek(token.COMMA) {
			return nil
		}
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}

	return m
}

func (p *Parser) parseLambdaExpression() ast.Expression {
	lambda := &ast.LambdaExpression{Token: p.curToken}

	if p.curTokenIs(token.BITWISE_OR) {
		params, ok := p.parseParameters(token.BITWISE_OR)
		if !ok {
			return nil
		}
		lambda.Parameters = params
	}

	if p.peekTokenIs(token.LBRACE) {
		p.nextToken()
		lambda.Block = p.parseBlockStatement()
		if lambda.Block == nil {
			return nil
		}
		return lambda
	}

	p.nextToken()
	lambda.Body = p.parseExpression(LOWEST)
	if lambda.Body == nil {
		return nil
	}
	return lambda
}

// parseFunctionLiteral handles the anonymous `func (a, b) { ... }` form.
func (p *Parser) parseFunctionLiteral() ast.Expression {
	lambda := &ast.LambdaExpression{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params, ok := p.parseParameters(token.RPAREN)
	if !ok {
		return nil
	}
	lambda.Parameters = params
	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		if p.parseType() == nil {
			return nil
		}
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	lambda.Block = p.parseBlockStatement()
	if lambda.Block == nil {
		return nil
	}
	return lambda
}

func (p *Parser) parseThis() ast.Expression {
	return &ast.ThisExpression{Token: p.curToken}
}

func (p *Parser) parseSuper() ast.Expression {
	expr := &ast.SuperExpression{Token: p.curToken}
	if !p.expectPeek(token.PERIOD) {
		return nil
	}
	if !p.nextIsName() {
		return nil
	}
	expr.Method = p.curToken.Literal
	return expr
}

func (p *Parser) parseSpreadExpression() ast.Expression {
	expr := &ast.SpreadExpression{Token: p.curToken}
	p.nextToken()
	expr.Value = p.parseExpression(TERNARY)
	if expr.Value == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseGetExpression(object ast.Expression) ast.Expression {
	expr := &ast.GetExpression{
		Token:    p.curToken,
		Object:   object,
		Optional: p.curTokenIs(token.OPT_CHAIN),
	}
	if !p.nextIsName() {
		return nil
	}
	expr.Name = p.curToken.Literal
	return expr
}

// nextIsName advances onto a member name; keywords are accepted so that
// members such as `x.print` or `db.open` read naturally.
func (p *Parser) nextIsName() bool {
	if !isName(p.peekToken) {
		p.addErrorAt(p.peekToken, "expected a member name, got %s", describe(p.peekToken))
		return false
	}
	p.nextToken()
	return true
}

func isName(tok token.Token) bool {
	if tok.Type == token.IDENT {
		return true
	}
	if tok.Literal == "" {
		return false
	}
	c := tok.Literal[0]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: function}
	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	exp.Arguments = args
	return exp
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()

	var start ast.Expression
	if !p.curTokenIs(token.COLON) {
		start = p.parseExpression(LOWEST)
		if start == nil {
			return nil
		}
		if !p.peekTokenIs(token.COLON) {
			if !p.expectPeek(token.RBRACKET) {
				return nil
			}
			return &ast.IndexExpression{Token: tok, Left: left, Index: start}
		}
		p.nextToken()
	}

	slice := &ast.SliceExpression{Token: tok, Left: left, Start: start}
	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		return slice
	}
	p.nextToken()
	slice.End = p.parseExpression(LOWEST)
	if slice.End == nil || !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return slice
}

// parseType reads a type annotation starting at curToken: Name, Name<Args>, Name?
func (p *Parser) parseType() *ast.TypeRef {
	if !isName(p.curToken) {
		p.addError("expected a type name, got %s", describe(p.curToken))
		return nil
	}
	ref := &ast.TypeRef{Name: p.curToken.Literal}

	if p.peekTokenIs(token.LT) && isName(p.peekAt(2)) {
		p.nextToken()
		for {
			p.nextToken()
			arg := p.parseType()
			if arg == nil {
				return nil
			}
			ref.Args = append(ref.Args, arg)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
		p.splitShiftRight()
		if !p.expectPeek(token.GT) {
			return nil
		}
	}

	if p.peekTokenIs(token.QUESTION) {
		switch p.peekAt(2).Type {
		case token.ASSIGN, token.RPAREN, token.COMMA, token.LBRACE, token.SEMICOLON,
			token.GT, token.RBRACKET, token.BITWISE_OR, token.EOF, token.RBRACE:
			p.nextToken()
			ref.Nullable = true
		}
	}

	return ref
}

// splitShiftRight turns a `>>` closing two nested type argument lists into two `>` tokens.
func (p *Parser) splitShiftRight() {
	if !p.peekTokenIs(token.SHIFT_RIGHT) {
		return
	}
	i := p.pos + 1
	first := p.tokens[i]
	second := first
	first.Type, first.Literal = token.GT, ">"
	second.Type, second.Literal = token.GT, ">"
	second.Position++
	second.Column++
	rest := append([]token.Token{first, second}, p.tokens[i+1:]...)
	p.tokens = append(p.tokens[:i], rest...)
	p.peekToken = p.tokenAt(p.pos + 1)
}
