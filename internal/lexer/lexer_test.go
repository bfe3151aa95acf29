package lexer

import (
	"strings"
	"testing"

	"github.com/yen-lang/Yen-sub000/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `let five = 5;
var ten = 10.5;

func add(x, y) {
  return x + y;
}
!- / * % ~5;
a == b != c <= d >= e && f || g => h -> i;
0..10 0..=10 ...xs a ** b
x += 1 y **= 2 z >>= 3 w <<= 4 u >>> v
m ?. n ?? o ? p : q |> r := s
// comment
# alt comment
/* block
comment */ done
`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.LET, "let"},
		{token.IDENT, "five"},
		{token.ASSIGN, "="},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},
		{token.VAR, "var"},
		{token.IDENT, "ten"},
		{token.ASSIGN, "="},
		{token.FLOAT, "10.5"},
		{token.SEMICOLON, ";"},
		{token.FUNCTION, "func"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.IDENT, "y"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.BANG, "!"},
		{token.MINUS, "-"},
		{token.SLASH, "/"},
		{token.ASTERISK, "*"},
		{token.PERCENT, "%"},
		{token.COMPLEMENT, "~"},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "a"},
		{token.EQ, "=="},
		{token.IDENT, "b"},
		{token.NOT_EQ, "!="},
		{token.IDENT, "c"},
		{token.LT_EQ, "<="},
		{token.IDENT, "d"},
		{token.GT_EQ, ">="},
		{token.IDENT, "e"},
		{token.LOGICAL_AND, "&&"},
		{token.IDENT, "f"},
		{token.LOGICAL_OR, "||"},
		{token.IDENT, "g"},
		{token.ROCKET, "=>"},
		{token.IDENT, "h"},
		{token.ARROW, "->"},
		{token.IDENT, "i"},
		{token.SEMICOLON, ";"},
		{token.INT, "0"},
		{token.RANGE, ".."},
		{token.INT, "10"},
		{token.INT, "0"},
		{token.RANGE_INCL, "..="},
		{token.INT, "10"},
		{token.ELLIPSIS, "..."},
		{token.IDENT, "xs"},
		{token.IDENT, "a"},
		{token.POWER, "**"},
		{token.IDENT, "b"},
		{token.IDENT, "x"},
		{token.PLUS_ASSIGN, "+="},
		{token.INT, "1"},
		{token.IDENT, "y"},
		{token.POWER_ASSIGN, "**="},
		{token.INT, "2"},
		{token.IDENT, "z"},
		{token.SHR_ASSIGN, ">>="},
		{token.INT, "3"},
		{token.IDENT, "w"},
		{token.SHL_ASSIGN, "<<="},
		{token.INT, "4"},
		{token.IDENT, "u"},
		{token.COMPOSE, ">>>"},
		{token.IDENT, "v"},
		{token.IDENT, "m"},
		{token.OPT_CHAIN, "?."},
		{token.IDENT, "n"},
		{token.COALESCE, "??"},
		{token.IDENT, "o"},
		{token.QUESTION, "?"},
		{token.IDENT, "p"},
		{token.COLON, ":"},
		{token.IDENT, "q"},
		{token.PIPE, "|>"},
		{token.IDENT, "r"},
		{token.WALRUS, ":="},
		{token.IDENT, "s"},
		{token.IDENT, "done"},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q '%q', got=%q: '%q'",
				i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}

	if len(l.Errors()) != 0 {
		t.Fatalf("unexpected lex errors: %v", l.Errors())
	}
}

func TestNextStringToken(t *testing.T) {
	input := `"\n\t\\\"" 'single \'q\'' "hello ${name}!" "\q"`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.STRING, "\n\t\\\""},
		{token.STRING, "single 'q'"},
		{token.STRING, "hello ${name}!"},
		{token.STRING, `\q`},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q: %q",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestLineAndColumn(t *testing.T) {
	input := "let a = 1;\n  /* two\nlines */ print a"

	tokens, errs := Tokenize(input)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	tests := []struct {
		literal string
		line    int
		column  int
	}{
		{"let", 1, 1},
		{"a", 1, 5},
		{"1", 1, 9},
		{"print", 3, 10},
		{"a", 3, 16},
	}

	var found []token.Token
	for _, tok := range tokens {
		if tok.Type != token.ASSIGN && tok.Type != token.SEMICOLON && tok.Type != token.EOF {
			found = append(found, tok)
		}
	}

	if len(found) != len(tests) {
		t.Fatalf("expected %d tokens, got %d: %v", len(tests), len(found), found)
	}

	for i, tt := range tests {
		tok := found[i]
		if tok.Literal != tt.literal || tok.Line != tt.line || tok.Column != tt.column {
			t.Errorf("tests[%d] - expected %q at %d:%d, got %q at %d:%d",
				i, tt.literal, tt.line, tt.column, tok.Literal, tok.Line, tok.Column)
		}
	}
}

func TestNegativeNumberIsSeparateToken(t *testing.T) {
	tokens, _ := Tokenize("-42")
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	if tokens[0].Type != token.MINUS || tokens[1].Type != token.INT || tokens[1].Literal != "42" {
		t.Fatalf("unexpected tokens %v", tokens)
	}
}

func TestNumberSeparators(t *testing.T) {
	tokens, errs := Tokenize("1_000_000 3.141_5")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if tokens[0].Literal != "1000000" || tokens[0].Type != token.INT {
		t.Errorf("expected INT 1000000, got %s %q", tokens[0].Type, tokens[0].Literal)
	}
	if tokens[1].Literal != "3.1415" || tokens[1].Type != token.FLOAT {
		t.Errorf("expected FLOAT 3.1415, got %s %q", tokens[1].Type, tokens[1].Literal)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"invalid character", "let a = 1 @ 2", "invalid character '@'"},
		{"unterminated string", `print "abc`, "unterminated string literal"},
		{"unterminated block comment", "print 1 /* never closed", "unterminated block comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, errs := Tokenize(tt.input)
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %v", errs)
			}
			if !strings.Contains(errs[0], tt.message) {
				t.Errorf("expected error containing %q, got %q", tt.message, errs[0])
			}
			illegal := false
			for _, tok := range tokens {
				if tok.Type == token.ILLEGAL {
					illegal = true
				}
			}
			if !illegal {
				t.Errorf("expected an ILLEGAL token in %v", tokens)
			}
			if tokens[len(tokens)-1].Type != token.EOF {
				t.Errorf("expected the stream to end with EOF")
			}
		})
	}
}
