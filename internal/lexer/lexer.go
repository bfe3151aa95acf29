package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/yen-lang/Yen-sub000/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means EOF
	line         int
	column       int

	errors []string
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	if input == "" {
		l.column = 1
	}
	return l
}

// Errors returns the lex errors recorded so far, formatted like parser errors.
func (l *Lexer) Errors() []string {
	return l.errors
}

func (l *Lexer) addError(line, col int, message string, args ...interface{}) {
	m := fmt.Sprintf(message, args...)
	l.errors = append(l.errors, fmt.Sprintf("[%3d:%2d] %s", line, col, m))
}

// readChar advances by one UTF-8 rune, updating byte positions and the line/column counters
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		if l.ch != 0 || l.position < len(l.input) {
			l.column++
		}
		l.ch = 0
		l.position = len(l.input)
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
	l.column++
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// operator describes one multi-character spelling that may follow the current rune.
type operator struct {
	suffix string
	t      token.TokenType
}

// handleCompoundToken applies maximal munch: the longest matching suffix wins,
// so callers list candidates longest first.
func (l *Lexer) handleCompoundToken(t token.TokenType, candidates ...operator) token.Token {
	startPosition, line, col := l.position, l.line, l.column
	first := l.ch
	for _, c := range candidates {
		if l.hasPrefixAfterCurrent(c.suffix) {
			for range c.suffix {
				l.readChar()
			}
			return token.Token{Type: c.t, Literal: string(first) + c.suffix, Position: startPosition, Line: line, Column: col}
		}
	}
	return l.newToken(t, string(first), startPosition, line, col)
}

func (l *Lexer) hasPrefixAfterCurrent(s string) bool {
	if l.readPosition+len(s) > len(l.input) {
		return false
	}
	return l.input[l.readPosition:l.readPosition+len(s)] == s
}

// skipWhitespace consumes blanks and comments. It reports false when a block
// comment is left open at EOF.
func (l *Lexer) skipWhitespace() bool {
	for {
		switch l.ch {
		case ' ', '\t', '\r', '\n':
			l.readChar()
		case '#':
			l.skipToLineEnd()
		case '/':
			switch l.peekChar() {
			case '/':
				l.skipToLineEnd()
			case '*':
				if !l.skipBlockComment() {
					return false
				}
			default:
				return true
			}
		default:
			return true
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) skipBlockComment() bool {
	line, col := l.line, l.column
	l.readChar() // consume '/'
	l.readChar() // consume '*'
	for {
		if l.ch == 0 {
			l.addError(line, col, "unterminated block comment")
			return false
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return true
		}
		l.readChar()
	}
}

// readIdentifier returns the substring (bytes) covering the identifier runes
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber returns the literal without '_' separators and whether it is a float.
func (l *Lexer) readNumber() (string, bool) {
	numStr := ""
	isFloat := false
	readDigits := func() {
		for isDigit(l.ch) || l.ch == '_' {
			if l.ch == '_' {
				prev := rune(l.input[l.position-1])
				if !isDigit(prev) || !isDigit(l.peekChar()) {
					l.addError(l.line, l.column, "underscore must be between digits in number literal")
				}
			} else {
				numStr += string(l.ch)
			}
			l.readChar()
		}
	}
	readDigits()
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		numStr += "."
		l.readChar()
		readDigits()
	}
	return numStr, isFloat
}

// Unicode-aware helpers
func isLetter(ch rune) bool {
	// Letters, underscore, and categories like Letter and Mark to support identifiers like café,变量
	return ch == '_' || unicode.IsLetter(ch) || unicode.Is(unicode.Mn, ch) || unicode.Is(unicode.Mc, ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) newToken(tokenType token.TokenType, literal string, position, line, col int) token.Token {
	return token.Token{Type: tokenType, Literal: literal, Position: position, Line: line, Column: col}
}
